package matcher

import (
	"fmt"
	"strings"
	"time"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier identifies the evidence level that produced a match
type Tier int

const (
	// TierExactKey is a file whose longest digit run is a tracker invoice key
	TierExactKey Tier = iota
	// TierProviderInvoice needs a provider token and an invoice fragment
	TierProviderInvoice
	// TierConceptProviderInvoice adds a concept token to the above
	TierConceptProviderInvoice
	// TierDateProviderInvoice adds the invoice date written as YYMMDD
	TierDateProviderInvoice
	// TierAmount is anchored on an amount written in the name
	TierAmount
)

// String returns the string representation of Tier
func (t Tier) String() string {
	switch t {
	case TierExactKey:
		return "exact_key"
	case TierProviderInvoice:
		return "provider_invoice"
	case TierConceptProviderInvoice:
		return "concept_provider_invoice"
	case TierDateProviderInvoice:
		return "date_provider_invoice"
	case TierAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ReasonKind classifies why a file stayed unmatched
type ReasonKind string

const (
	// ReasonNoValidStrings means the name carries no usable invoice number
	ReasonNoValidStrings ReasonKind = "no_valid_strings"
	// ReasonNoMatch means nothing in the tracker shares evidence with the name
	ReasonNoMatch ReasonKind = "no_match"
	// ReasonInsufficientEvidence means some rows share evidence, not enough to match
	ReasonInsufficientEvidence ReasonKind = "insufficient_evidence"
)

// Message returns the default explanation for the reason
func (r ReasonKind) Message() string {
	switch r {
	case ReasonNoValidStrings:
		return "no valid invoice strings in the file name"
	case ReasonNoMatch:
		return "no matches found"
	case ReasonInsufficientEvidence:
		return "insufficient matches"
	default:
		return string(r)
	}
}

// Match links a file to the tracker row it documents
type Match struct {
	File string `json:"file" yaml:"file"`
	Tier Tier   `json:"tier" yaml:"tier"`
	// Key is the simple invoice key of the row, empty for rows without one
	Key      string     `json:"key,omitempty" yaml:"key,omitempty"`
	Invoice  string     `json:"invoice" yaml:"invoice"`
	Evidence []Evidence `json:"evidence" yaml:"evidence"`
}

// Unmatched is a file no tracker row could be tied to
type Unmatched struct {
	File     string     `json:"file" yaml:"file"`
	Reason   ReasonKind `json:"reason" yaml:"reason"`
	Message  string     `json:"message" yaml:"message"`
	Evidence []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Unclaimed is a tracker invoice no file was matched to
type Unclaimed struct {
	Key    string          `json:"key" yaml:"key"`
	Label  string          `json:"label" yaml:"label"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Summary provides aggregate statistics about a matching run
type Summary struct {
	Files     int            `json:"files" yaml:"files"`
	Matched   int            `json:"matched" yaml:"matched"`
	Unmatched int            `json:"unmatched" yaml:"unmatched"`
	Unclaimed int            `json:"unclaimed" yaml:"unclaimed"`
	ByTier    map[string]int `json:"by_tier" yaml:"by_tier"`
}

// Result represents the complete result of a matching run
type Result struct {
	RunID       string      `json:"run_id" yaml:"run_id"`
	Matches     []Match     `json:"matches" yaml:"matches"`
	Unmatched   []Unmatched `json:"unmatched" yaml:"unmatched"`
	Unclaimed   []Unclaimed `json:"unclaimed" yaml:"unclaimed"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	ProcessedAt time.Time   `json:"processed_at" yaml:"processed_at"`
}

// Engine matches file names against tracker rows
type Engine struct {
	config  *MatchingConfig
	rules   rules
	chain   []strategy
	amounts amountPass
	logger  logger.Logger
}

// NewEngine creates a new engine with the specified configuration
func NewEngine(config *MatchingConfig) *Engine {
	if config == nil {
		config = DefaultMatchingConfig()
	}
	r := rules{config: config, p: compilePatterns(config)}
	return &Engine{
		config: config,
		rules:  r,
		chain: []strategy{
			providerInvoiceTier{r},
			conceptProviderTier{r},
			dateProviderTier{r},
		},
		amounts: amountPass{r},
		logger:  logger.WithComponent("matcher"),
	}
}

// pendingFile is a file that failed the exact key tier
type pendingFile struct {
	file   models.PdfFile
	reason ReasonKind
}

// Match ties each file to at most one tracker row and reports the tracker
// invoices left without a file
func (e *Engine) Match(files []models.PdfFile, sheet models.TrackerDetailSheet) *Result {
	result := &Result{
		RunID:       uuid.NewString(),
		Matches:     []Match{},
		Unmatched:   []Unmatched{},
		Unclaimed:   []Unclaimed{},
		ProcessedAt: time.Now(),
	}
	index := newTrackerIndex(sheet, e.config, e.rules.p)
	claimed := make(map[string]string)
	log := e.logger.WithField("run_id", result.RunID)

	var pending []pendingFile
	for _, f := range files {
		key := e.rules.p.simpleInvoiceKey(f.BaseName())
		if key == "" {
			pending = append(pending, pendingFile{file: f, reason: ReasonNoValidStrings})
			continue
		}
		claimed[key] = f.Name

		entry, ok := index.Lookup(key)
		if !ok {
			pending = append(pending, pendingFile{file: f, reason: ReasonNoMatch})
			continue
		}
		result.Matches = append(result.Matches, Match{
			File:     f.Name,
			Tier:     TierExactKey,
			Key:      key,
			Invoice:  entry.Display,
			Evidence: []Evidence{{Text: key, Kind: EvidenceInvoice}},
		})
	}

	rescue := len(pending) > 0 && len(index.rows) > 0 && index.hasProvider
	for _, pf := range pending {
		if !rescue {
			result.Unmatched = append(result.Unmatched, defaultUnmatched(pf))
			continue
		}

		match, unmatched := e.rescue(pf, index)
		if match == nil {
			log.WithField("file", pf.file.Name).Debugf("unmatched: %s", unmatched.Message)
			result.Unmatched = append(result.Unmatched, *unmatched)
			continue
		}
		log.WithField("file", pf.file.Name).Debugf("matched by %s: %s", match.Tier, FormatEvidence(match.Evidence))
		if match.Key != "" {
			if _, taken := claimed[match.Key]; !taken {
				claimed[match.Key] = pf.file.Name
			}
		}
		result.Matches = append(result.Matches, *match)
	}

	result.Unmatched = withoutMatched(result.Unmatched, result.Matches)

	for _, key := range index.Keys() {
		if _, ok := claimed[key]; ok {
			continue
		}
		entry, _ := index.Lookup(key)
		result.Unclaimed = append(result.Unclaimed, Unclaimed{Key: key, Label: entry.Display, Amount: entry.Amount})
	}

	result.Summary = summarize(len(files), result)
	return result
}

// rescue runs the weaker tiers for a file that failed the exact key tier
func (e *Engine) rescue(pf pendingFile, index *TrackerIndex) (*Match, *Unmatched) {
	c := newFileCandidate(pf.file, e.config, e.rules.p)

	if c.hasProviderTokens() {
	chain:
		for _, s := range e.chain {
			v := s.apply(c, index.rows)
			switch v.outcome {
			case outcomeMatched:
				return newMatch(pf.file, s.tier(), v), nil
			case outcomeRejected:
				e.logger.WithField("file", pf.file.Name).Debugf("weak provider evidence rejected: %s", FormatEvidence(v.evidence))
				break chain
			}
		}
	}

	if v := e.amounts.apply(c, index.rows); v.outcome == outcomeMatched {
		return newMatch(pf.file, e.amounts.tier(), v), nil
	}

	if !c.hasProviderTokens() {
		u := defaultUnmatched(pf)
		return nil, &u
	}
	evidence := e.rules.bestPartialEvidence(c, index.rows)
	if evidence == nil {
		u := defaultUnmatched(pf)
		return nil, &u
	}
	return nil, &Unmatched{
		File:     pf.file.Name,
		Reason:   ReasonInsufficientEvidence,
		Message:  fmt.Sprintf("%s: %s", ReasonInsufficientEvidence.Message(), FormatEvidence(evidence)),
		Evidence: evidence,
	}
}

func newMatch(file models.PdfFile, tier Tier, v verdict) *Match {
	return &Match{
		File:     file.Name,
		Tier:     tier,
		Key:      v.row.Key,
		Invoice:  v.row.RawInvoice,
		Evidence: v.evidence,
	}
}

func defaultUnmatched(pf pendingFile) Unmatched {
	return Unmatched{File: pf.file.Name, Reason: pf.reason, Message: pf.reason.Message()}
}

// withoutMatched drops unmatched entries for files that also have a match
func withoutMatched(unmatched []Unmatched, matches []Match) []Unmatched {
	if len(unmatched) == 0 || len(matches) == 0 {
		return unmatched
	}
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		if name := strings.ToLower(strings.TrimSpace(m.File)); name != "" {
			matched[name] = true
		}
	}
	out := make([]Unmatched, 0, len(unmatched))
	for _, u := range unmatched {
		if !matched[strings.ToLower(strings.TrimSpace(u.File))] {
			out = append(out, u)
		}
	}
	return out
}

func summarize(files int, r *Result) Summary {
	s := Summary{
		Files:     files,
		Matched:   len(r.Matches),
		Unmatched: len(r.Unmatched),
		Unclaimed: len(r.Unclaimed),
		ByTier:    make(map[string]int),
	}
	for _, m := range r.Matches {
		s.ByTier[m.Tier.String()]++
	}
	return s
}

// ValidateConfiguration validates the current configuration
func (e *Engine) ValidateConfiguration() error {
	return e.config.Validate()
}

// GetConfiguration returns the current configuration
func (e *Engine) GetConfiguration() *MatchingConfig {
	return e.config
}

package matcher

import (
	"fmt"
	"strings"
)

// EvidenceKind names the signal a piece of evidence stands for
type EvidenceKind string

const (
	EvidenceInvoice  EvidenceKind = "invoice"
	EvidenceProvider EvidenceKind = "provider"
	EvidenceDate     EvidenceKind = "date"
	EvidenceConcept  EvidenceKind = "concept"
	EvidenceAmount   EvidenceKind = "amount"
)

// Evidence is a substring of the file name that was verified against a
// tracker row
type Evidence struct {
	Text string       `json:"text" yaml:"text"`
	Kind EvidenceKind `json:"kind" yaml:"kind"`
}

func (e Evidence) String() string {
	return fmt.Sprintf("%s (%s)", e.Text, e.Kind)
}

// FormatEvidence renders evidence as "text (kind), text (kind)"
func FormatEvidence(evidence []Evidence) string {
	parts := make([]string, len(evidence))
	for i, e := range evidence {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// evidenceSet collects the signals found for one file and row pairing
type evidenceSet struct {
	invoice  string
	provider string
	date     string
	concept  string
	amount   string
}

func (s evidenceSet) count() int {
	n := 0
	for _, v := range []string{s.invoice, s.provider, s.date, s.concept, s.amount} {
		if v != "" {
			n++
		}
	}
	return n
}

// ordered returns the non-empty signals in the given kind order
func (s evidenceSet) ordered(kinds ...EvidenceKind) []Evidence {
	out := make([]Evidence, 0, len(kinds))
	for _, k := range kinds {
		var text string
		switch k {
		case EvidenceInvoice:
			text = s.invoice
		case EvidenceProvider:
			text = s.provider
		case EvidenceDate:
			text = s.date
		case EvidenceConcept:
			text = s.concept
		case EvidenceAmount:
			text = s.amount
		}
		if text != "" {
			out = append(out, Evidence{Text: text, Kind: k})
		}
	}
	return out
}

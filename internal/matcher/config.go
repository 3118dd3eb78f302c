// Package matcher decides which tracker row a scanned invoice belongs to
// using nothing but the invoice's file name.
//
// Files are tried against an ordered chain of evidence tiers, strongest
// first:
//  1. Exact key: the longest digit run of the name is a tracker invoice key
//  2. Provider + invoice: a provider token and an invoice number fragment
//  3. Concept + provider + invoice
//  4. Date + provider + invoice: the invoice date appears as YYMMDD
//
// Files still unmatched get an amount-anchored pass: an amount written in the
// name plus at least one more independent signal. Whatever remains is
// reported with the best partial evidence found for it.
//
// Example usage:
//
//	config := matcher.DefaultMatchingConfig()
//	config.MinShortProviderEvidence = 2
//
//	engine := matcher.NewEngine(config)
//	result := engine.Match(files, sheet)
package matcher

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProviderAlias ties a provider that files abbreviate to its short code.
// Tracker providers containing Contains are known by Short, and file names
// containing Short are read as if they spelled out Expansion.
type ProviderAlias struct {
	Contains  string `mapstructure:"contains" json:"contains"`
	Short     string `mapstructure:"short" json:"short"`
	Expansion string `mapstructure:"expansion" json:"expansion"`
}

// MatchingConfig holds the business tuned thresholds of the filename matcher
type MatchingConfig struct {
	// MinSimpleKeyDigits is the shortest digit run accepted as an exact key
	MinSimpleKeyDigits int `mapstructure:"min_simple_key_digits" json:"min_simple_key_digits"`

	// MinProviderTokenLen is the shortest letter run treated as a provider or
	// concept token. Three letter tokens are only used when delimited by
	// hyphens or underscores.
	MinProviderTokenLen int `mapstructure:"min_provider_token_len" json:"min_provider_token_len"`

	// MinFragmentLen is the shortest invoice number fragment looked for
	MinFragmentLen int `mapstructure:"min_fragment_len" json:"min_fragment_len"`

	// ExcludedFragments are digit runs never accepted as invoice evidence
	// because they are almost always calendar years.
	ExcludedFragments []string `mapstructure:"excluded_fragments" json:"excluded_fragments"`

	// ShortProviderMaxLen marks provider evidence this short as weak
	ShortProviderMaxLen int `mapstructure:"short_provider_max_len" json:"short_provider_max_len"`

	// MinShortProviderEvidence is the number of signals required when the
	// provider evidence is weak.
	MinShortProviderEvidence int `mapstructure:"min_short_provider_evidence" json:"min_short_provider_evidence"`

	// MinAmountSignals is the number of signals, the amount included,
	// required by the amount-anchored pass.
	MinAmountSignals int `mapstructure:"min_amount_signals" json:"min_amount_signals"`

	// AmountTolerance is the largest cent difference accepted between an
	// amount in a file name and a tracker amount.
	AmountTolerance decimal.Decimal `mapstructure:"-" json:"amount_tolerance"`

	ProviderAliases []ProviderAlias `mapstructure:"provider_aliases" json:"provider_aliases"`
}

// DefaultMatchingConfig returns the production thresholds
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		MinSimpleKeyDigits:       5,
		MinProviderTokenLen:      4,
		MinFragmentLen:           3,
		ExcludedFragments:        []string{"2024", "2025", "2026", "2027"},
		ShortProviderMaxLen:      4,
		MinShortProviderEvidence: 3,
		MinAmountSignals:         2,
		AmountTolerance:          decimal.New(1, -2),
		ProviderAliases: []ProviderAlias{
			{Contains: "MOMENTUM", Short: "MTM", Expansion: "MOMENTUM REAL ESTATE"},
		},
	}
}

// Validate checks if the matching configuration is valid
func (mc *MatchingConfig) Validate() error {
	if mc.MinSimpleKeyDigits < 1 {
		return fmt.Errorf("min simple key digits must be positive: %d", mc.MinSimpleKeyDigits)
	}
	if mc.MinProviderTokenLen < 2 {
		return fmt.Errorf("min provider token length must be at least 2: %d", mc.MinProviderTokenLen)
	}
	if mc.MinFragmentLen < 1 {
		return fmt.Errorf("min fragment length must be positive: %d", mc.MinFragmentLen)
	}
	if mc.ShortProviderMaxLen < 0 {
		return fmt.Errorf("short provider max length cannot be negative: %d", mc.ShortProviderMaxLen)
	}
	if mc.MinShortProviderEvidence < 1 || mc.MinShortProviderEvidence > 4 {
		return fmt.Errorf("min short provider evidence must be between 1 and 4: %d", mc.MinShortProviderEvidence)
	}
	if mc.MinAmountSignals < 1 || mc.MinAmountSignals > 5 {
		return fmt.Errorf("min amount signals must be between 1 and 5: %d", mc.MinAmountSignals)
	}
	if mc.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", mc.AmountTolerance)
	}
	for i, a := range mc.ProviderAliases {
		if strings.TrimSpace(a.Contains) == "" || strings.TrimSpace(a.Short) == "" {
			return fmt.Errorf("provider alias %d needs both contains and short", i)
		}
	}
	return nil
}

// Clone creates a deep copy of the matching configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}
	c := *mc
	c.ExcludedFragments = append([]string(nil), mc.ExcludedFragments...)
	c.ProviderAliases = append([]ProviderAlias(nil), mc.ProviderAliases...)
	return &c
}

func (mc *MatchingConfig) excluded(fragment string) bool {
	for _, x := range mc.ExcludedFragments {
		if fragment == x {
			return true
		}
	}
	return false
}

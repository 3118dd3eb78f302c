package reconciler

import (
	"fmt"
	"strings"

	"invoice-reconciliation-service/internal/textnorm"
	"invoice-reconciliation-service/internal/tokens"

	"github.com/shopspring/decimal"
)

// Config holds the filtering rules applied while aggregating ledger and
// tracker rows. The values are business tuned and exposed as configuration.
type Config struct {
	// Ledger accounts must start with one of these prefixes...
	AccountPrefixes []string `mapstructure:"account_prefixes"`
	// ...and must not start with any of these.
	ExcludedAccountPrefixes []string `mapstructure:"excluded_account_prefixes"`

	// Tracker rows are kept only in these workflow phases (compared after
	// folding case and accents).
	AcceptedPhases []string `mapstructure:"accepted_phases"`

	// Company abbreviations looked for in the source file name, in priority order.
	CompanyCodes []string `mapstructure:"company_codes"`

	// Credits whose absolute value is below this are treated as zero.
	CreditEpsilon decimal.Decimal `mapstructure:"-"`

	// Token usability policy.
	Selector tokens.Selector `mapstructure:"selector"`
}

// DefaultCompanyCodes is the list of known business entities
var DefaultCompanyCodes = []string{"TRAVIA", "ELIA", "MECA", "CRAW", "TORQ", "MIDF", "GARDEN", "BAILEN"}

// DefaultConfig returns the production configuration
func DefaultConfig() *Config {
	return &Config{
		AccountPrefixes:         []string{"41", "40"},
		ExcludedAccountPrefixes: []string{"4109", "4008"},
		AcceptedPhases:          []string{"VISADO PM", "CONTABILIZAR FACTURA"},
		CompanyCodes:            append([]string(nil), DefaultCompanyCodes...),
		CreditEpsilon:           decimal.New(1, -7),
		Selector:                tokens.DefaultSelector(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.AccountPrefixes) == 0 {
		return fmt.Errorf("at least one account prefix is required")
	}
	for _, p := range c.AccountPrefixes {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("account prefixes cannot be blank")
		}
	}
	if len(c.AcceptedPhases) == 0 {
		return fmt.Errorf("at least one accepted phase is required")
	}
	for _, code := range c.CompanyCodes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("company codes cannot be blank")
		}
	}
	if c.CreditEpsilon.IsNegative() {
		return fmt.Errorf("credit epsilon cannot be negative")
	}
	if err := c.Selector.Validate(); err != nil {
		return fmt.Errorf("invalid token selector: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.AccountPrefixes = append([]string(nil), c.AccountPrefixes...)
	clone.ExcludedAccountPrefixes = append([]string(nil), c.ExcludedAccountPrefixes...)
	clone.AcceptedPhases = append([]string(nil), c.AcceptedPhases...)
	clone.CompanyCodes = append([]string(nil), c.CompanyCodes...)
	return &clone
}

func (c *Config) accountAccepted(account string) bool {
	account = strings.TrimSpace(account)
	if account == "" {
		return false
	}
	for _, p := range c.ExcludedAccountPrefixes {
		if strings.HasPrefix(account, p) {
			return false
		}
	}
	for _, p := range c.AccountPrefixes {
		if strings.HasPrefix(account, p) {
			return true
		}
	}
	return false
}

func (c *Config) phaseAccepted(phase string) bool {
	folded := textnorm.FoldTrim(phase)
	for _, p := range c.AcceptedPhases {
		if folded == textnorm.FoldTrim(p) {
			return true
		}
	}
	return false
}

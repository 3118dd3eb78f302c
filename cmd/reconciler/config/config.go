// Package config turns viper settings (flags, RECONCILER_* environment
// variables and an optional config file) into the configuration structs of
// the internal packages.
package config

import (
	"fmt"
	"strings"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/reporter"
	"invoice-reconciliation-service/internal/tokens"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Setting keys. Nested keys map to nested sections of a config file and to
// RECONCILER_SECTION_NAME environment variables.
const (
	KeyAccountPrefixes         = "reconciler.account_prefixes"
	KeyExcludedAccountPrefixes = "reconciler.excluded_account_prefixes"
	KeyAcceptedPhases          = "reconciler.accepted_phases"
	KeyCompanyCodes            = "reconciler.company_codes"
	KeyCreditEpsilon           = "reconciler.credit_epsilon"
	KeyMinKeyDigits            = "reconciler.min_key_digits"
	KeyShortKeyDigits          = "reconciler.short_key_digits"
	KeyMaxKeyDigits            = "reconciler.max_key_digits"

	KeyMinSimpleKeyDigits       = "matcher.min_simple_key_digits"
	KeyMinProviderTokenLen      = "matcher.min_provider_token_len"
	KeyMinFragmentLen           = "matcher.min_fragment_len"
	KeyExcludedFragments        = "matcher.excluded_fragments"
	KeyShortProviderMaxLen      = "matcher.short_provider_max_len"
	KeyMinShortProviderEvidence = "matcher.min_short_provider_evidence"
	KeyMinAmountSignals         = "matcher.min_amount_signals"
	KeyAmountTolerance          = "matcher.amount_tolerance"
	KeyProviderAliases          = "matcher.provider_aliases"

	KeyHeaderScanRows = "workbook.header_scan_rows"
	KeyLedgerSheet    = "workbook.ledger_sheet"
	KeyTrackerSheets  = "workbook.tracker_sheets"

	KeyIncludeMatched = "report.include_matched"
	KeyIncludeStats   = "report.include_stats"
	KeyMaxListItems   = "report.max_list_items"
	KeyCSVDelimiter   = "report.csv_delimiter"
	KeyCSVHeaders     = "report.csv_headers"

	KeyVerbose   = "verbose"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogFile   = "log.file"
)

// SetDefaults registers the production value of every setting
func SetDefaults(v *viper.Viper) {
	rc := reconciler.DefaultConfig()
	v.SetDefault(KeyAccountPrefixes, rc.AccountPrefixes)
	v.SetDefault(KeyExcludedAccountPrefixes, rc.ExcludedAccountPrefixes)
	v.SetDefault(KeyAcceptedPhases, rc.AcceptedPhases)
	v.SetDefault(KeyCompanyCodes, rc.CompanyCodes)
	v.SetDefault(KeyCreditEpsilon, rc.CreditEpsilon.InexactFloat64())
	v.SetDefault(KeyMinKeyDigits, rc.Selector.MinDigits)
	v.SetDefault(KeyShortKeyDigits, rc.Selector.ShortMinDigits)
	v.SetDefault(KeyMaxKeyDigits, rc.Selector.MaxDigits)

	mc := matcher.DefaultMatchingConfig()
	v.SetDefault(KeyMinSimpleKeyDigits, mc.MinSimpleKeyDigits)
	v.SetDefault(KeyMinProviderTokenLen, mc.MinProviderTokenLen)
	v.SetDefault(KeyMinFragmentLen, mc.MinFragmentLen)
	v.SetDefault(KeyExcludedFragments, mc.ExcludedFragments)
	v.SetDefault(KeyShortProviderMaxLen, mc.ShortProviderMaxLen)
	v.SetDefault(KeyMinShortProviderEvidence, mc.MinShortProviderEvidence)
	v.SetDefault(KeyMinAmountSignals, mc.MinAmountSignals)
	v.SetDefault(KeyAmountTolerance, mc.AmountTolerance.InexactFloat64())

	lc := parsers.DefaultLoaderConfig()
	v.SetDefault(KeyHeaderScanRows, lc.HeaderScanRows)
	v.SetDefault(KeyLedgerSheet, lc.LedgerSheet)
	v.SetDefault(KeyTrackerSheets, lc.TrackerSheets)

	rp := reporter.DefaultReportConfig()
	v.SetDefault(KeyIncludeMatched, rp.IncludeMatched)
	v.SetDefault(KeyIncludeStats, rp.IncludeStats)
	v.SetDefault(KeyMaxListItems, rp.MaxListItems)
	v.SetDefault(KeyCSVDelimiter, string(rp.CSVDelimiter))
	v.SetDefault(KeyCSVHeaders, rp.CSVHeaders)

	v.SetDefault(KeyLogLevel, string(logger.InfoLevel))
	v.SetDefault(KeyLogFormat, string(logger.TextFormat))
}

// CreateReconcilerConfig builds the aggregation filters
func CreateReconcilerConfig(v *viper.Viper) (*reconciler.Config, error) {
	config := &reconciler.Config{
		AccountPrefixes:         trimmed(v.GetStringSlice(KeyAccountPrefixes)),
		ExcludedAccountPrefixes: trimmed(v.GetStringSlice(KeyExcludedAccountPrefixes)),
		AcceptedPhases:          trimmed(v.GetStringSlice(KeyAcceptedPhases)),
		CompanyCodes:            trimmed(v.GetStringSlice(KeyCompanyCodes)),
		CreditEpsilon:           decimal.NewFromFloat(v.GetFloat64(KeyCreditEpsilon)),
		Selector: tokens.Selector{
			MinDigits:      v.GetInt(KeyMinKeyDigits),
			ShortMinDigits: v.GetInt(KeyShortKeyDigits),
			MaxDigits:      v.GetInt(KeyMaxKeyDigits),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciler config: %w", err)
	}
	return config, nil
}

// CreateMatchingConfig builds the filename matcher thresholds
func CreateMatchingConfig(v *viper.Viper) (*matcher.MatchingConfig, error) {
	config := &matcher.MatchingConfig{
		MinSimpleKeyDigits:       v.GetInt(KeyMinSimpleKeyDigits),
		MinProviderTokenLen:      v.GetInt(KeyMinProviderTokenLen),
		MinFragmentLen:           v.GetInt(KeyMinFragmentLen),
		ExcludedFragments:        trimmed(v.GetStringSlice(KeyExcludedFragments)),
		ShortProviderMaxLen:      v.GetInt(KeyShortProviderMaxLen),
		MinShortProviderEvidence: v.GetInt(KeyMinShortProviderEvidence),
		MinAmountSignals:         v.GetInt(KeyMinAmountSignals),
		AmountTolerance:          decimal.NewFromFloat(v.GetFloat64(KeyAmountTolerance)).Round(4),
		ProviderAliases:          matcher.DefaultMatchingConfig().ProviderAliases,
	}

	if v.IsSet(KeyProviderAliases) {
		config.ProviderAliases = nil
		if err := v.UnmarshalKey(KeyProviderAliases, &config.ProviderAliases); err != nil {
			return nil, fmt.Errorf("invalid provider aliases: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	return config, nil
}

// CreateLoaderConfig builds the workbook layout settings
func CreateLoaderConfig(v *viper.Viper) (*parsers.LoaderConfig, error) {
	config := &parsers.LoaderConfig{
		HeaderScanRows: v.GetInt(KeyHeaderScanRows),
		LedgerSheet:    strings.TrimSpace(v.GetString(KeyLedgerSheet)),
		TrackerSheets:  trimmed(v.GetStringSlice(KeyTrackerSheets)),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workbook config: %w", err)
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(v *viper.Viper, format string) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(strings.ToLower(strings.TrimSpace(format)))
	config.IncludeMatched = v.GetBool(KeyIncludeMatched)
	config.IncludeStats = v.GetBool(KeyIncludeStats)
	config.MaxListItems = v.GetInt(KeyMaxListItems)
	config.CSVHeaders = v.GetBool(KeyCSVHeaders)

	delimiter := []rune(v.GetString(KeyCSVDelimiter))
	if len(delimiter) != 1 {
		return nil, fmt.Errorf("CSV delimiter must be a single character, got %q", string(delimiter))
	}
	config.CSVDelimiter = delimiter[0]

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report config: %w", err)
	}
	return config, nil
}

// CreateLoggerConfig builds the logger settings. Verbose forces debug level.
func CreateLoggerConfig(v *viper.Viper) (*logger.Config, error) {
	config := logger.DefaultConfig()
	config.Level = logger.Level(strings.ToLower(v.GetString(KeyLogLevel)))
	config.Format = logger.Format(strings.ToLower(v.GetString(KeyLogFormat)))
	if v.GetBool(KeyVerbose) {
		config.Level = logger.DebugLevel
	}
	if file := v.GetString(KeyLogFile); file != "" {
		config.Output = logger.FileOutput
		config.File = file
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return config, nil
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/reporter"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	v := newViper()

	rc, err := CreateReconcilerConfig(v)
	if err != nil {
		t.Fatalf("CreateReconcilerConfig() error = %v", err)
	}
	want := reconciler.DefaultConfig()
	if !reflect.DeepEqual(rc.AccountPrefixes, want.AccountPrefixes) ||
		!reflect.DeepEqual(rc.ExcludedAccountPrefixes, want.ExcludedAccountPrefixes) ||
		!reflect.DeepEqual(rc.AcceptedPhases, want.AcceptedPhases) ||
		!reflect.DeepEqual(rc.CompanyCodes, want.CompanyCodes) ||
		rc.Selector != want.Selector {
		t.Errorf("reconciler config = %+v, want %+v", rc, want)
	}
	if !rc.CreditEpsilon.Equal(want.CreditEpsilon) {
		t.Errorf("credit epsilon = %s, want %s", rc.CreditEpsilon, want.CreditEpsilon)
	}

	mc, err := CreateMatchingConfig(v)
	if err != nil {
		t.Fatalf("CreateMatchingConfig() error = %v", err)
	}
	wantMC := matcher.DefaultMatchingConfig()
	if !mc.AmountTolerance.Equal(wantMC.AmountTolerance) {
		t.Errorf("amount tolerance = %s, want %s", mc.AmountTolerance, wantMC.AmountTolerance)
	}
	mc.AmountTolerance = wantMC.AmountTolerance
	if !reflect.DeepEqual(mc, wantMC) {
		t.Errorf("matching config = %+v, want %+v", mc, wantMC)
	}

	lc, err := CreateLoaderConfig(v)
	if err != nil {
		t.Fatalf("CreateLoaderConfig() error = %v", err)
	}
	if !reflect.DeepEqual(lc, parsers.DefaultLoaderConfig()) {
		t.Errorf("loader config = %+v, want %+v", lc, parsers.DefaultLoaderConfig())
	}
}

func TestCreateReconcilerConfigOverrides(t *testing.T) {
	v := newViper()
	v.Set(KeyAccountPrefixes, []string{" 43 ", "", "44"})
	v.Set(KeyCompanyCodes, []string{"TRAVIA", " ELIA "})
	v.Set(KeyMinKeyDigits, 7)
	v.Set(KeyCreditEpsilon, 0.001)

	rc, err := CreateReconcilerConfig(v)
	if err != nil {
		t.Fatalf("CreateReconcilerConfig() error = %v", err)
	}
	if !reflect.DeepEqual(rc.AccountPrefixes, []string{"43", "44"}) {
		t.Errorf("account prefixes = %v", rc.AccountPrefixes)
	}
	if !reflect.DeepEqual(rc.CompanyCodes, []string{"TRAVIA", "ELIA"}) {
		t.Errorf("company codes = %v", rc.CompanyCodes)
	}
	if rc.Selector.MinDigits != 7 {
		t.Errorf("min digits = %d, want 7", rc.Selector.MinDigits)
	}
	if rc.CreditEpsilon.String() != "0.001" {
		t.Errorf("credit epsilon = %s, want 0.001", rc.CreditEpsilon)
	}
}

func TestCreateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  interface{}
		create func(*viper.Viper) error
	}{
		{
			name:  "no account prefixes",
			key:   KeyAccountPrefixes,
			value: []string{" "},
			create: func(v *viper.Viper) error {
				_, err := CreateReconcilerConfig(v)
				return err
			},
		},
		{
			name:  "max digits below min",
			key:   KeyMaxKeyDigits,
			value: 4,
			create: func(v *viper.Viper) error {
				_, err := CreateReconcilerConfig(v)
				return err
			},
		},
		{
			name:  "negative amount tolerance",
			key:   KeyAmountTolerance,
			value: -0.5,
			create: func(v *viper.Viper) error {
				_, err := CreateMatchingConfig(v)
				return err
			},
		},
		{
			name:  "too many amount signals",
			key:   KeyMinAmountSignals,
			value: 9,
			create: func(v *viper.Viper) error {
				_, err := CreateMatchingConfig(v)
				return err
			},
		},
		{
			name:  "zero header scan rows",
			key:   KeyHeaderScanRows,
			value: 0,
			create: func(v *viper.Viper) error {
				_, err := CreateLoaderConfig(v)
				return err
			},
		},
		{
			name:  "long CSV delimiter",
			key:   KeyCSVDelimiter,
			value: ";;",
			create: func(v *viper.Viper) error {
				_, err := CreateReportConfig(v, "csv")
				return err
			},
		},
		{
			name:  "bad log level",
			key:   KeyLogLevel,
			value: "loud",
			create: func(v *viper.Viper) error {
				_, err := CreateLoggerConfig(v)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			if err := tt.create(v); err == nil {
				t.Errorf("expected error but got none")
			}
		})
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		delimiter string
		want      reporter.OutputFormat
		expectErr bool
	}{
		{name: "console", format: "console", delimiter: ",", want: reporter.FormatConsole},
		{name: "upper case json", format: "JSON", delimiter: ",", want: reporter.FormatJSON},
		{name: "semicolon csv", format: "csv", delimiter: ";", want: reporter.FormatCSV},
		{name: "xlsx", format: "xlsx", delimiter: ",", want: reporter.FormatXLSX},
		{name: "unknown", format: "html", delimiter: ",", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(KeyCSVDelimiter, tt.delimiter)

			config, err := CreateReportConfig(v, tt.format)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.Format != tt.want {
				t.Errorf("format = %s, want %s", config.Format, tt.want)
			}
			if string(config.CSVDelimiter) != tt.delimiter {
				t.Errorf("delimiter = %q, want %q", config.CSVDelimiter, tt.delimiter)
			}
			if config.MaxListItems != 50 || !config.IncludeStats || config.IncludeMatched {
				t.Errorf("unexpected defaults: %+v", config)
			}
		})
	}
}

func TestCreateLoggerConfig(t *testing.T) {
	v := newViper()
	config, err := CreateLoggerConfig(v)
	if err != nil {
		t.Fatalf("CreateLoggerConfig() error = %v", err)
	}
	if config.Level != logger.InfoLevel || config.Format != logger.TextFormat || config.Output != logger.StderrOutput {
		t.Errorf("default logger config = %+v", config)
	}

	v.Set(KeyVerbose, true)
	v.Set(KeyLogFormat, "JSON")
	v.Set(KeyLogFile, filepath.Join(t.TempDir(), "reconciler.log"))
	config, err = CreateLoggerConfig(v)
	if err != nil {
		t.Fatalf("CreateLoggerConfig() error = %v", err)
	}
	if config.Level != logger.DebugLevel || config.Format != logger.JSONFormat || config.Output != logger.FileOutput {
		t.Errorf("verbose logger config = %+v", config)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	content := `
reconciler:
  company_codes: [TRAVIA, GARDEN]
  accepted_phases:
    - VISADO PM
matcher:
  min_fragment_len: 4
  amount_tolerance: 0.05
  provider_aliases:
    - contains: NATURGY
      short: NTG
      expansion: NATURGY IBERIA
workbook:
  tracker_sheets: [Facturas]
`
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0644); err != nil {
		t.Fatal(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	rc, err := CreateReconcilerConfig(v)
	if err != nil {
		t.Fatalf("CreateReconcilerConfig() error = %v", err)
	}
	if !reflect.DeepEqual(rc.CompanyCodes, []string{"TRAVIA", "GARDEN"}) {
		t.Errorf("company codes = %v", rc.CompanyCodes)
	}
	if !reflect.DeepEqual(rc.AcceptedPhases, []string{"VISADO PM"}) {
		t.Errorf("accepted phases = %v", rc.AcceptedPhases)
	}
	if !reflect.DeepEqual(rc.AccountPrefixes, []string{"41", "40"}) {
		t.Errorf("account prefixes should keep defaults, got %v", rc.AccountPrefixes)
	}

	mc, err := CreateMatchingConfig(v)
	if err != nil {
		t.Fatalf("CreateMatchingConfig() error = %v", err)
	}
	if mc.MinFragmentLen != 4 || mc.AmountTolerance.String() != "0.05" {
		t.Errorf("matching config = %+v", mc)
	}
	wantAliases := []matcher.ProviderAlias{{Contains: "NATURGY", Short: "NTG", Expansion: "NATURGY IBERIA"}}
	if !reflect.DeepEqual(mc.ProviderAliases, wantAliases) {
		t.Errorf("provider aliases = %+v, want %+v", mc.ProviderAliases, wantAliases)
	}

	lc, err := CreateLoaderConfig(v)
	if err != nil {
		t.Fatalf("CreateLoaderConfig() error = %v", err)
	}
	if !reflect.DeepEqual(lc.TrackerSheets, []string{"Facturas"}) || lc.LedgerSheet != "MAYORES" {
		t.Errorf("loader config = %+v", lc)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("RECONCILER_MATCHER_MIN_FRAGMENT_LEN", "5")
	t.Setenv("RECONCILER_WORKBOOK_LEDGER_SHEET", "Diario")

	v := newViper()
	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	mc, err := CreateMatchingConfig(v)
	if err != nil {
		t.Fatalf("CreateMatchingConfig() error = %v", err)
	}
	if mc.MinFragmentLen != 5 {
		t.Errorf("min fragment len = %d, want 5", mc.MinFragmentLen)
	}

	lc, err := CreateLoaderConfig(v)
	if err != nil {
		t.Fatalf("CreateLoaderConfig() error = %v", err)
	}
	if lc.LedgerSheet != "Diario" {
		t.Errorf("ledger sheet = %q, want Diario", lc.LedgerSheet)
	}
}

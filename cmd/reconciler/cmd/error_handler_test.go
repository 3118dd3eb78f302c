package cmd

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, logger.ErrorLevel)
}

func TestHandleErrorExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		contains []string
	}{
		{
			name: "nil error",
			err:  nil,
			code: 0,
		},
		{
			name:     "missing sheet",
			err:      errors.WorkbookError(errors.CodeMissingSheet, "MAYORES", "", nil),
			code:     3,
			contains: []string{"Error:", "MAYORES", "Workbook error help"},
		},
		{
			name:     "missing file",
			err:      errors.FileError(errors.CodeFileNotFound, "cuadre.xlsx", nil),
			code:     2,
			contains: []string{"file_path: cuadre.xlsx", "Suggestion:"},
		},
		{
			name: "invalid config",
			err:  errors.ConfigurationError(errors.CodeInvalidConfig, "matcher", nil, nil),
			code: 4,
		},
		{
			name: "wrapped reconciler error",
			err:  fmt.Errorf("run: %w", errors.ReconciliationError(errors.CodeProcessingError, "reconcile", nil)),
			code: 5,
		},
		{
			name:     "permission denied",
			err:      stderrors.New("open report.csv: permission denied"),
			code:     2,
			contains: []string{"Permission denied"},
		},
		{
			name:     "disk full",
			err:      stderrors.New("write report.xlsx: no space left on device"),
			code:     2,
			contains: []string{"Insufficient disk space"},
		},
		{
			name:     "generic error",
			err:      stderrors.New("boom"),
			code:     1,
			contains: []string{"Error: boom", "--verbose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := &CLIErrorHandler{logger: testLogger(), out: &out}

			if got := h.HandleError(tt.err); got != tt.code {
				t.Errorf("HandleError() = %d, want %d", got, tt.code)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q\n%s", want, out.String())
				}
			}
		})
	}
}

func TestHandleErrorContextIsSorted(t *testing.T) {
	var out bytes.Buffer
	h := &CLIErrorHandler{logger: testLogger(), out: &out}

	err := errors.WorkbookError(errors.CodeMissingColumn, "MAYORES", "Haber", nil).
		WithContext("a_first", 1)
	h.HandleError(err)

	text := out.String()
	first := strings.Index(text, "a_first:")
	sheet := strings.Index(text, "sheet:")
	if first < 0 || sheet < 0 || first > sheet {
		t.Errorf("context keys not sorted\n%s", text)
	}
}

func TestHandleErrorVerboseShowsCause(t *testing.T) {
	var out bytes.Buffer
	h := &CLIErrorHandler{logger: testLogger(), out: &out, verbose: true}

	h.HandleError(errors.FileError(errors.CodeFileCorrupted, "x.xlsx", stderrors.New("zip: not a valid zip file")))
	if !strings.Contains(out.String(), "Underlying error:") {
		t.Errorf("verbose output should show the cause\n%s", out.String())
	}
}

func TestHandlePathError(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "CUADRE_TRAVIA_251105.xlsx"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := os.Open(filepath.Join(tmpDir, "CUADRE_TRAVIA_251205.xlsx"))
	var out bytes.Buffer
	h := &CLIErrorHandler{logger: testLogger(), out: &out}

	if code := h.HandleError(err); code != 2 {
		t.Errorf("HandleError() = %d, want 2", code)
	}
	for _, want := range []string{"Error with file 'CUADRE_TRAVIA_251205.xlsx'", "Similar files found:", "- CUADRE_TRAVIA_251105.xlsx"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestFormatValidationErrors(t *testing.T) {
	if got := FormatValidationErrors(nil); got != "" {
		t.Errorf("FormatValidationErrors(nil) = %q, want empty", got)
	}

	one := FormatValidationErrors([]error{stderrors.New("bad month")})
	if one != "Validation error: bad month" {
		t.Errorf("single error = %q", one)
	}

	var many []error
	for i := 0; i < 12; i++ {
		many = append(many, fmt.Errorf("error %d", i))
	}
	text := FormatValidationErrors(many)
	if !strings.HasPrefix(text, "Found 12 validation errors:") {
		t.Errorf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "... and 2 more errors") {
		t.Errorf("long lists should be truncated: %q", text)
	}
}

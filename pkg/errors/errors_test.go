package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestReconcilerError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "missing sheet",
			category:   CategoryParse,
			code:       CodeMissingSheet,
			message:    "sheet missing",
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "reconciliation error",
			category:   CategoryReconciliation,
			code:       CodeProcessingError,
			message:    "processing",
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *ReconcilerError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
			if len(err.StackTrace) == 0 {
				t.Error("expected a captured stack trace")
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWorkbookError(t *testing.T) {
	err := WorkbookError(CodeMissingColumn, "MAYORES", "Haber", nil)

	if err.Category != CategoryParse {
		t.Errorf("expected parse category, got %s", err.Category)
	}
	if err.Context["sheet"] != "MAYORES" {
		t.Errorf("expected sheet context, got %v", err.Context["sheet"])
	}
	if err.Context["column"] != "Haber" {
		t.Errorf("expected column context, got %v", err.Context["column"])
	}
	if err.Suggestion == "" {
		t.Error("expected suggestion to be set")
	}

	sheetErr := WorkbookError(CodeMissingSheet, "Sheet1", "", nil)
	if _, ok := sheetErr.Context["column"]; ok {
		t.Error("missing sheet error should not carry a column")
	}
}

func TestAsReconcilerError(t *testing.T) {
	base := FileError(CodeFileNotFound, "/tmp/ledger.xlsx", nil)
	wrapped := fmt.Errorf("loading ledger: %w", base)

	got, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("expected to find ReconcilerError in chain")
	}
	if got != base {
		t.Error("expected the original error")
	}
	if !IsCode(wrapped, CodeFileNotFound) {
		t.Error("expected IsCode to match")
	}
	if IsCode(errors.New("plain"), CodeFileNotFound) {
		t.Error("plain errors carry no code")
	}
}

func TestWithContextAndSuggestion(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "/path/to/file").
		WithSuggestion("check file path")

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected error string '%s', got '%s'", expected, err.Error())
	}
	if err.Context["file"] != "/path/to/file" {
		t.Errorf("expected file context, got %v", err.Context["file"])
	}
}

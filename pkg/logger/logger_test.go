package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{name: "default", config: DefaultConfig()},
		{name: "debug", config: DebugConfig()},
		{name: "bad level", config: &Config{Level: "loud", Format: TextFormat, Output: StderrOutput}, expectErr: true},
		{name: "bad format", config: &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, expectErr: true},
		{name: "file without path", config: &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFieldsArePreserved(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, InfoLevel).
		WithComponent("aggregator").
		WithField("sheet", "MAYORES").
		WithError(errors.New("boom"))

	log.Info("rows loaded")

	out := buf.String()
	for _, want := range []string{"component=aggregator", "sheet=MAYORES", "error=boom", "rows loaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, WarnLevel)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn message in output: %q", out)
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := t.TempDir() + "/logs/run.log"
	log, err := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: FileOutput, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("hello")
}

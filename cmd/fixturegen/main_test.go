package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFixturegen(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output-dir", dir, "--company", "ELIA", "--year", "2026", "--month", "2", "--matched", "3", "--pdfs=false"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, name := range []string{"CUADRE_ELIA_260228.xlsx", "expected.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "pdfs")); !os.IsNotExist(err) {
		t.Errorf("pdfs directory should not be written")
	}
	if !strings.Contains(out.String(), "Matched:              3") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestFixturegenRejectsBadMonth(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output-dir", t.TempDir(), "--month", "13"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for month 13")
	}
}

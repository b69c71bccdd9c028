package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestRunModelInlineArgs(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return runModel(rootCmd, []string{"{", "value:", "1", "+", "2", "}"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, out)
	}
	if strings.TrimSpace(out) != "3" {
		t.Fatalf("output = %q, want %q", out, "3")
	}
}

func TestRunModelFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.er")
	if err := os.WriteFile(path, []byte("{ value: 6 * 7 }"), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}

	out, err := captureStdout(t, func() error {
		return runModel(rootCmd, []string{"@" + path})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, out)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("output = %q, want %q", out, "42")
	}
}

func TestRunModelWholeModelWhenNoValueField(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return runModel(rootCmd, []string{"{ a: 1; b: 2 }"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "a: 1") || !strings.Contains(out, "b: 2") {
		t.Fatalf("expected full model rendering, got %q", out)
	}
}

func TestRunModelParseErrorPrintsToStdout(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return runModel(rootCmd, []string{"{ value: 1 +"})
	})
	if err == nil {
		t.Fatal("expected a parsing error")
	}
	if !strings.Contains(out, "<args>") {
		t.Fatalf("expected the formatted error on stdout, got %q", out)
	}
}

func TestRunModelShowSchemaPrintsType(t *testing.T) {
	showSchema = true
	defer func() { showSchema = false }()

	out, err := captureStdout(t, func() error {
		return runModel(rootCmd, []string{"{ value: 1 + 2 }"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a schema line followed by the value, got %q", out)
	}
	if strings.TrimSpace(lines[1]) != "3" {
		t.Fatalf("expected the value on the last line, got %q", out)
	}
}

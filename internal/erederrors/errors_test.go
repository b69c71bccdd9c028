package erederrors

import (
	"strings"
	"testing"

	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/parser"
)

func TestFormatParseErrorHasCaret(t *testing.T) {
	src := "{ a: 1 +\n}"
	_, errs := parser.ParseModel(src)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for %q", src)
	}
	out := FromParseErrors(errs, src, "<input>")
	formatted := out[0].Format(false)
	if !strings.Contains(formatted, "<input>") {
		t.Fatalf("expected file name in output, got %q", formatted)
	}
	if !strings.Contains(formatted, "^") {
		t.Fatalf("expected caret in output, got %q", formatted)
	}
}

func TestFormatLinkErrorHasNoCaret(t *testing.T) {
	root, _ := parser.ParseModel("{ a: missing + 1 }")
	_, lerrs := linker.Link(root)
	if len(lerrs) == 0 {
		t.Fatalf("expected link errors")
	}
	out := FromLinkErrors(lerrs, "{ a: missing + 1 }", "<input>")
	formatted := out[0].Format(false)
	if strings.Contains(formatted, "^") {
		t.Fatalf("did not expect a caret for a positionless link error, got %q", formatted)
	}
}

func TestFormatErrorsNumbersMultiple(t *testing.T) {
	errs := []*SourceError{
		{Message: "first"},
		{Message: "second"},
	}
	out := FormatErrors(errs, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Fatalf("expected a count header, got %q", out)
	}
	if !strings.Contains(out, "[Error 1 of 2]") || !strings.Contains(out, "[Error 2 of 2]") {
		t.Fatalf("expected numbered sections, got %q", out)
	}
}

// Package erederrors renders parse, link, and runtime failures as
// source-anchored diagnostics, the way the teacher's internal/errors
// package formats compiler errors: a line:column header, the
// offending source line, and a caret. Internal packages keep
// returning their own plain/typed errors (*parser.ParseError,
// *linker.LinkError, plain runtime errors); only the CLI upgrades
// them to this form before printing.
package erederrors

import (
	"fmt"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/parser"
)

// SourceError is one diagnostic anchored (when a position is known)
// to a line/column in Source. Link and runtime errors carry no token
// position (spec.md's error taxonomy is field/path based, not
// token-based), so Pos is the zero value for those and Format omits
// the source line and caret.
type SourceError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

func (e *SourceError) Error() string { return e.Format(false) }

// Format renders the diagnostic. If color is true, ANSI codes
// highlight the caret and message.
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder

	if e.Pos.Line > 0 {
		if e.File != "" {
			sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
		} else {
			sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
		}
		if line := sourceLine(e.Source, e.Pos.Line); line != "" {
			prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	} else if e.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s\n", e.File))
	} else {
		sb.WriteString("Error\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FromParseErrors converts the parser's position-carrying errors.
func FromParseErrors(errs []*parser.ParseError, source, file string) []*SourceError {
	out := make([]*SourceError, len(errs))
	for i, e := range errs {
		out[i] = &SourceError{Message: e.Message, Source: source, File: file, Pos: e.Pos}
	}
	return out
}

// FromLinkErrors converts the linker's path-carrying errors. They
// have no token position, so each SourceError renders without a
// caret line.
func FromLinkErrors(errs []*linker.LinkError, source, file string) []*SourceError {
	out := make([]*SourceError, len(errs))
	for i, e := range errs {
		out[i] = &SourceError{Message: e.Error(), Source: source, File: file}
	}
	return out
}

// FromRuntimeError converts a single evaluation-time error, also
// positionless.
func FromRuntimeError(err error, source, file string) *SourceError {
	return &SourceError{Message: err.Error(), Source: source, File: file}
}

// FormatErrors renders one or more diagnostics, numbering them when
// there is more than one (mirrors the teacher's FormatErrors).
func FormatErrors(errs []*SourceError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Failed with %d error(s):\n\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

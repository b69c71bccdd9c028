// Package linker resolves identifier references, infers and checks
// static types, detects cyclic field dependencies, and propagates
// user-type schemas/defaults onto `as`-cast object literals
// (spec.md §4.3).
package linker

import (
	"fmt"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// ErrorKind tags a LinkError the way spec.md §4.3 enumerates.
type ErrorKind int

const (
	FieldNotFound ErrorKind = iota
	TypesNotCompatible
	CyclicReference
	DuplicateName
	DefaultValueTypeMismatch
	UnsupportedCast
	ArityMismatch
	InvalidArgumentType
)

func (k ErrorKind) String() string {
	switch k {
	case FieldNotFound:
		return "FieldNotFound"
	case TypesNotCompatible:
		return "TypesNotCompatible"
	case CyclicReference:
		return "CyclicReference"
	case DuplicateName:
		return "DuplicateName"
	case DefaultValueTypeMismatch:
		return "DefaultValueTypeMismatch"
	case UnsupportedCast:
		return "UnsupportedCast"
	case ArityMismatch:
		return "ArityMismatch"
	case InvalidArgumentType:
		return "InvalidArgumentType"
	default:
		return "Unknown"
	}
}

// LinkError is a single linker failure. It reports the target field
// path from the root, the offending expression text, and a kind tag
// (spec.md §4.3/§7).
type LinkError struct {
	Kind       ErrorKind
	Path       []string
	Expression string
	Message    string
}

func (e *LinkError) Error() string {
	path := strings.Join(e.Path, ".")
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s: %s (at %s: %s)", e.Kind, e.Message, path, e.Expression)
}

func newError(kind ErrorKind, path []string, exprText, msg string) *LinkError {
	return &LinkError{Kind: kind, Path: append([]string{}, path...), Expression: exprText, Message: msg}
}

func fieldNotFoundErr(path []string, exprText, objectPath, field string) *LinkError {
	return newError(FieldNotFound, path, exprText, fmt.Sprintf("field '%s' not found on %s", field, objectPath))
}

func cyclicErr(path []string, exprText, name string) *LinkError {
	return newError(CyclicReference, path, exprText, fmt.Sprintf("cyclic reference involving '%s'", name))
}

func typesNotCompatibleErr(path []string, exprText, side string, got types.Type, expected []types.Type) *LinkError {
	names := make([]string, len(expected))
	for i, t := range expected {
		names[i] = t.String()
	}
	return newError(TypesNotCompatible, path, exprText,
		fmt.Sprintf("%s: got %s, expected one of [%s]", side, got.String(), strings.Join(names, ", ")))
}

func duplicateErr(path []string, exprText, kind, name string) *LinkError {
	return newError(DuplicateName, path, exprText, fmt.Sprintf("Duplicate %s '%s'", kind, name))
}

func arityErr(path []string, exprText, name string, got, want int) *LinkError {
	return newError(ArityMismatch, path, exprText, fmt.Sprintf("'%s' expects %d argument(s), got %d", name, want, got))
}

func invalidArgErr(path []string, exprText, fn string, argIndex int, got types.Type, want string) *LinkError {
	return newError(InvalidArgumentType, path, exprText,
		fmt.Sprintf("%s: argument %d: unexpected %s, expected %s", fn, argIndex+1, got.String(), want))
}

func defaultMismatchErr(path []string, exprText, field string, got, want types.Type) *LinkError {
	return newError(DefaultValueTypeMismatch, path, exprText,
		fmt.Sprintf("default for field '%s': got %s, expected %s", field, got.String(), want.String()))
}

func unsupportedCastErr(path []string, exprText, msg string) *LinkError {
	return newError(UnsupportedCast, path, exprText, msg)
}

package linker

import (
	"testing"

	"github.com/rimvydasb/edgerules-sub002/internal/parser"
)

func linkSource(t *testing.T, src string) []*LinkError {
	t.Helper()
	root, perrs := parser.ParseModel(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}
	_, lerrs := Link(root)
	return lerrs
}

func TestLinkSimpleArithmetic(t *testing.T) {
	errs := linkSource(t, "{ a: 1; b: 2; c: a + b }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkCyclicReference(t *testing.T) {
	errs := linkSource(t, "{ a: b + 1; b: a + 1 }")
	if len(errs) == 0 {
		t.Fatal("expected a cyclic reference error")
	}
	found := false
	for _, e := range errs {
		if e.Kind == CyclicReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CyclicReference, got %v", errs)
	}
}

func TestLinkFieldNotFound(t *testing.T) {
	errs := linkSource(t, "{ a: 1; b: missingField }")
	if len(errs) == 0 {
		t.Fatal("expected field-not-found error")
	}
	if errs[0].Kind != FieldNotFound {
		t.Fatalf("expected FieldNotFound, got %v", errs[0].Kind)
	}
}

func TestLinkTypeMismatch(t *testing.T) {
	errs := linkSource(t, "{ a: 'hi'; b: a + 1 }")
	if len(errs) == 0 {
		t.Fatal("expected a type mismatch error")
	}
	if errs[0].Kind != TypesNotCompatible {
		t.Fatalf("expected TypesNotCompatible, got %v", errs[0].Kind)
	}
}

func TestLinkUserFunctionCall(t *testing.T) {
	errs := linkSource(t, "{ func add(a,b): a + b; value: add(1, 2) }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkArityMismatch(t *testing.T) {
	errs := linkSource(t, "{ func add(a,b): a + b; value: add(1) }")
	if len(errs) == 0 {
		t.Fatal("expected an arity mismatch error")
	}
	if errs[0].Kind != ArityMismatch {
		t.Fatalf("expected ArityMismatch, got %v", errs[0].Kind)
	}
}

func TestLinkUserTypeCast(t *testing.T) {
	src := `{
		type Customer: { name: <string>; income: <number, 0> }
		c: { name: 'John' } as Customer
		value: c.income
	}`
	errs := linkSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkUnknownCastType(t *testing.T) {
	errs := linkSource(t, "{ c: { name: 'John' } as NoSuchType }")
	if len(errs) == 0 {
		t.Fatal("expected unsupported cast error")
	}
	if errs[0].Kind != UnsupportedCast {
		t.Fatalf("expected UnsupportedCast, got %v", errs[0].Kind)
	}
}

func TestLinkFilterIndexResolution(t *testing.T) {
	errs := linkSource(t, "{ nums: [1,2,3]; first: nums[0] }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkFilterPredicateResolution(t *testing.T) {
	errs := linkSource(t, "{ nums: [1,5,12,7]; big: nums[it>6] }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkForComprehension(t *testing.T) {
	errs := linkSource(t, "{ doubled: for x in [1,2,3] return x * 2 }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkHigherOrderCallViaParameter(t *testing.T) {
	errs := linkSource(t, "{ func double(n): n * 2; func apply(fn, x): fn(x); value: apply(double, 5) }")
	if len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
}

func TestLinkIfBranchMismatch(t *testing.T) {
	errs := linkSource(t, "{ value: if true then 1 else 'no' }")
	if len(errs) == 0 {
		t.Fatal("expected if-branch type mismatch")
	}
}

package interp

import (
	"testing"

	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/parser"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// evalField links src and evaluates the named field, failing the test
// on parse or link errors.
func evalField(t *testing.T, src, field string) (types.Value, error) {
	t.Helper()
	root, perrs := parser.ParseModel(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}
	linked, lerrs := linker.Link(root)
	if len(lerrs) > 0 {
		t.Fatalf("unexpected link errors for %q: %v", src, lerrs)
	}
	ev := NewEvaluator()
	env := ev.Root(linked)
	return ev.EvalField(env, field)
}

func assertValue(t *testing.T, src, field, want string) {
	t.Helper()
	v, err := evalField(t, src, field)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	if v.String() != want {
		t.Fatalf("%s.%s = %s, want %s", src, field, v.String(), want)
	}
}

func TestEvalArithmetic(t *testing.T) {
	assertValue(t, "{ a: 1; b: 2; c: a + b * 2 }", "c", "5")
}

func TestEvalDecimalExactness(t *testing.T) {
	assertValue(t, "{ a: 0.1; b: 0.2; c: a + b }", "c", "0.3")
}

func TestEvalStringConcat(t *testing.T) {
	assertValue(t, "{ a: 'foo'; b: 'bar'; c: a + b }", "c", "'foobar'")
}

func TestEvalIfExpr(t *testing.T) {
	assertValue(t, "{ x: 5; y: if x > 3 then 'big' else 'small' }", "y", "'big'")
}

func TestEvalForComprehension(t *testing.T) {
	assertValue(t, "{ doubled: for x in [1,2,3] return x * 2 }", "doubled", "[2, 4, 6]")
}

func TestEvalFilterPredicate(t *testing.T) {
	assertValue(t, "{ nums: [1,5,12,7]; big: nums[it>6] }", "big", "[12, 7]")
}

func TestEvalFilterIndex(t *testing.T) {
	assertValue(t, "{ nums: [10,20,30]; first: nums[0] }", "first", "10")
}

func TestEvalFilterIndexOutOfRange(t *testing.T) {
	assertValue(t, "{ nums: [10,20,30]; x: nums[99] }", "x", "Missing('N/A')")
}

func TestEvalUserFunctionCall(t *testing.T) {
	assertValue(t, "{ func add(a,b): a + b; value: add(3, 4) }", "value", "7")
}

func TestEvalHigherOrderFunctionCall(t *testing.T) {
	assertValue(t, "{ func double(n): n * 2; func apply(fn, x): fn(x); value: apply(double, 5) }", "value", "10")
}

func TestEvalUserTypeCastDefaults(t *testing.T) {
	src := `{
		type Customer: { name: <string>; income: <number, 0> }
		c: { name: 'John' } as Customer
		value: c.income
	}`
	assertValue(t, src, "value", "0")
}

func TestEvalCyclicFieldFails(t *testing.T) {
	v, err := evalFieldAllowLinkErrors(t, "{ a: b + 1; b: a + 1 }", "a")
	if err == nil {
		t.Fatalf("expected a cyclic evaluation error, got value %v", v)
	}
}

func TestEvalMissingPropagation(t *testing.T) {
	src := `{ income: <number>; doubled: income * 2 }`
	v, err := evalField(t, src, "doubled")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := types.IsMissing(v); !ok {
		t.Fatalf("expected a Missing value, got %v", v)
	}
}

func TestEvalSumBuiltin(t *testing.T) {
	assertValue(t, "{ nums: [1,2,3,4]; total: sum(nums) }", "total", "10")
}

func TestEvalStringBuiltins(t *testing.T) {
	assertValue(t, "{ s: 'Hello World'; up: toUpperCase(s) }", "up", "'HELLO WORLD'")
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := evalField(t, "{ a: 1; b: 0; c: a / b }", "c")
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestEvalMinMaxOfEmptyList(t *testing.T) {
	assertValue(t, "{ nums: []; lo: min(nums) }", "lo", "Missing('N/A')")
	assertValue(t, "{ nums: []; hi: max(nums) }", "hi", "Missing('N/A')")
}

func TestEvalAggregatesPropagateMissing(t *testing.T) {
	calls := []string{"sum(nums)", "product(nums)", "mean(nums)", "median(nums)", "stddev(nums)", "min(nums)", "max(nums)"}
	for _, call := range calls {
		src := "{ income: <number>; nums: [1, income, 3]; total: " + call + " }"
		v, err := evalField(t, src, "total")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", call, err)
		}
		if _, ok := types.IsMissing(v); !ok {
			t.Fatalf("%s = %v, want a Missing value", call, v)
		}
	}
}

// evalFieldAllowLinkErrors links a model that the linker itself is
// expected to reject (e.g. a cyclic reference), then still attempts
// evaluation against the partially-linked tree to exercise the
// evaluator's own defensive cycle guard.
func evalFieldAllowLinkErrors(t *testing.T, src, field string) (types.Value, error) {
	t.Helper()
	root, perrs := parser.ParseModel(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}
	linked, _ := linker.Link(root)
	ev := NewEvaluator()
	env := ev.Root(linked)
	return ev.EvalField(env, field)
}

package parser

import "testing"

func mustParse(t *testing.T, src string) {
	t.Helper()
	_, errs := ParseModel(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
}

func TestParseSimpleFields(t *testing.T) {
	root, errs := ParseModel("{ a: 0.1; b: 0.2; c: a + b }")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(root.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(root.Fields))
	}
	if root.Fields[2].Name != "c" {
		t.Errorf("expected field c, got %s", root.Fields[2].Name)
	}
}

func TestParseTopLevelBraceOptional(t *testing.T) {
	mustParse(t, "a: 1\nb: 2")
}

func TestParseUserFunction(t *testing.T) {
	root, errs := ParseModel("{ func add(a,b): a + b; value: add(1+2, 3*4) }")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(root.Functions) != 1 || root.Functions[0].Name != "add" {
		t.Fatalf("expected function add, got %+v", root.Functions)
	}
	if root.Functions[0].Body.Fields[0].Name != "return" {
		t.Fatalf("expected 'return' field, got %s", root.Functions[0].Body.Fields[0].Name)
	}
}

func TestParseUserType(t *testing.T) {
	src := `{
		type Customer: { name: <string>; income: <number, 0>; active: <boolean, true> }
		c: { name: 'John' } as Customer
		value: c
	}`
	root, errs := ParseModel(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(root.Types) != 1 || root.Types[0].Name != "Customer" {
		t.Fatalf("expected type Customer, got %+v", root.Types)
	}
	if len(root.Types[0].Fields) != 3 {
		t.Fatalf("expected 3 type fields, got %d", len(root.Types[0].Fields))
	}
}

func TestParseFilterAndComprehension(t *testing.T) {
	mustParse(t, "{ nums: [1,5,12,7]; filtered: nums[...>6] }")
	mustParse(t, "{ value: for x in [1, 2] return x * 2 }")
}

func TestParseDuplicateFieldError(t *testing.T) {
	_, errs := ParseModel("{ a: 1; a: 2 }")
	if len(errs) == 0 {
		t.Fatal("expected duplicate name error")
	}
}

func TestParsePlaceholderTypes(t *testing.T) {
	root, errs := ParseModel("{ identification: <number>; relationsList: <number[]> }")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(root.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(root.Fields))
	}
}

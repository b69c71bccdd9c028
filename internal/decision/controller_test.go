package decision

import (
	"testing"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
	"github.com/shopspring/decimal"
)

func mustController(t *testing.T, src string) *Controller {
	t.Helper()
	c, err := FromSource(src)
	if err != nil {
		t.Fatalf("unexpected error building controller for %q: %v", src, err)
	}
	return c
}

func TestControllerExecute(t *testing.T) {
	c := mustController(t, "{ func double(request): request * 2 }")
	v, err := c.Execute("double", types.NumberValue{V: decimal.NewFromInt(21)})
	if err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}
	if v.String() != "42" {
		t.Fatalf("Execute(double, 21) = %s, want 42", v.String())
	}
}

func TestControllerExecuteUnknownMethod(t *testing.T) {
	c := mustController(t, "{ a: 1 }")
	if _, err := c.Execute("missing", types.NumberValue{}); err == nil {
		t.Fatal("expected an error calling an unknown method")
	}
}

func TestControllerGetEntry(t *testing.T) {
	c := mustController(t, "{ customer: { name: 'John'; age: 30 } }")
	v, err := c.GetEntry("customer.age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number("30") {
		t.Fatalf("customer.age = %v, want Number(30)", v)
	}
}

func TestControllerGetEntryWildcardSnapshot(t *testing.T) {
	c := mustController(t, "{ a: 1; b: 'hi' }")
	v, err := c.GetEntry("*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected *Object snapshot, got %T", v)
	}
	if got, ok := obj.Get("a"); !ok || got != Number("1") {
		t.Fatalf("a = %v, want Number(1)", got)
	}
}

func TestControllerSetEntryThenGet(t *testing.T) {
	c := mustController(t, "{ a: 1 }")
	if _, err := c.SetEntry("b", Number("2")); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	v, err := c.GetEntry("b")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if v != Number("2") {
		t.Fatalf("b = %v, want Number(2)", v)
	}
}

func TestControllerSetEntryRejectsUnlinkableValue(t *testing.T) {
	c := mustController(t, "{ a: 1 }")
	if _, err := c.SetEntry("b", &Object{Entries: []Entry{{Key: "@type", Value: "type"}}}); err == nil {
		t.Fatal("expected an error creating a @type entry via SetEntry")
	}
}

func TestControllerRemoveEntry(t *testing.T) {
	c := mustController(t, "{ a: 1; b: 2 }")
	if err := c.RemoveEntry("b"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if _, err := c.GetEntry("b"); err == nil {
		t.Fatal("expected an error reading a removed entry")
	}
}

func TestControllerRemoveEntryNotFound(t *testing.T) {
	c := mustController(t, "{ a: 1 }")
	if err := c.RemoveEntry("missing"); err == nil {
		t.Fatal("expected a not-found error")
	}
}

func TestControllerRenameRoundTrip(t *testing.T) {
	// a and b are independent data entries (no cross-reference), the
	// realistic shape for a decision service's renamed entries: a
	// field referenced elsewhere by its old literal name would fail
	// to re-link after the rename, by design (see
	// TestControllerRenameBreaksDependentField).
	c := mustController(t, "{ a: 1; b: 2 }")
	if err := c.RenameEntry("a", "x"); err != nil {
		t.Fatalf("unexpected rename error: %v", err)
	}
	if err := c.RenameEntry("x", "a"); err != nil {
		t.Fatalf("unexpected rename-back error: %v", err)
	}
	v, err := c.GetEntry("a")
	if err != nil {
		t.Fatalf("unexpected error after rename round trip: %v", err)
	}
	if v != Number("1") {
		t.Fatalf("a = %v, want Number(1)", v)
	}
}

func TestControllerRenameBreaksDependentField(t *testing.T) {
	c := mustController(t, "{ a: 1; b: a + 1 }")
	if err := c.RenameEntry("a", "x"); err == nil {
		t.Fatal("expected renaming a field still referenced by its old name to fail re-linking")
	}
	v, err := c.GetEntry("a")
	if err != nil {
		t.Fatalf("expected 'a' to still resolve after rollback: %v", err)
	}
	if v != Number("1") {
		t.Fatalf("a = %v after rollback, want Number(1)", v)
	}
}

func TestControllerRenameCrossContextFails(t *testing.T) {
	c := mustController(t, "{ nested: { a: 1 }; b: 2 }")
	if err := c.RenameEntry("nested.a", "b"); err == nil {
		t.Fatal("expected a cross-context rename error")
	}
}

func TestControllerGetLinkedType(t *testing.T) {
	c := mustController(t, "{ nested: { age: 30 } }")
	ty, err := c.GetLinkedType("nested.age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty.Kind != types.KindNumber {
		t.Fatalf("nested.age type = %s, want number", ty.String())
	}
}

func TestControllerRelinkRollbackOnRemove(t *testing.T) {
	c := mustController(t, "{ a: 1; b: a + 1 }")
	if err := c.RemoveEntry("a"); err == nil {
		t.Fatal("expected removing a field other fields depend on to fail re-linking")
	}
	v, err := c.GetEntry("a")
	if err != nil {
		t.Fatalf("expected 'a' to still be present after rollback: %v", err)
	}
	if v != Number("1") {
		t.Fatalf("a = %v after rollback, want Number(1)", v)
	}
}

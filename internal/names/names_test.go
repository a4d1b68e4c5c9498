package names

import "testing"

func TestInternDeduplicates(t *testing.T) {
	table := NewTable()
	a := table.Intern("foo")
	b := table.Intern("foo")
	if a != b {
		t.Fatalf("expected identical refs, got %v and %v", a, b)
	}
	if table.Value(a) != "foo" {
		t.Fatalf("expected foo, got %q", table.Value(a))
	}
}

func TestWellKnownNamesAreStable(t *testing.T) {
	first := NewTable()
	sig := Sig
	second := NewTable()
	if Sig != sig {
		t.Fatalf("well-known refs changed between tables")
	}
	if first.Value(Sig) != "sig" || second.Value(Sig) != "sig" {
		t.Fatalf("well-known name does not round-trip")
	}
	if second.Value(SquareBrackets) != "[]" {
		t.Fatalf("expected [], got %q", second.Value(SquareBrackets))
	}
}

func TestUniqueNamesDoNotCollide(t *testing.T) {
	table := NewTable()
	base := table.Intern("Foo")
	u1 := table.Unique(UniqueSingleton, base, 1)
	u2 := table.Unique(UniqueSingleton, base, 1)
	u3 := table.Unique(UniqueSingleton, base, 2)
	if u1 != u2 {
		t.Fatalf("same unique key must return the same ref")
	}
	if u1 == u3 {
		t.Fatalf("different discriminators must differ")
	}
	if u1 == base {
		t.Fatalf("unique name collided with its original")
	}
	uniq, original, num, ok := table.UniqueInfo(u1)
	if !ok || uniq != UniqueSingleton || original != base || num != 1 {
		t.Fatalf("unexpected unique info: %v %v %v %v", uniq, original, num, ok)
	}
}

func TestIsConstantPartitionsNames(t *testing.T) {
	table := NewTable()
	if !table.IsConstant(table.Intern("Foo")) {
		t.Fatalf("Foo should be constant-kinded")
	}
	if table.IsConstant(table.Intern("foo")) {
		t.Fatalf("foo should not be constant-kinded")
	}
	singleton := table.Unique(UniqueSingleton, table.Intern("Bar"), 1)
	if !table.IsConstant(singleton) {
		t.Fatalf("unique names inherit the answer from the original")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table := NewTable()
	a := table.Intern("alpha")
	cp := table.Clone()
	if cp.Value(a) != "alpha" {
		t.Fatalf("clone lost an entry")
	}
	b := table.Intern("beta")
	if cp.Len() == table.Len() {
		t.Fatalf("clone tracked the original's growth")
	}
	// Refs are plain indices, so the clone may hand out b's number for a
	// different string; that must not reach the original.
	before := table.Len()
	if g := cp.Intern("gamma"); g != b || table.Len() != before || table.Value(g) != "beta" {
		t.Fatalf("clone shares storage with the original")
	}
}

func TestExportRoundTrip(t *testing.T) {
	table := NewTable()
	foo := table.Intern("foo")
	uniq := table.Unique(UniqueMangleRename, foo, 7)

	restored := TableFromExport(table.Export())
	if restored.Value(foo) != "foo" {
		t.Fatalf("utf8 entry lost in round-trip")
	}
	if restored.Unique(UniqueMangleRename, foo, 7) != uniq {
		t.Fatalf("unique entry lost in round-trip")
	}
	if restored.Len() != table.Len() {
		t.Fatalf("length mismatch: %d vs %d", restored.Len(), table.Len())
	}
}

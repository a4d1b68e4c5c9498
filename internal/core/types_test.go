package core

import (
	"testing"

	"sigil/internal/config"
	"sigil/internal/diag"
	"sigil/internal/names"
	"sigil/internal/source"
)

func testSpan(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func newTestState(t *testing.T) (*GlobalState, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(32)
	gs := NewGlobalState(config.Default(), &diag.BagReporter{Bag: bag})
	return gs, bag
}

func TestClassTypesAreInterned(t *testing.T) {
	gs, _ := newTestState(t)
	a := gs.ClassTypeOf(SymInteger)
	b := gs.ClassTypeOf(SymInteger)
	if a != b {
		t.Fatalf("class types should be hash-consed")
	}
	if gs.ClassTypeOf(SymString) == a {
		t.Fatalf("distinct classes must have distinct types")
	}
}

func TestAppliedTypesAreInterned(t *testing.T) {
	gs, _ := newTestState(t)
	intType := gs.ClassTypeOf(SymInteger)
	a := gs.AppliedTypeOf(SymTArray, []TypeID{intType})
	b := gs.AppliedTypeOf(SymTArray, []TypeID{intType})
	if a != b {
		t.Fatalf("applied types should be hash-consed")
	}
	c := gs.AppliedTypeOf(SymTArray, []TypeID{gs.ClassTypeOf(SymString)})
	if c == a {
		t.Fatalf("different type arguments must differ")
	}
}

func TestAnyTypeNormalization(t *testing.T) {
	gs, _ := newTestState(t)
	intType := gs.ClassTypeOf(SymInteger)
	strType := gs.ClassTypeOf(SymString)

	if gs.AnyType(intType, intType) != intType {
		t.Fatalf("or(X, X) must be X")
	}
	if gs.AnyType(intType, gs.BottomType()) != intType {
		t.Fatalf("or(X, Bottom) must be X")
	}
	untyped := gs.UntypedUntracked()
	if gs.AnyType(intType, untyped) != untyped {
		t.Fatalf("or(X, Untyped) must be Untyped")
	}
	if gs.AnyType(intType, gs.TopType()) != gs.TopType() {
		t.Fatalf("or(X, Top) must be Top")
	}

	ab := gs.AnyType(intType, strType)
	ba := gs.AnyType(strType, intType)
	if ab != ba {
		t.Fatalf("any must be commutative after canonicalization")
	}
	if gs.TypeKindOf(ab) != TypeOr {
		t.Fatalf("expected a union, got %v", gs.TypeKindOf(ab))
	}
}

func TestAllTypeNormalization(t *testing.T) {
	gs, _ := newTestState(t)
	intType := gs.ClassTypeOf(SymInteger)
	strType := gs.ClassTypeOf(SymString)

	if gs.AllType(intType, gs.TopType()) != intType {
		t.Fatalf("and(X, Top) must be X")
	}
	if gs.AllType(intType, gs.BottomType()) != gs.BottomType() {
		t.Fatalf("and(X, Bottom) must be Bottom")
	}
	if gs.AllType(intType, strType) != gs.AllType(strType, intType) {
		t.Fatalf("all must be commutative after canonicalization")
	}
}

func TestUnionFlattening(t *testing.T) {
	gs, _ := newTestState(t)
	a := gs.ClassTypeOf(SymInteger)
	b := gs.ClassTypeOf(SymString)
	c := gs.ClassTypeOf(SymFloat)

	left := gs.AnyType(gs.AnyType(a, b), c)
	right := gs.AnyType(a, gs.AnyType(b, c))
	if left != right {
		t.Fatalf("unions must flatten to one canonical form")
	}
	gs.SanityCheckType(left)
}

func TestNilableRoundTrip(t *testing.T) {
	gs, _ := newTestState(t)
	intType := gs.ClassTypeOf(SymInteger)
	// T.nilable(Integer) builds or(Integer, NilClass); the direct
	// construction must be the identical term.
	nilable := gs.AnyType(intType, gs.NilType())
	direct := gs.AnyType(gs.NilType(), intType)
	if nilable != direct {
		t.Fatalf("nilable round-trip produced different terms")
	}
}

func TestLiteralTypes(t *testing.T) {
	gs, _ := newTestState(t)
	three := gs.IntLiteralType(3)
	if three != gs.IntLiteralType(3) {
		t.Fatalf("equal literals must be one term")
	}
	if three == gs.IntLiteralType(4) {
		t.Fatalf("distinct values must differ")
	}
	if gs.LiteralValueInt(three) != 3 {
		t.Fatalf("lost the literal value")
	}
	neg := gs.IntLiteralType(-7)
	if gs.LiteralValueInt(neg) != -7 {
		t.Fatalf("negative literal did not round-trip")
	}
	pi := gs.FloatLiteralType(3.5)
	if gs.LiteralValueFloat(pi) != 3.5 {
		t.Fatalf("float literal did not round-trip")
	}
	name := gs.Names.Intern("foo")
	if gs.LiteralValueName(gs.SymbolLiteralType(name)) != name {
		t.Fatalf("symbol literal did not round-trip")
	}
}

func TestTypeVarsAreFresh(t *testing.T) {
	gs, _ := newTestState(t)
	a := gs.NewTypeVar(SymTodo)
	b := gs.NewTypeVar(SymTodo)
	if a == b {
		t.Fatalf("type variables must not be interned")
	}
}

func TestRebindTypeVarKeepsHandle(t *testing.T) {
	gs, _ := newTestState(t)
	v := gs.NewTypeVar(SymTodo)
	arg := gs.EnterMethodSymbol(SymObject, gs.Names.Intern("m"), testSpan(1))
	tv := gs.EnterTypeArgument(arg, gs.Names.Intern("U"), testSpan(2), Invariant)
	gs.RebindTypeVar(v, tv)
	if gs.TypeOf(v).Sym != tv {
		t.Fatalf("rebind did not re-point the owner")
	}
}

func TestMetaAndUnresolvedTypes(t *testing.T) {
	gs, _ := newTestState(t)
	wrapped := gs.ClassTypeOf(SymInteger)
	meta := gs.MetaTypeOf(wrapped)
	if meta != gs.MetaTypeOf(wrapped) {
		t.Fatalf("meta types should be hash-consed")
	}

	path := []names.Ref{gs.Names.Intern("Missing"), gs.Names.Intern("Deep")}
	stub := gs.UnresolvedClassTypeOf(SymRoot, path)
	if stub != gs.UnresolvedClassTypeOf(SymRoot, path) {
		t.Fatalf("identical stub paths must be one term")
	}
	other := gs.UnresolvedClassTypeOf(SymRoot, path[:1])
	if other == stub {
		t.Fatalf("different stub paths must differ")
	}
	scope, got := gs.UnresolvedPath(stub)
	if scope != SymRoot || len(got) != 2 {
		t.Fatalf("stub path not retained verbatim")
	}
}

package sigparse

import (
	"testing"

	"sigil/internal/ast"
	"sigil/internal/config"
	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/names"
	"sigil/internal/source"
)

type fixture struct {
	gs    *core.GlobalState
	bag   *diag.Bag
	owner core.SymbolRef
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, config.Default())
}

func newFixtureWith(t *testing.T, cfg config.Config) *fixture {
	t.Helper()
	bag := diag.NewBag(64)
	gs := core.NewGlobalState(cfg, &diag.BagReporter{Bag: bag})
	owner := gs.EnterClassSymbol(core.SymRoot, gs.Names.Intern("Example"), span(1))
	gs.Symbol(owner).SetIsModule(false)
	gs.Symbol(owner).SetSuperClass(core.SymObject)
	return &fixture{gs: gs, bag: bag, owner: owner}
}

func (f *fixture) ctx() core.MutableContext {
	return core.MutableContext{Context: core.Context{GS: f.gs, Owner: f.owner, File: 1}}
}

func (f *fixture) parse(t *testing.T, body ast.Node) ParsedSig {
	t.Helper()
	return ParseSig(f.ctx(), sigBlock(body), nil, true, core.NoSymbol)
}

func (f *fixture) hasCode(code diag.Code) bool {
	for _, d := range f.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func selfRef() ast.Node {
	return &ast.Local{Loc: span(0), Self: true}
}

func constant(sym core.SymbolRef) *ast.ConstantLit {
	return &ast.ConstantLit{Loc: span(2), Symbol: sym}
}

func send(recv ast.Node, fn names.Ref, args ...ast.Node) *ast.Send {
	return &ast.Send{Loc: span(3), Recv: recv, Fn: fn, Args: args}
}

func sigBlock(body ast.Node) *ast.Send {
	return &ast.Send{
		Loc:   span(4),
		Recv:  selfRef(),
		Fn:    names.Sig,
		Block: &ast.Block{Loc: span(4), Body: body},
	}
}

func (f *fixture) symLit(name string) *ast.Literal {
	return &ast.Literal{Loc: span(5), Kind: ast.LitSymbol, Name: f.gs.Names.Intern(name)}
}

func kwargs(f *fixture, pairs ...any) *ast.HashLit {
	hash := &ast.HashLit{Loc: span(6)}
	for i := 0; i < len(pairs); i += 2 {
		hash.Keys = append(hash.Keys, f.symLit(pairs[i].(string)))
		hash.Values = append(hash.Values, pairs[i+1].(ast.Node))
	}
	return hash
}

// sig { params(x: Integer, y: String).returns(Integer) }
func TestParamsAndReturns(t *testing.T) {
	f := newFixture(t)
	body := send(
		send(selfRef(), names.Params, kwargs(f, "x", constant(core.SymInteger), "y", constant(core.SymString))),
		names.Returns, constant(core.SymInteger),
	)
	sig := f.parse(t, body)

	if !sig.Seen.Sig || !sig.Seen.Params || !sig.Seen.Returns {
		t.Fatalf("seen flags wrong: %+v", sig.Seen)
	}
	if len(sig.ArgTypes) != 2 {
		t.Fatalf("expected 2 args, got %d", len(sig.ArgTypes))
	}
	if f.gs.Names.Value(sig.ArgTypes[0].Name) != "x" || sig.ArgTypes[0].Type != f.gs.ClassTypeOf(core.SymInteger) {
		t.Fatalf("arg 0 wrong: %+v", sig.ArgTypes[0])
	}
	if f.gs.Names.Value(sig.ArgTypes[1].Name) != "y" || sig.ArgTypes[1].Type != f.gs.ClassTypeOf(core.SymString) {
		t.Fatalf("arg 1 wrong: %+v", sig.ArgTypes[1])
	}
	if sig.Returns != f.gs.ClassTypeOf(core.SymInteger) {
		t.Fatalf("returns wrong: %s", f.gs.ShowType(sig.Returns))
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", f.bag.Items())
	}
}

// sig { abstract.params(x: T.nilable(Integer)).void }
func TestAbstractNilableVoid(t *testing.T) {
	f := newFixture(t)
	nilable := send(constant(core.SymT), names.Nilable, constant(core.SymInteger))
	body := send(
		send(
			send(selfRef(), names.Abstract),
			names.Params, kwargs(f, "x", nilable),
		),
		names.Void,
	)
	sig := f.parse(t, body)

	if !sig.Seen.Abstract || !sig.Seen.Void {
		t.Fatalf("seen flags wrong: %+v", sig.Seen)
	}
	if sig.Returns != f.gs.VoidType() {
		t.Fatalf("void must set returns to Void, got %s", f.gs.ShowType(sig.Returns))
	}
	want := f.gs.AnyType(f.gs.ClassTypeOf(core.SymInteger), f.gs.NilType())
	if sig.ArgTypes[0].Type != want {
		t.Fatalf("nilable arg wrong: %s", f.gs.ShowType(sig.ArgTypes[0].Type))
	}
}

// sig { type_parameters(:U).params(xs: T::Array[T.type_parameter(:U)]).returns(T.type_parameter(:U)) }
func TestTypeParameters(t *testing.T) {
	f := newFixture(t)
	typeParam := send(constant(core.SymT), names.TypeParameter, f.symLit("U"))
	arrayOfU := send(constant(core.SymTArray), names.SquareBrackets, typeParam)
	body := send(
		send(
			send(selfRef(), names.TypeParameters, f.symLit("U")),
			names.Params, kwargs(f, "xs", arrayOfU),
		),
		names.Returns, send(constant(core.SymT), names.TypeParameter, f.symLit("U")),
	)
	sig := f.parse(t, body)

	if len(sig.TypeArgs) != 1 || f.gs.Names.Value(sig.TypeArgs[0].Name) != "U" {
		t.Fatalf("type args wrong: %+v", sig.TypeArgs)
	}
	tv := sig.TypeArgs[0].Type
	if f.gs.TypeKindOf(tv) != core.TypeVar {
		t.Fatalf("type arg should be a type variable")
	}
	want := f.gs.AppliedTypeOf(core.SymTArray, []core.TypeID{tv})
	if sig.ArgTypes[0].Type != want {
		t.Fatalf("argument type wrong: %s", f.gs.ShowType(sig.ArgTypes[0].Type))
	}
	if sig.Returns != tv {
		t.Fatalf("returns must be the same type variable")
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", f.bag.Items())
	}
}

// sig { returns(nil) }
func TestReturnsNilDiagnoses(t *testing.T) {
	f := newFixture(t)
	body := send(selfRef(), names.Returns, &ast.Literal{Loc: span(7), Kind: ast.LitNil})
	sig := f.parse(t, body)

	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the NilClass hint diagnostic")
	}
	if sig.Returns != f.gs.NilType() {
		t.Fatalf("recovery must still produce NilClass, got %s", f.gs.ShowType(sig.Returns))
	}
}

// T.proc.params(x: Integer).returns(String)
func TestBareProcType(t *testing.T) {
	f := newFixture(t)
	chain := send(
		send(
			send(constant(core.SymT), names.Proc),
			names.Params, kwargs(f, "x", constant(core.SymInteger)),
		),
		names.Returns, constant(core.SymString),
	)
	got := GetResultType(f.ctx(), chain, &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.AppliedTypeOf(core.ProcClass(1), []core.TypeID{
		f.gs.ClassTypeOf(core.SymString),
		f.gs.ClassTypeOf(core.SymInteger),
	})
	if got != want {
		t.Fatalf("proc type wrong: %s, want %s", f.gs.ShowType(got), f.gs.ShowType(want))
	}
}

// Array[Integer] vs T::Array[Integer]
func TestBadStdlibGeneric(t *testing.T) {
	f := newFixture(t)
	legacy := send(constant(core.SymArray), names.SquareBrackets, constant(core.SymInteger))
	got := GetResultType(f.ctx(), legacy, &ParsedSig{}, false, core.NoSymbol)
	if !f.gs.IsUntyped(got) {
		t.Fatalf("legacy generic must yield untyped, got %s", f.gs.ShowType(got))
	}
	if !f.hasCode(diag.ResolverBadStdlibGeneric) {
		t.Fatalf("expected BadStdlibGeneric")
	}
	fixed := false
	for _, d := range f.bag.Items() {
		if d.Code == diag.ResolverBadStdlibGeneric && len(d.Fixes) > 0 {
			fixed = true
		}
	}
	if !fixed {
		t.Fatalf("the legacy generic diagnostic must carry a fix")
	}

	typed := send(constant(core.SymTArray), names.SquareBrackets, constant(core.SymInteger))
	got = GetResultType(f.ctx(), typed, &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.AppliedTypeOf(core.SymTArray, []core.TypeID{f.gs.ClassTypeOf(core.SymInteger)})
	if got != want {
		t.Fatalf("typed generic wrong: %s", f.gs.ShowType(got))
	}
}

func TestUserDefinedGenericInstantiation(t *testing.T) {
	f := newFixture(t)
	box := f.gs.EnterClassSymbol(core.SymRoot, f.gs.Names.Intern("Box"), span(1))
	f.gs.Symbol(box).SetIsModule(false)
	f.gs.Symbol(box).SetSuperClass(core.SymObject)
	f.gs.EnterTypeMember(box, f.gs.Names.Intern("Elem"), span(2), core.Invariant)

	expr := send(constant(box), names.SquareBrackets, constant(core.SymInteger))
	got := GetResultType(f.ctx(), expr, &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.AppliedTypeOf(box, []core.TypeID{f.gs.ClassTypeOf(core.SymInteger)})
	if got != want {
		t.Fatalf("user generic wrong: %s", f.gs.ShowType(got))
	}

	// Wrong arity is diagnosed and recovered per parameter.
	f2 := newFixture(t)
	box2 := f2.gs.EnterClassSymbol(core.SymRoot, f2.gs.Names.Intern("Box"), span(1))
	f2.gs.Symbol(box2).SetIsModule(false)
	f2.gs.Symbol(box2).SetSuperClass(core.SymObject)
	f2.gs.EnterTypeMember(box2, f2.gs.Names.Intern("Elem"), span(2), core.Invariant)
	bad := send(constant(box2), names.SquareBrackets,
		constant(core.SymInteger), constant(core.SymString))
	f2.gs.SanityCheckType(GetResultType(f2.ctx(), bad, &ParsedSig{}, false, core.NoSymbol))
	if !f2.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("expected an arity diagnostic")
	}
}

func TestGenericWithoutArgsDiagnosed(t *testing.T) {
	f := newFixture(t)
	// T::Array referenced bare is generic and not in the silenced set.
	got := GetResultType(f.ctx(), constant(core.SymTArray), &ParsedSig{}, false, core.NoSymbol)
	if !f.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("expected the bare-generic diagnostic")
	}
	_ = got

	// The legacy stdlib set is silenced.
	f2 := newFixture(t)
	got2 := GetResultType(f2.ctx(), constant(core.SymArray), &ParsedSig{}, false, core.NoSymbol)
	if f2.bag.Len() != 0 {
		t.Fatalf("Array must be silenced, got %+v", f2.bag.Items())
	}
	if f2.gs.TypeKindOf(got2) != core.TypeApplied {
		t.Fatalf("bare Array still resolves to its external type")
	}
}

func TestTupleAndShapeLiterals(t *testing.T) {
	f := newFixture(t)
	tuple := &ast.ArrayLit{Loc: span(8), Elems: []ast.Node{constant(core.SymInteger), constant(core.SymString)}}
	got := GetResultType(f.ctx(), tuple, &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.TupleTypeOf([]core.TypeID{f.gs.ClassTypeOf(core.SymInteger), f.gs.ClassTypeOf(core.SymString)})
	if got != want {
		t.Fatalf("tuple literal wrong: %s", f.gs.ShowType(got))
	}

	shape := &ast.HashLit{
		Loc:    span(9),
		Keys:   []ast.Node{f.symLit("id")},
		Values: []ast.Node{constant(core.SymInteger)},
	}
	got = GetResultType(f.ctx(), shape, &ParsedSig{}, false, core.NoSymbol)
	if f.gs.TypeKindOf(got) != core.TypeShape {
		t.Fatalf("shape literal wrong: %s", f.gs.ShowType(got))
	}

	// Non-literal shape keys are diagnosed and dropped.
	badShape := &ast.HashLit{
		Loc:    span(10),
		Keys:   []ast.Node{constant(core.SymInteger)},
		Values: []ast.Node{constant(core.SymString)},
	}
	GetResultType(f.ctx(), badShape, &ParsedSig{}, false, core.NoSymbol)
	if !f.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("expected shape key diagnostic")
	}
}

func TestEnumFeatureMode(t *testing.T) {
	f := newFixture(t)
	arr := &ast.ArrayLit{Loc: span(11), Elems: []ast.Node{
		&ast.Literal{Loc: span(11), Kind: ast.LitInt, Int: 1},
		&ast.Literal{Loc: span(12), Kind: ast.LitString, Name: f.gs.Names.Intern("foo")},
	}}
	got := GetResultType(f.ctx(), send(constant(core.SymT), names.Enum, arr), &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.AnyType(f.gs.IntLiteralType(1), f.gs.StringLiteralType(f.gs.Names.Intern("foo")))
	if got != want {
		t.Fatalf("enum union wrong: %s", f.gs.ShowType(got))
	}
	if !f.hasCode(diag.ResolverEnumDeprecated) {
		t.Fatalf("expected the deprecation warning")
	}

	// enum([]) is invalid either way.
	f2 := newFixture(t)
	GetResultType(f2.ctx(), send(constant(core.SymT), names.Enum, &ast.ArrayLit{Loc: span(13)}), &ParsedSig{}, false, core.NoSymbol)
	if !f2.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("expected enum([]) diagnostic")
	}
}

func TestEnumLegacyMode(t *testing.T) {
	cfg := config.Default()
	cfg.Features.EnumLiteralUnion = false
	f := newFixtureWith(t, cfg)

	// The legacy quirk: a non-array silently degrades to Object.
	got := GetResultType(f.ctx(), send(constant(core.SymT), names.Enum, f.symLit("oops")), &ParsedSig{}, false, core.NoSymbol)
	if got != f.gs.ClassTypeOf(core.SymObject) {
		t.Fatalf("legacy enum must degrade to Object, got %s", f.gs.ShowType(got))
	}
	if f.bag.Len() != 0 {
		t.Fatalf("legacy enum must stay silent, got %+v", f.bag.Items())
	}

	// A literal array still builds the union, without the deprecation.
	arr := &ast.ArrayLit{Loc: span(14), Elems: []ast.Node{&ast.Literal{Loc: span(14), Kind: ast.LitInt, Int: 2}}}
	got = GetResultType(f.ctx(), send(constant(core.SymT), names.Enum, arr), &ParsedSig{}, false, core.NoSymbol)
	if got != f.gs.IntLiteralType(2) {
		t.Fatalf("legacy enum union wrong: %s", f.gs.ShowType(got))
	}
	if f.hasCode(diag.ResolverEnumDeprecated) {
		t.Fatalf("legacy mode must not warn")
	}
}

func TestSelfTypeOnlyAtTopLevel(t *testing.T) {
	f := newFixture(t)
	selfType := send(constant(core.SymT), names.SelfType)
	got := GetResultType(f.ctx(), selfType, &ParsedSig{}, true, core.NoSymbol)
	if f.gs.TypeKindOf(got) != core.TypeSelf {
		t.Fatalf("top-level self type wrong: %s", f.gs.ShowType(got))
	}

	f2 := newFixture(t)
	got = GetResultType(f2.ctx(), send(constant(core.SymT), names.SelfType), &ParsedSig{}, false, core.NoSymbol)
	if !f2.gs.IsUntyped(got) || !f2.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("nested self type must diagnose and poison")
	}
}

func TestClassOf(t *testing.T) {
	f := newFixture(t)
	got := GetResultType(f.ctx(), send(constant(core.SymT), names.ClassOf, constant(f.owner)), &ParsedSig{}, false, core.NoSymbol)
	want := f.gs.ClassTypeOf(f.gs.SingletonClass(f.owner))
	if got != want {
		t.Fatalf("class_of wrong: %s", f.gs.ShowType(got))
	}

	// class_of rejects constant fields.
	f2 := newFixture(t)
	field := f2.gs.EnterStaticFieldSymbol(core.SymRoot, f2.gs.Names.Intern("CONST"), span(1))
	got = GetResultType(f2.ctx(), send(constant(core.SymT), names.ClassOf, constant(field)), &ParsedSig{}, false, core.NoSymbol)
	if !f2.gs.IsUntyped(got) || !f2.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("class_of on a constant field must diagnose")
	}
}

func TestNoreturnAndUntyped(t *testing.T) {
	f := newFixture(t)
	if GetResultType(f.ctx(), send(constant(core.SymT), names.Noreturn), &ParsedSig{}, false, core.NoSymbol) != f.gs.BottomType() {
		t.Fatalf("noreturn must be bottom")
	}
	blame := f.gs.EnterMethodSymbol(f.owner, f.gs.Names.Intern("blamed"), span(2))
	got := GetResultType(f.ctx(), send(constant(core.SymT), names.Untyped), &ParsedSig{}, false, blame)
	if !f.gs.IsUntyped(got) {
		t.Fatalf("expected untyped")
	}
	if f.gs.TypeOf(got).Sym != blame {
		t.Fatalf("untyped must carry its blame symbol")
	}
}

func TestTypeAliasExpansion(t *testing.T) {
	f := newFixture(t)
	alias := f.gs.EnterStaticFieldSymbol(core.SymRoot, f.gs.Names.Intern("IntOrNil"), span(1))
	f.gs.Symbol(alias).SetTypeAlias()
	f.gs.Symbol(alias).ResultType = f.gs.AnyType(f.gs.ClassTypeOf(core.SymInteger), f.gs.NilType())

	got := GetResultType(f.ctx(), constant(alias), &ParsedSig{}, false, core.NoSymbol)
	if got != f.gs.Symbol(alias).ResultType {
		t.Fatalf("alias must expand to its stored type, got %s", f.gs.ShowType(got))
	}
}

func TestStaticFieldInTypePosition(t *testing.T) {
	f := newFixture(t)
	field := f.gs.EnterStaticFieldSymbol(core.SymRoot, f.gs.Names.Intern("VALUE"), span(1))
	got := GetResultType(f.ctx(), constant(field), &ParsedSig{}, false, core.NoSymbol)
	if !f.gs.IsUntyped(got) || !f.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("a plain constant in type position must diagnose")
	}
}

func TestStubConstantKeepsPath(t *testing.T) {
	f := newFixture(t)
	path := []names.Ref{f.gs.Names.Intern("Missing"), f.gs.Names.Intern("Thing")}
	node := &ast.ConstantLit{
		Loc:             span(15),
		Symbol:          core.SymStubModule,
		UnresolvedScope: core.SymRoot,
		UnresolvedPath:  path,
	}
	got := GetResultType(f.ctx(), node, &ParsedSig{}, false, core.NoSymbol)
	if f.gs.TypeKindOf(got) != core.TypeUnresolved {
		t.Fatalf("stub must stay a stub, got %s", f.gs.ShowType(got))
	}
	scope, gotPath := f.gs.UnresolvedPath(got)
	if scope != core.SymRoot || len(gotPath) != 2 {
		t.Fatalf("stub path not retained")
	}
}

func TestSplatRejected(t *testing.T) {
	f := newFixture(t)
	splat := send(constant(core.SymMagic), names.CallWithSplat, constant(core.SymInteger))
	got := GetResultType(f.ctx(), splat, &ParsedSig{}, false, core.NoSymbol)
	if !f.gs.IsUntyped(got) || !f.hasCode(diag.ResolverInvalidTypeDeclarationTyped) {
		t.Fatalf("splats must be rejected outright")
	}
}

func TestTypeMemberScoping(t *testing.T) {
	f := newFixture(t)
	elem := f.gs.EnterTypeMember(f.owner, f.gs.Names.Intern("Elem"), span(1), core.Invariant)

	// Inside the defining class, in an instance-method context.
	got := GetResultType(f.ctx(), constant(elem), &ParsedSig{}, false, core.NoSymbol)
	if f.gs.TypeKindOf(got) != core.TypeLambdaParam {
		t.Fatalf("type member must resolve to a lambda param, got %s", f.gs.ShowType(got))
	}

	// The same member from a singleton context is rejected.
	f2 := newFixture(t)
	elem2 := f2.gs.EnterTypeMember(f2.owner, f2.gs.Names.Intern("Elem"), span(1), core.Invariant)
	singleton := f2.gs.SingletonClass(f2.owner)
	ctx := core.MutableContext{Context: core.Context{GS: f2.gs, Owner: singleton, File: 1}}
	got = GetResultType(ctx, constant(elem2), &ParsedSig{}, false, core.NoSymbol)
	if !f2.gs.IsUntyped(got) || !f2.hasCode(diag.ResolverInvalidTypeDeclarationTyped) {
		t.Fatalf("instance member in singleton context must diagnose")
	}

	// From an unrelated class it is out of scope.
	f3 := newFixture(t)
	elem3 := f3.gs.EnterTypeMember(f3.owner, f3.gs.Names.Intern("Elem"), span(1), core.Invariant)
	other := f3.gs.EnterClassSymbol(core.SymRoot, f3.gs.Names.Intern("Other"), span(2))
	f3.gs.Symbol(other).SetIsModule(false)
	f3.gs.Symbol(other).SetSuperClass(core.SymObject)
	ctx = core.MutableContext{Context: core.Context{GS: f3.gs, Owner: other, File: 1}}
	got = GetResultType(ctx, constant(elem3), &ParsedSig{}, false, core.NoSymbol)
	if !f3.gs.IsUntyped(got) || !f3.hasCode(diag.ResolverInvalidTypeDeclarationTyped) {
		t.Fatalf("member outside its class must diagnose")
	}
}

func TestBind(t *testing.T) {
	f := newFixture(t)
	proc := send(
		send(
			send(constant(core.SymT), names.Proc),
			names.Bind, constant(f.owner),
		),
		names.Returns, constant(core.SymString),
	)
	sig := ParseSig(f.ctx(), proc, nil, false, core.NoSymbol)
	if !sig.Seen.Bind || sig.Bind != f.owner {
		t.Fatalf("bind not recorded: %+v", sig)
	}

	// Duplicate .bind clears the field and diagnoses.
	f2 := newFixture(t)
	dup := send(
		send(
			send(
				send(constant(core.SymT), names.Proc),
				names.Bind, constant(f2.owner),
			),
			names.Bind, constant(f2.owner),
		),
		names.Returns, constant(core.SymString),
	)
	sig = ParseSig(f2.ctx(), dup, nil, false, core.NoSymbol)
	if !f2.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the duplicate bind diagnostic")
	}

	// .bind in a param's nested proc is permitted and extracted.
	f3 := newFixture(t)
	blkType := send(
		send(
			send(
				send(constant(core.SymT), names.Proc),
				names.Bind, constant(f3.owner),
			),
			names.Params, kwargs(f3, "x", constant(core.SymInteger)),
		),
		names.Returns, constant(core.SymString),
	)
	body := send(
		send(selfRef(), names.Params, kwargs(f3, "blk", blkType)),
		names.Void,
	)
	outer := f3.parse(t, body)
	if outer.ArgTypes[0].Rebind != f3.owner {
		t.Fatalf("nested proc bind must surface as the arg's rebind")
	}
	if f3.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", f3.bag.Items())
	}
}

func TestDuplicateParamsClearsAndDiagnoses(t *testing.T) {
	f := newFixture(t)
	body := send(
		send(
			send(selfRef(), names.Params, kwargs(f, "x", constant(core.SymInteger))),
			names.Params, kwargs(f, "y", constant(core.SymString)),
		),
		names.Void,
	)
	sig := f.parse(t, body)
	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the duplicate params diagnostic")
	}
	// The chain is walked outermost-first, so the inner call lands last
	// and its cleared-then-refilled list survives.
	if len(sig.ArgTypes) != 1 {
		t.Fatalf("expected a single surviving params list, got %+v", sig.ArgTypes)
	}
}

func TestUnknownVerbDiagnosed(t *testing.T) {
	f := newFixture(t)
	body := send(send(selfRef(), f.gs.Names.Intern("bogus")), names.Void)
	f.parse(t, body)
	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the unknown verb diagnostic")
	}
}

func TestInvalidReceiverDiagnosed(t *testing.T) {
	f := newFixture(t)
	// A chain rooted in a constant that is not T and not self.
	body := send(constant(core.SymInteger), names.Void)
	f.parse(t, body)
	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the invalid receiver diagnostic")
	}
}

func TestTypeParametersDiagnostics(t *testing.T) {
	// Duplicate names.
	f := newFixture(t)
	body := send(
		send(selfRef(), names.TypeParameters, f.symLit("U"), f.symLit("U")),
		names.Void,
	)
	f.parse(t, body)
	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the duplicate type parameter diagnostic")
	}

	// Non-symbol arguments.
	f2 := newFixture(t)
	body = send(
		send(selfRef(), names.TypeParameters, &ast.Literal{Loc: span(16), Kind: ast.LitInt, Int: 3}),
		names.Void,
	)
	f2.parse(t, body)
	if !f2.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("expected the non-symbol type parameter diagnostic")
	}

	// Unspecified type parameter usage.
	f3 := newFixture(t)
	body = send(selfRef(), names.Returns, send(constant(core.SymT), names.TypeParameter, f3.symLit("Z")))
	f3.parse(t, body)
	if !f3.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("expected the unspecified type parameter diagnostic")
	}
}

func TestIsSigPredicate(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx().Context

	good := sigBlock(send(selfRef(), names.Void))
	if !IsSig(ctx, good) {
		t.Fatalf("self.sig with a block must be a sig")
	}

	viaModule := &ast.Send{Loc: span(17), Recv: constant(core.SymSorbet), Fn: names.Sig,
		Block: &ast.Block{Loc: span(17), Body: send(selfRef(), names.Void)}}
	if !IsSig(ctx, viaModule) {
		t.Fatalf("Sorbet.sig must be a sig")
	}

	noBlock := &ast.Send{Loc: span(18), Recv: selfRef(), Fn: names.Sig}
	if IsSig(ctx, noBlock) {
		t.Fatalf("sig without a block is not a sig")
	}

	withArgs := sigBlock(send(selfRef(), names.Void))
	withArgs.Args = []ast.Node{f.symLit("x")}
	if IsSig(ctx, withArgs) {
		t.Fatalf("sig with arguments is not a sig")
	}
}

func TestApplyWritesBack(t *testing.T) {
	f := newFixture(t)
	method := f.gs.EnterMethodSymbol(f.owner, f.gs.Names.Intern("add"), span(1))
	data := f.gs.Symbol(method)
	data.Arguments = append(data.Arguments,
		core.ArgInfo{Name: f.gs.Names.Intern("x"), Kind: core.ArgRequired},
		core.ArgInfo{Name: f.gs.Names.Intern("y"), Kind: core.ArgRequired},
	)

	body := send(
		send(
			send(selfRef(), names.Abstract),
			names.Params, kwargs(f, "x", constant(core.SymInteger), "y", constant(core.SymString)),
		),
		names.Returns, constant(core.SymInteger),
	)
	sig := f.parse(t, body)
	Apply(f.ctx(), &sig, method)

	data = f.gs.Symbol(method)
	if data.ResultType != f.gs.ClassTypeOf(core.SymInteger) {
		t.Fatalf("result type not written back")
	}
	if data.Arguments[0].Type != f.gs.ClassTypeOf(core.SymInteger) {
		t.Fatalf("arg x type not written back")
	}
	if data.Arguments[1].Type != f.gs.ClassTypeOf(core.SymString) {
		t.Fatalf("arg y type not written back")
	}
	if !data.IsAbstract() {
		t.Fatalf("abstract flag not written back")
	}
}

func TestApplyTypeParameters(t *testing.T) {
	f := newFixture(t)
	method := f.gs.EnterMethodSymbol(f.owner, f.gs.Names.Intern("map"), span(1))
	body := send(
		send(selfRef(), names.TypeParameters, f.symLit("U")),
		names.Returns, send(constant(core.SymT), names.TypeParameter, f.symLit("U")),
	)
	sig := f.parse(t, body)
	Apply(f.ctx(), &sig, method)

	data := f.gs.Symbol(method)
	if len(data.TypeParams) != 1 {
		t.Fatalf("type argument symbol not entered")
	}
	tv := sig.TypeArgs[0].Type
	if f.gs.TypeOf(tv).Sym != data.TypeParams[0] {
		t.Fatalf("type variable not re-pointed at its symbol")
	}
	if data.Flags&core.FlagMethodGeneric == 0 {
		t.Fatalf("generic flag not set")
	}
	// The invariant: the var's owner is the method's type argument.
	if f.gs.EnclosingMethod(f.gs.TypeOf(tv).Sym) != method {
		t.Fatalf("type argument not owned by the method")
	}
}

func TestNestedTypeParametersRejected(t *testing.T) {
	f := newFixture(t)
	inner := send(
		send(
			send(constant(core.SymT), names.Proc),
			names.TypeParameters, f.symLit("V"),
		),
		names.Returns, constant(core.SymString),
	)
	body := send(
		send(selfRef(), names.Params, kwargs(f, "blk", inner)),
		names.Void,
	)
	f.parse(t, body)
	if !f.hasCode(diag.ResolverInvalidMethodSignature) {
		t.Fatalf("type_parameters on a nested sig must diagnose")
	}
}

func TestProcArityBound(t *testing.T) {
	f := newFixture(t)
	pairs := make([]any, 0, 2*(core.MaxProcArity+1))
	for i := 0; i <= core.MaxProcArity; i++ {
		pairs = append(pairs, string(rune('a'+i)), ast.Node(constant(core.SymInteger)))
	}
	chain := send(
		send(
			send(constant(core.SymT), names.Proc),
			names.Params, kwargs(f, pairs...),
		),
		names.Returns, constant(core.SymString),
	)
	got := GetResultType(f.ctx(), chain, &ParsedSig{}, false, core.NoSymbol)
	if !f.gs.IsUntyped(got) || !f.hasCode(diag.ResolverInvalidTypeDeclaration) {
		t.Fatalf("over-arity proc must diagnose and poison")
	}
}

func TestSelfInTypePosition(t *testing.T) {
	f := newFixture(t)
	got := GetResultType(f.ctx(), selfRef(), &ParsedSig{}, false, core.NoSymbol)
	if got != f.gs.SelfTypeOf(f.owner) {
		t.Fatalf("self must resolve to the owner's self type")
	}
}

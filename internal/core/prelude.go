package core

import (
	"fmt"

	"sigil/internal/source"
)

// initPrelude enters the reserved symbols in the fixed order the SymbolRef
// constants promise. Classes come first so the numbering stays contiguous;
// type members, singletons and intrinsics follow once every reserved ref is
// allocated.
func (gs *GlobalState) initPrelude() {
	// Root owns itself; allocate it by hand.
	root := gs.allocSymbol(Symbol{
		Owner: SymRoot,
		Name:  gs.Names.Intern("<root>"),
		Flags: FlagClass | FlagClassModule,
	})
	gs.expect(root, SymRoot)

	todo := gs.allocSymbol(Symbol{
		Owner: SymRoot,
		Name:  gs.Names.Intern("<todo>"),
		Flags: FlagClass | FlagClassModule,
	})
	gs.expect(todo, SymTodo)

	gs.expect(gs.preludeClass(SymRoot, "BasicObject", NoSymbol), SymTop)
	gs.expect(gs.preludeClass(SymRoot, "Object", SymTop), SymObject)
	gs.expect(gs.preludeClass(SymRoot, "NilClass", SymObject), SymNilClass)
	gs.expect(gs.preludeClass(SymRoot, "TrueClass", SymObject), SymTrueClass)
	gs.expect(gs.preludeClass(SymRoot, "FalseClass", SymObject), SymFalseClass)
	gs.expect(gs.preludeClass(SymRoot, "Integer", SymObject), SymInteger)
	gs.expect(gs.preludeClass(SymRoot, "Float", SymObject), SymFloat)
	gs.expect(gs.preludeClass(SymRoot, "String", SymObject), SymString)
	gs.expect(gs.preludeClass(SymRoot, "Symbol", SymObject), SymSymbol)
	gs.expect(gs.preludeClass(SymRoot, "Void", SymObject), SymVoid)
	gs.expect(gs.preludeModule(SymRoot, "<stub>"), SymStubModule)
	gs.expect(gs.preludeModule(SymRoot, "Magic"), SymMagic)
	gs.expect(gs.preludeModule(SymRoot, "Sorbet"), SymSorbet)
	gs.expect(gs.preludeModule(SymRoot, "T"), SymT)

	gs.expect(gs.preludeClass(SymRoot, "Array", SymObject), SymArray)
	gs.expect(gs.preludeClass(SymRoot, "Hash", SymObject), SymHash)
	gs.expect(gs.preludeClass(SymRoot, "Set", SymObject), SymSet)
	gs.expect(gs.preludeClass(SymRoot, "Struct", SymObject), SymStruct)
	gs.expect(gs.preludeClass(SymRoot, "File", SymObject), SymFile)
	gs.expect(gs.preludeClass(SymRoot, "Range", SymObject), SymRange)
	gs.expect(gs.preludeClass(SymRoot, "Enumerable", SymObject), SymEnumerable)
	gs.expect(gs.preludeClass(SymRoot, "Enumerator", SymObject), SymEnumerator)

	// The typed shims subclass their legacy counterparts, so tuple and
	// shape promotions reach both.
	gs.expect(gs.preludeClass(SymT, "Array", SymArray), SymTArray)
	gs.expect(gs.preludeClass(SymT, "Hash", SymHash), SymTHash)
	gs.expect(gs.preludeClass(SymT, "Set", SymSet), SymTSet)
	gs.expect(gs.preludeClass(SymT, "Range", SymRange), SymTRange)
	gs.expect(gs.preludeClass(SymT, "Enumerable", SymEnumerable), SymTEnumerable)
	gs.expect(gs.preludeClass(SymT, "Enumerator", SymEnumerator), SymTEnumerator)

	for arity := 0; arity <= MaxProcArity; arity++ {
		gs.expect(gs.preludeClass(SymRoot, fmt.Sprintf("Proc%d", arity), SymObject), ProcClass(arity))
	}

	// Every reserved ref is numbered; now grow the generic structure.
	for _, g := range []struct {
		sym     SymbolRef
		members []string
	}{
		{SymArray, []string{"Elem"}},
		{SymHash, []string{"K", "V"}},
		{SymSet, []string{"Elem"}},
		{SymRange, []string{"Elem"}},
		{SymEnumerable, []string{"Elem"}},
		{SymEnumerator, []string{"Elem"}},
		{SymTArray, []string{"Elem"}},
		{SymTHash, []string{"K", "V"}},
		{SymTSet, []string{"Elem"}},
		{SymTRange, []string{"Elem"}},
		{SymTEnumerable, []string{"Elem"}},
		{SymTEnumerator, []string{"Elem"}},
	} {
		for _, m := range g.members {
			gs.EnterTypeMember(g.sym, gs.Names.Intern(m), source.Span{}, CoVariant)
		}
	}

	for arity := 0; arity <= MaxProcArity; arity++ {
		proc := ProcClass(arity)
		gs.EnterTypeMember(proc, gs.Names.Intern("ReturnType"), source.Span{}, CoVariant)
		for i := 0; i < arity; i++ {
			gs.EnterTypeMember(proc, gs.Names.Intern(fmt.Sprintf("Arg%d", i)), source.Span{}, ContraVariant)
		}
	}

	// Generic instantiation dispatches a synthetic [] call on the
	// singleton; user classes get the same treatment lazily in
	// SingletonClass.
	for ref := SymRoot; ref <= lastReserved; ref++ {
		if gs.Symbol(ref).IsClass() && len(gs.Symbol(ref).TypeParams) > 0 {
			gs.SingletonClass(ref)
		}
	}
}

func (gs *GlobalState) expect(got, want SymbolRef) {
	if got != want {
		panic(fmt.Sprintf("core: prelude symbol out of order: got %d, want %d", got, want))
	}
}

func (gs *GlobalState) preludeClass(owner SymbolRef, name string, super SymbolRef) SymbolRef {
	ref := gs.EnterClassSymbol(owner, gs.Names.Intern(name), source.Span{})
	sym := gs.Symbol(ref)
	sym.SetIsModule(false)
	sym.SetSuperClass(super)
	return ref
}

func (gs *GlobalState) preludeModule(owner SymbolRef, name string) SymbolRef {
	ref := gs.EnterClassSymbol(owner, gs.Names.Intern(name), source.Span{})
	gs.Symbol(ref).SetIsModule(true)
	return ref
}

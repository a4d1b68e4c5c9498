package core

import (
	"sigil/internal/names"
)

// SingletonClass returns the companion singleton class of sym, creating it
// lazily. The singleton is cached as a member of sym under a reserved
// synthetic name; the back link is a member named `<attached class>`.
func (gs *GlobalState) SingletonClass(sym SymbolRef) SymbolRef {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		panic("core: singleton of a non-class symbol")
	}
	if existing := gs.LookupSingletonClass(sym); existing.Exists() {
		return existing
	}

	selfName := data.Name
	owner := data.Owner
	singletonName := gs.Names.Unique(names.UniqueSingleton, selfName, 1)
	ref := gs.allocSymbol(Symbol{
		Owner: owner,
		Name:  singletonName,
		Flags: FlagClass | FlagClassClass,
	})

	data = gs.Symbol(sym) // realloc-safe
	if data.Members == nil {
		data.Members = make(map[names.Ref]SymbolRef)
	}
	data.Members[singletonName] = ref

	gs.Symbol(ref).Members = map[names.Ref]SymbolRef{
		names.AttachedClass: sym,
	}

	// The singleton hierarchy mirrors the attached one; the chain roots at
	// Object. Resolve the parent singleton first: creating it reallocates
	// the arena.
	superSingleton := SymObject
	if super := gs.Symbol(sym).SuperOrRebind; super.Exists() && super != sym {
		superSingleton = gs.SingletonClass(super)
	}
	gs.Symbol(ref).SuperOrRebind = superSingleton

	// A generic attached class makes its singleton instantiable too.
	if len(gs.Symbol(sym).TypeParams) > 0 {
		method := gs.EnterMethodSymbol(ref, names.SquareBrackets, gs.Symbol(sym).Loc())
		m := gs.Symbol(method)
		m.Flags |= FlagDSLSynthesized
		m.Intrinsic = genericInstantiate
	}
	return ref
}

// LookupSingletonClass returns the already-created singleton, or NoSymbol.
func (gs *GlobalState) LookupSingletonClass(sym SymbolRef) SymbolRef {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		return NoSymbol
	}
	name := gs.Names.Unique(names.UniqueSingleton, data.Name, 1)
	if ref, ok := data.Members[name]; ok {
		return ref
	}
	return NoSymbol
}

// IsSingletonClass reports whether sym is the singleton of some class.
func (gs *GlobalState) IsSingletonClass(sym SymbolRef) bool {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		return false
	}
	_, ok := data.Members[names.AttachedClass]
	return ok
}

// AttachedClass is the inverse of SingletonClass; NoSymbol for ordinary
// classes.
func (gs *GlobalState) AttachedClass(sym SymbolRef) SymbolRef {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		return NoSymbol
	}
	if ref, ok := data.Members[names.AttachedClass]; ok {
		return ref
	}
	return NoSymbol
}

// TopAttachedClass follows attached-class links until an ordinary class.
func (gs *GlobalState) TopAttachedClass(sym SymbolRef) SymbolRef {
	cur := sym
	for {
		attached := gs.AttachedClass(cur)
		if !attached.Exists() {
			return cur
		}
		cur = attached
	}
}

// EnclosingClass walks the owner chain up to the nearest class, sym
// included.
func (gs *GlobalState) EnclosingClass(sym SymbolRef) SymbolRef {
	cur := sym
	for cur.Exists() {
		if gs.Symbol(cur).IsClass() {
			return cur
		}
		if cur == SymRoot {
			break
		}
		cur = gs.Symbol(cur).Owner
	}
	return NoSymbol
}

// EnclosingMethod walks the owner chain up to the nearest method.
func (gs *GlobalState) EnclosingMethod(sym SymbolRef) SymbolRef {
	cur := sym
	for cur.Exists() && cur != SymRoot {
		if gs.Symbol(cur).IsMethod() {
			return cur
		}
		cur = gs.Symbol(cur).Owner
	}
	return NoSymbol
}

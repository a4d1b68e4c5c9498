package core

// TypeArity is the number of type arguments needed to instantiate the
// class: its unfixed type members.
func (gs *GlobalState) TypeArity(sym SymbolRef) int {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		panic("core: type arity of a non-class symbol")
	}
	n := 0
	for _, tm := range data.TypeParams {
		if !gs.Symbol(tm).IsFixed() {
			n++
		}
	}
	return n
}

// selfTypeArgs instantiates each unfixed type member with a reference to
// itself, as seen from inside the class body.
func (gs *GlobalState) selfTypeArgs(sym SymbolRef) []TypeID {
	data := gs.Symbol(sym)
	out := make([]TypeID, 0, len(data.TypeParams))
	for _, tm := range data.TypeParams {
		if gs.Symbol(tm).IsFixed() {
			continue
		}
		out = append(out, gs.LambdaParamType(tm))
	}
	return out
}

// SelfTypeOf is the type of an instance of sym as seen from inside the
// class: generic classes apply their own type members.
func (gs *GlobalState) SelfTypeOf(sym SymbolRef) TypeID {
	if gs.TypeArity(sym) == 0 {
		return gs.ClassTypeOf(sym)
	}
	return gs.AppliedTypeOf(sym, gs.selfTypeArgs(sym))
}

// ExternalTypeOf is the type of an instance of sym as seen from outside:
// unfixed type members degrade to untyped.
func (gs *GlobalState) ExternalTypeOf(sym SymbolRef) TypeID {
	arity := gs.TypeArity(sym)
	if arity == 0 {
		return gs.ClassTypeOf(sym)
	}
	targs := make([]TypeID, arity)
	for i := range targs {
		targs[i] = gs.UntypedUntracked()
	}
	return gs.AppliedTypeOf(sym, targs)
}

// dealiasLimit bounds alias chains; deeper chains indicate a cycle.
const dealiasLimit = 42

// Dealias follows static-field aliases until a non-alias symbol, up to the
// depth limit.
func (gs *GlobalState) Dealias(sym SymbolRef) SymbolRef {
	return gs.dealiasWithLimit(sym, dealiasLimit)
}

func (gs *GlobalState) dealiasWithLimit(sym SymbolRef, limit int) SymbolRef {
	cur := sym
	for limit > 0 {
		data := gs.Symbol(cur)
		if !data.IsStaticField() || data.IsTypeAlias() {
			return cur
		}
		// A plain static field aliasing another symbol stores the target
		// as its rebind slot.
		target := data.SuperOrRebind
		if !target.Exists() {
			return cur
		}
		cur = target
		limit--
	}
	return cur
}

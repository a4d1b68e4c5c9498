package core

// IsSubtype implements structural subtyping over canonical terms. Untyped
// is both top and bottom for checker purposes, so it short-circuits in
// either position.
func (gs *GlobalState) IsSubtype(a, b TypeID) bool {
	if a == b {
		return true
	}
	da, db := gs.TypeOf(a), gs.TypeOf(b)

	if da.Kind == TypeUntyped || db.Kind == TypeUntyped {
		return true
	}
	if da.Kind == TypeBottom || db.Kind == TypeTop {
		return true
	}
	if da.Kind == TypeTop || db.Kind == TypeBottom {
		return false
	}

	// Composite rules. The order matters: a union on the left and an
	// intersection on the right both demand every component, and must be
	// split before the existential rules.
	if da.Kind == TypeOr {
		return gs.IsSubtype(TypeID(da.A), b) && gs.IsSubtype(TypeID(da.B), b)
	}
	if db.Kind == TypeAnd {
		return gs.IsSubtype(a, TypeID(db.A)) && gs.IsSubtype(a, TypeID(db.B))
	}
	if da.Kind == TypeAnd {
		return gs.IsSubtype(TypeID(da.A), b) || gs.IsSubtype(TypeID(da.B), b)
	}
	if db.Kind == TypeOr {
		return gs.IsSubtype(a, TypeID(db.A)) || gs.IsSubtype(a, TypeID(db.B))
	}

	switch da.Kind {
	case TypeLiteral:
		// A literal sits under its underlying class.
		return gs.IsSubtype(gs.ClassTypeOf(da.Sym), b)

	case TypeTuple:
		elems := gs.TupleElems(a)
		if db.Kind == TypeTuple {
			other := gs.TupleElems(b)
			if len(elems) != len(other) {
				return false
			}
			for i := range elems {
				if !gs.IsSubtype(elems[i], other[i]) {
					return false
				}
			}
			return true
		}
		// A tuple also behaves as an array of the element join.
		return gs.IsSubtype(gs.promoteTuple(elems), b)

	case TypeShape:
		if db.Kind == TypeShape {
			keysA, valuesA := gs.ShapeKeysValues(a)
			keysB, valuesB := gs.ShapeKeysValues(b)
			// The subtype must carry every key of the supertype.
			for i, kb := range keysB {
				found := false
				for j, ka := range keysA {
					if ka == kb {
						if !gs.IsSubtype(valuesA[j], valuesB[i]) {
							return false
						}
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		}
		return db.Kind == TypeClass && gs.DerivesFrom(SymHash, db.Sym)

	case TypeClass:
		switch db.Kind {
		case TypeClass:
			return gs.DerivesFrom(da.Sym, db.Sym)
		case TypeApplied:
			// A bare class only fits an instantiation whose arguments
			// accept anything.
			if !gs.DerivesFrom(da.Sym, db.Sym) {
				return false
			}
			for _, targ := range gs.TypeArgs(b) {
				if !gs.IsUntyped(targ) {
					return false
				}
			}
			return true
		}
		return false

	case TypeApplied:
		switch db.Kind {
		case TypeClass:
			return gs.DerivesFrom(da.Sym, db.Sym)
		case TypeApplied:
			if da.Sym == db.Sym {
				return gs.appliedSubtype(da.Sym, gs.TypeArgs(a), gs.TypeArgs(b))
			}
			if !gs.DerivesFrom(da.Sym, db.Sym) {
				return false
			}
			for _, targ := range gs.TypeArgs(b) {
				if !gs.IsUntyped(targ) {
					return false
				}
			}
			return true
		}
		return false

	case TypeMeta:
		return db.Kind == TypeMeta && gs.IsSubtype(TypeID(da.A), TypeID(db.A))
	}

	// SelfType, TypeVar, LambdaParam, Unresolved: identity only, which the
	// a == b fast path already answered.
	return false
}

// appliedSubtype compares same-class instantiations per the class's
// declared variance.
func (gs *GlobalState) appliedSubtype(sym SymbolRef, argsA, argsB []TypeID) bool {
	if len(argsA) != len(argsB) {
		return false
	}
	members := gs.unfixedTypeMembers(sym)
	for i := range argsA {
		variance := Invariant
		if i < len(members) {
			variance = gs.Symbol(members[i]).Variance()
		}
		switch variance {
		case CoVariant:
			if !gs.IsSubtype(argsA[i], argsB[i]) {
				return false
			}
		case ContraVariant:
			if !gs.IsSubtype(argsB[i], argsA[i]) {
				return false
			}
		default:
			if !gs.IsSubtype(argsA[i], argsB[i]) || !gs.IsSubtype(argsB[i], argsA[i]) {
				return false
			}
		}
	}
	return true
}

func (gs *GlobalState) unfixedTypeMembers(sym SymbolRef) []SymbolRef {
	data := gs.Symbol(sym)
	out := make([]SymbolRef, 0, len(data.TypeParams))
	for _, tm := range data.TypeParams {
		if !gs.Symbol(tm).IsFixed() {
			out = append(out, tm)
		}
	}
	return out
}

// promoteTuple is the array view of a tuple: T::Array of the element join.
func (gs *GlobalState) promoteTuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return gs.AppliedTypeOf(SymTArray, []TypeID{gs.BottomType()})
	}
	join := elems[0]
	for _, e := range elems[1:] {
		join = gs.Lub(join, e)
	}
	return gs.AppliedTypeOf(SymTArray, []TypeID{join})
}

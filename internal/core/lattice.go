package core

import "sort"

// orComponents flattens a (possibly nested) union into its leaves.
func (gs *GlobalState) orComponents(id TypeID, out *[]TypeID) {
	d := gs.TypeOf(id)
	if d.Kind == TypeOr {
		gs.orComponents(TypeID(d.A), out)
		gs.orComponents(TypeID(d.B), out)
		return
	}
	*out = append(*out, id)
}

func (gs *GlobalState) andComponents(id TypeID, out *[]TypeID) {
	d := gs.TypeOf(id)
	if d.Kind == TypeAnd {
		gs.andComponents(TypeID(d.A), out)
		gs.andComponents(TypeID(d.B), out)
		return
	}
	*out = append(*out, id)
}

// AnyType is the union constructor: flattening, deduplication, identity
// against Bottom, absorption by Top and Untyped, components canonically
// ordered. Commutative by construction.
func (gs *GlobalState) AnyType(a, b TypeID) TypeID {
	if gs.IsUntyped(a) {
		return a
	}
	if gs.IsUntyped(b) {
		return b
	}
	var comps []TypeID
	gs.orComponents(a, &comps)
	gs.orComponents(b, &comps)
	return gs.buildUnion(comps)
}

func (gs *GlobalState) buildUnion(comps []TypeID) TypeID {
	uniq := make([]TypeID, 0, len(comps))
	seen := make(map[TypeID]bool, len(comps))
	for _, c := range comps {
		d := gs.TypeOf(c)
		switch d.Kind {
		case TypeBottom:
			continue
		case TypeTop:
			return gs.TopType()
		case TypeUntyped:
			return c
		}
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	if len(uniq) == 0 {
		return gs.BottomType()
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	result := uniq[0]
	for _, c := range uniq[1:] {
		result = gs.types.intern(TypeDesc{Kind: TypeOr, A: uint32(result), B: uint32(c)})
	}
	return result
}

// AllType is the intersection constructor, dual to AnyType.
func (gs *GlobalState) AllType(a, b TypeID) TypeID {
	if gs.IsUntyped(a) {
		return a
	}
	if gs.IsUntyped(b) {
		return b
	}
	var comps []TypeID
	gs.andComponents(a, &comps)
	gs.andComponents(b, &comps)

	uniq := make([]TypeID, 0, len(comps))
	seen := make(map[TypeID]bool, len(comps))
	for _, c := range comps {
		d := gs.TypeOf(c)
		switch d.Kind {
		case TypeTop:
			continue
		case TypeBottom:
			return gs.BottomType()
		case TypeUntyped:
			return c
		}
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	if len(uniq) == 0 {
		return gs.TopType()
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	result := uniq[0]
	for _, c := range uniq[1:] {
		result = gs.types.intern(TypeDesc{Kind: TypeAnd, A: uint32(result), B: uint32(c)})
	}
	return result
}

// Lub is the least upper bound: collapse when one side already covers the
// other, otherwise the canonical union.
func (gs *GlobalState) Lub(a, b TypeID) TypeID {
	if gs.IsSubtype(a, b) {
		return b
	}
	if gs.IsSubtype(b, a) {
		return a
	}
	return gs.AnyType(a, b)
}

// Glb is the greatest lower bound, dual to Lub.
func (gs *GlobalState) Glb(a, b TypeID) TypeID {
	if gs.IsSubtype(a, b) {
		return a
	}
	if gs.IsSubtype(b, a) {
		return b
	}
	return gs.AllType(a, b)
}

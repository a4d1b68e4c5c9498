package core

import "sigil/internal/names"

// Substitute replaces LambdaParam and TypeVar occurrences whose symbol
// names appear in the map, rebuilding composite terms as needed. Terms
// without occurrences are returned unchanged (same handle).
func (gs *GlobalState) Substitute(t TypeID, subst map[names.Ref]TypeID) TypeID {
	if len(subst) == 0 {
		return t
	}
	d := gs.TypeOf(t)
	switch d.Kind {
	case TypeLambdaParam, TypeVar:
		name := gs.Symbol(d.Sym).Name
		if replacement, ok := subst[name]; ok {
			return replacement
		}
		return t

	case TypeOr:
		left := gs.Substitute(TypeID(d.A), subst)
		right := gs.Substitute(TypeID(d.B), subst)
		if left == TypeID(d.A) && right == TypeID(d.B) {
			return t
		}
		return gs.AnyType(left, right)

	case TypeAnd:
		left := gs.Substitute(TypeID(d.A), subst)
		right := gs.Substitute(TypeID(d.B), subst)
		if left == TypeID(d.A) && right == TypeID(d.B) {
			return t
		}
		return gs.AllType(left, right)

	case TypeApplied:
		args := gs.TypeArgs(t)
		changed := false
		out := make([]TypeID, len(args))
		for i, a := range args {
			out[i] = gs.Substitute(a, subst)
			changed = changed || out[i] != a
		}
		if !changed {
			return t
		}
		return gs.AppliedTypeOf(d.Sym, out)

	case TypeTuple:
		elems := gs.TupleElems(t)
		changed := false
		out := make([]TypeID, len(elems))
		for i, e := range elems {
			out[i] = gs.Substitute(e, subst)
			changed = changed || out[i] != e
		}
		if !changed {
			return t
		}
		return gs.TupleTypeOf(out)

	case TypeShape:
		keys, values := gs.ShapeKeysValues(t)
		changed := false
		out := make([]TypeID, len(values))
		for i, v := range values {
			out[i] = gs.Substitute(v, subst)
			changed = changed || out[i] != v
		}
		if !changed {
			return t
		}
		return gs.ShapeTypeOf(keys, out)

	case TypeMeta:
		wrapped := gs.Substitute(TypeID(d.A), subst)
		if wrapped == TypeID(d.A) {
			return t
		}
		return gs.MetaTypeOf(wrapped)
	}
	return t
}

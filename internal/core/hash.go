package core

import (
	"sigil/internal/names"
)

// Content hashing for incremental re-check. FNV-1a over rendered names and
// canonical structure, so equal definitions hash equally across separately
// built states.
const (
	fnvOffset uint32 = 2166136261
	fnvPrime  uint32 = 16777619
)

type hasher uint32

func newHasher() hasher { return hasher(fnvOffset) }

func (h hasher) u8(v uint8) hasher {
	return (h ^ hasher(v)) * hasher(fnvPrime)
}

func (h hasher) u32(v uint32) hasher {
	h = h.u8(uint8(v))
	h = h.u8(uint8(v >> 8))
	h = h.u8(uint8(v >> 16))
	return h.u8(uint8(v >> 24))
}

func (h hasher) str(s string) hasher {
	for i := 0; i < len(s); i++ {
		h = h.u8(s[i])
	}
	return h.u8(0xff) // terminator, so "ab"+"c" != "a"+"bc"
}

// ignoreInHashing excludes bookkeeping members that would otherwise make
// hashes unstable or cyclic: singleton caches, attachment back-links, and
// DSL-synthesized helpers.
func (gs *GlobalState) ignoreInHashing(name names.Ref, sym SymbolRef) bool {
	if name == names.AttachedClass {
		return true
	}
	if gs.Names.Kind(name) == names.Unique {
		return true
	}
	return gs.Symbol(sym).IsDSLSynthesized()
}

// SymbolHash is the content hash of a symbol: name, flags, arguments,
// result type, superclass, mixins, and stable-ordered member hashes.
func (gs *GlobalState) SymbolHash(ref SymbolRef) uint32 {
	return uint32(gs.symbolHash(ref, 2))
}

func (gs *GlobalState) symbolHash(ref SymbolRef, depth int) hasher {
	h := newHasher()
	if !ref.Exists() {
		return h
	}
	data := gs.Symbol(ref)
	h = h.str(gs.Names.Value(data.Name))
	h = h.u32(uint32(data.Flags))
	for i := range data.Arguments {
		arg := &data.Arguments[i]
		h = h.str(gs.Names.Value(arg.Name))
		h = h.u8(uint8(arg.Kind))
		h = h.u32(uint32(gs.typeHash(arg.Type)))
	}
	h = h.u32(uint32(gs.typeHash(data.ResultType)))
	if data.IsClass() {
		if super := data.SuperOrRebind; super.Exists() {
			h = h.str(gs.ShowSymbol(super))
		}
		for _, m := range data.Mixins {
			h = h.str(gs.ShowSymbol(m))
		}
	}
	if depth > 0 {
		for _, entry := range gs.MembersStableOrderSlow(ref) {
			if gs.ignoreInHashing(entry.Name, entry.Sym) {
				continue
			}
			h = h.u32(uint32(gs.symbolHash(entry.Sym, depth-1)))
		}
	}
	return h
}

// MethodShapeHash hashes only what callers can observe without types:
// name, flag bits, and argument arity/kinds.
func (gs *GlobalState) MethodShapeHash(ref SymbolRef) uint32 {
	data := gs.Symbol(ref)
	if !data.IsMethod() {
		panic("core: method shape hash of a non-method symbol")
	}
	h := newHasher()
	h = h.str(gs.Names.Value(data.Name))
	h = h.u32(uint32(data.Flags))
	for i := range data.Arguments {
		h = h.u8(uint8(data.Arguments[i].Kind))
	}
	return uint32(h)
}

// typeHash hashes a type term by structure, stable across states.
func (gs *GlobalState) typeHash(id TypeID) hasher {
	h := newHasher()
	if !id.Exists() {
		return h
	}
	d := gs.TypeOf(id)
	h = h.u8(uint8(d.Kind))
	switch d.Kind {
	case TypeClass, TypeLambdaParam:
		h = h.str(gs.ShowSymbol(d.Sym))
	case TypeApplied:
		h = h.str(gs.ShowSymbol(d.Sym))
		for _, a := range gs.TypeArgs(id) {
			h = h.u32(uint32(gs.typeHash(a)))
		}
	case TypeTuple:
		for _, e := range gs.TupleElems(id) {
			h = h.u32(uint32(gs.typeHash(e)))
		}
	case TypeShape:
		keys, values := gs.ShapeKeysValues(id)
		for i := range keys {
			h = h.u32(uint32(gs.typeHash(keys[i])))
			h = h.u32(uint32(gs.typeHash(values[i])))
		}
	case TypeLiteral:
		h = h.str(gs.ShowSymbol(d.Sym))
		h = h.u32(d.A)
		h = h.u32(d.B)
	case TypeOr, TypeAnd:
		h = h.u32(uint32(gs.typeHash(TypeID(d.A))))
		h = h.u32(uint32(gs.typeHash(TypeID(d.B))))
	case TypeMeta:
		h = h.u32(uint32(gs.typeHash(TypeID(d.A))))
	case TypeUnresolved:
		// The stub path is retained verbatim exactly so this hash stays
		// stable while the constant is missing.
		scope, path := gs.UnresolvedPath(id)
		h = h.str(gs.ShowSymbol(scope))
		for _, n := range path {
			h = h.str(gs.Names.Value(n))
		}
	case TypeVar:
		h = h.str(gs.Names.Value(gs.Symbol(d.Sym).Name))
	}
	return h
}

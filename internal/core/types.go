package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"fortio.org/safecast"

	"sigil/internal/names"
)

// TypeID is a small handle for a hash-consed type term. Terms are canonical
// after construction, so structural equality is handle equality (type
// variables being the one deliberately non-interned exception).
type TypeID uint32

// NoType marks the absence of a type.
const NoType TypeID = 0

// Exists reports whether the handle points at an allocated type.
func (t TypeID) Exists() bool { return t != NoType }

// TypeKind enumerates the type term variants.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeClass
	TypeApplied
	TypeTuple
	TypeShape
	TypeLiteral
	TypeOr
	TypeAnd
	TypeVar
	TypeLambdaParam
	TypeSelf
	TypeMeta
	TypeUnresolved
	TypeUntyped
	TypeBottom
	TypeTop
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeApplied:
		return "applied"
	case TypeTuple:
		return "tuple"
	case TypeShape:
		return "shape"
	case TypeLiteral:
		return "literal"
	case TypeOr:
		return "or"
	case TypeAnd:
		return "and"
	case TypeVar:
		return "typevar"
	case TypeLambdaParam:
		return "lambda-param"
	case TypeSelf:
		return "self"
	case TypeMeta:
		return "meta"
	case TypeUnresolved:
		return "unresolved"
	case TypeUntyped:
		return "untyped"
	case TypeBottom:
		return "bottom"
	case TypeTop:
		return "top"
	default:
		return fmt.Sprintf("TypeKind(%d)", k)
	}
}

// TypeDesc is the compact descriptor for one type term. The payload fields
// are overloaded per kind:
//
//	Class         Sym = class
//	Applied       Sym = class, A = list slot (type arguments)
//	Tuple         A = list slot (elements)
//	Shape         A = shape slot (keys + values)
//	Literal       Sym = underlying class, A/B = packed 64-bit value or name
//	Or, And       A = left TypeID, B = right TypeID
//	Var           Sym = owning symbol (Todo until resolved), A = serial
//	LambdaParam   Sym = type member
//	Meta          A = wrapped TypeID
//	Unresolved    Sym = stub scope, A = path slot
//	Untyped       Sym = blame symbol (NoSymbol when untracked)
type TypeDesc struct {
	Kind TypeKind
	Sym  SymbolRef
	A    uint32
	B    uint32
}

type shapeInfo struct {
	keys   []TypeID // literal types
	values []TypeID
}

// typeStore hash-conses type descriptors. Slot 0 of every side table is a
// reserved sentinel, mirroring the symbol arena.
type typeStore struct {
	types      []TypeDesc
	index      map[TypeDesc]TypeID
	listIndex  map[string]TypeID
	lists      [][]TypeID
	shapes     []shapeInfo
	paths      [][]names.Ref
	varCounter uint32
}

func newTypeStore() *typeStore {
	return &typeStore{
		types:     make([]TypeDesc, 1, 128),
		index:     make(map[TypeDesc]TypeID, 128),
		listIndex: make(map[string]TypeID),
		lists:     make([][]TypeID, 1),
		shapes:    make([]shapeInfo, 1),
		paths:     make([][]names.Ref, 1),
	}
}

func (ts *typeStore) intern(d TypeDesc) TypeID {
	if id, ok := ts.index[d]; ok {
		return id
	}
	return ts.internRaw(d)
}

func (ts *typeStore) internRaw(d TypeDesc) TypeID {
	value, err := safecast.Conv[uint32](len(ts.types))
	if err != nil {
		panic(fmt.Errorf("type store overflow: %w", err))
	}
	id := TypeID(value)
	ts.types = append(ts.types, d)
	ts.index[d] = id
	return id
}

func (ts *typeStore) appendList(ids []TypeID) uint32 {
	cp := make([]TypeID, len(ids))
	copy(cp, ids)
	ts.lists = append(ts.lists, cp)
	slot, err := safecast.Conv[uint32](len(ts.lists) - 1)
	if err != nil {
		panic(fmt.Errorf("type list overflow: %w", err))
	}
	return slot
}

// listKey builds the content key for list-backed kinds, where the descriptor
// alone does not capture identity.
func listKey(kind TypeKind, sym SymbolRef, lists ...[]TypeID) string {
	size := 5
	for _, l := range lists {
		size += 4 + len(l)*4
	}
	buf := make([]byte, 0, size)
	buf = append(buf, byte(kind))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sym))
	for _, l := range lists {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(l))) // #nosec G115
		for _, id := range l {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
		}
	}
	return string(buf)
}

// TypeOf returns the descriptor for a type handle.
func (gs *GlobalState) TypeOf(id TypeID) TypeDesc {
	if !id.Exists() || int(id) >= len(gs.types.types) {
		panic("core: invalid TypeID")
	}
	return gs.types.types[id]
}

// TypeKindOf is a shorthand for TypeOf(id).Kind.
func (gs *GlobalState) TypeKindOf(id TypeID) TypeKind {
	return gs.TypeOf(id).Kind
}

// ClassTypeOf builds the nominal type of a class symbol.
func (gs *GlobalState) ClassTypeOf(sym SymbolRef) TypeID {
	if !sym.Exists() {
		panic("core: class type of NoSymbol")
	}
	return gs.types.intern(TypeDesc{Kind: TypeClass, Sym: sym})
}

// AppliedTypeOf builds a parameterized class type.
func (gs *GlobalState) AppliedTypeOf(sym SymbolRef, targs []TypeID) TypeID {
	if len(targs) == 0 {
		return gs.ClassTypeOf(sym)
	}
	key := listKey(TypeApplied, sym, targs)
	if id, ok := gs.types.listIndex[key]; ok {
		return id
	}
	slot := gs.types.appendList(targs)
	id := gs.types.internRaw(TypeDesc{Kind: TypeApplied, Sym: sym, A: slot})
	gs.types.listIndex[key] = id
	return id
}

// TupleTypeOf builds a fixed-arity tuple literal type.
func (gs *GlobalState) TupleTypeOf(elems []TypeID) TypeID {
	key := listKey(TypeTuple, NoSymbol, elems)
	if id, ok := gs.types.listIndex[key]; ok {
		return id
	}
	slot := gs.types.appendList(elems)
	id := gs.types.internRaw(TypeDesc{Kind: TypeTuple, A: slot})
	gs.types.listIndex[key] = id
	return id
}

// ShapeTypeOf builds a shape (keyword-literal hash) type. Keys must be
// literal types.
func (gs *GlobalState) ShapeTypeOf(keys, values []TypeID) TypeID {
	if len(keys) != len(values) {
		panic("core: shape keys/values length mismatch")
	}
	key := listKey(TypeShape, NoSymbol, keys, values)
	if id, ok := gs.types.listIndex[key]; ok {
		return id
	}
	kc := make([]TypeID, len(keys))
	copy(kc, keys)
	vc := make([]TypeID, len(values))
	copy(vc, values)
	gs.types.shapes = append(gs.types.shapes, shapeInfo{keys: kc, values: vc})
	slot, err := safecast.Conv[uint32](len(gs.types.shapes) - 1)
	if err != nil {
		panic(fmt.Errorf("shape store overflow: %w", err))
	}
	id := gs.types.internRaw(TypeDesc{Kind: TypeShape, A: slot})
	gs.types.listIndex[key] = id
	return id
}

// IntLiteralType builds the literal type of an integer value.
func (gs *GlobalState) IntLiteralType(v int64) TypeID {
	bits := uint64(v) // #nosec G115 -- two's complement round-trip
	return gs.types.intern(TypeDesc{
		Kind: TypeLiteral, Sym: SymInteger,
		A: uint32(bits >> 32), B: uint32(bits), // #nosec G115
	})
}

// FloatLiteralType builds the literal type of a float value.
func (gs *GlobalState) FloatLiteralType(v float64) TypeID {
	bits := math.Float64bits(v)
	return gs.types.intern(TypeDesc{
		Kind: TypeLiteral, Sym: SymFloat,
		A: uint32(bits >> 32), B: uint32(bits), // #nosec G115
	})
}

// SymbolLiteralType builds the literal type of a symbol literal.
func (gs *GlobalState) SymbolLiteralType(name names.Ref) TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeLiteral, Sym: SymSymbol, A: uint32(name)})
}

// StringLiteralType builds the literal type of a string literal.
func (gs *GlobalState) StringLiteralType(name names.Ref) TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeLiteral, Sym: SymString, A: uint32(name)})
}

// TrueLiteralType and FalseLiteralType are the singleton boolean literals.
func (gs *GlobalState) TrueLiteralType() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeLiteral, Sym: SymTrueClass})
}

func (gs *GlobalState) FalseLiteralType() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeLiteral, Sym: SymFalseClass})
}

// NilType is the nominal NilClass type; nil has no separate literal term.
func (gs *GlobalState) NilType() TypeID {
	return gs.ClassTypeOf(SymNilClass)
}

// NewTypeVar mints a fresh, deliberately non-interned type variable owned by
// sym (SymTodo until the resolver replaces it).
func (gs *GlobalState) NewTypeVar(sym SymbolRef) TypeID {
	gs.types.varCounter++
	return gs.types.internRaw(TypeDesc{Kind: TypeVar, Sym: sym, A: gs.types.varCounter})
}

// LambdaParamType references an in-scope type member or template.
func (gs *GlobalState) LambdaParamType(sym SymbolRef) TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeLambdaParam, Sym: sym})
}

// SelfTypeType is the self-type placeholder, resolved at call sites.
func (gs *GlobalState) SelfTypeType() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeSelf})
}

// MetaTypeOf wraps a type as a value-level term ("a value whose value is a
// type").
func (gs *GlobalState) MetaTypeOf(wrapped TypeID) TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeMeta, A: uint32(wrapped)})
}

// UnresolvedClassTypeOf retains a stub constant verbatim, so incremental
// re-check hashes stay stable across still-missing definitions.
func (gs *GlobalState) UnresolvedClassTypeOf(scope SymbolRef, path []names.Ref) TypeID {
	ids := make([]TypeID, len(path))
	for i, n := range path {
		ids[i] = TypeID(n)
	}
	key := listKey(TypeUnresolved, scope, ids)
	if id, ok := gs.types.listIndex[key]; ok {
		return id
	}
	cp := make([]names.Ref, len(path))
	copy(cp, path)
	gs.types.paths = append(gs.types.paths, cp)
	slot, err := safecast.Conv[uint32](len(gs.types.paths) - 1)
	if err != nil {
		panic(fmt.Errorf("path store overflow: %w", err))
	}
	id := gs.types.internRaw(TypeDesc{Kind: TypeUnresolved, Sym: scope, A: slot})
	gs.types.listIndex[key] = id
	return id
}

// UntypedType mints untyped blamed on the given symbol.
func (gs *GlobalState) UntypedType(blame SymbolRef) TypeID {
	if !gs.config.TrackBlame {
		blame = NoSymbol
	}
	return gs.types.intern(TypeDesc{Kind: TypeUntyped, Sym: blame})
}

// UntypedUntracked is untyped with no blame attached.
func (gs *GlobalState) UntypedUntracked() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeUntyped})
}

// BottomType is the empty type (noreturn).
func (gs *GlobalState) BottomType() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeBottom})
}

// TopType is the top of the lattice.
func (gs *GlobalState) TopType() TypeID {
	return gs.types.intern(TypeDesc{Kind: TypeTop})
}

// VoidType is the class type methods declared .void return.
func (gs *GlobalState) VoidType() TypeID {
	return gs.ClassTypeOf(SymVoid)
}

// TypeArgs returns the argument list of an applied type.
func (gs *GlobalState) TypeArgs(id TypeID) []TypeID {
	d := gs.TypeOf(id)
	if d.Kind != TypeApplied {
		panic("core: TypeArgs on non-applied type")
	}
	return gs.types.lists[d.A]
}

// TupleElems returns the element list of a tuple type.
func (gs *GlobalState) TupleElems(id TypeID) []TypeID {
	d := gs.TypeOf(id)
	if d.Kind != TypeTuple {
		panic("core: TupleElems on non-tuple type")
	}
	return gs.types.lists[d.A]
}

// ShapeKeysValues returns the key and value lists of a shape type.
func (gs *GlobalState) ShapeKeysValues(id TypeID) (keys, values []TypeID) {
	d := gs.TypeOf(id)
	if d.Kind != TypeShape {
		panic("core: ShapeKeysValues on non-shape type")
	}
	info := gs.types.shapes[d.A]
	return info.keys, info.values
}

// UnresolvedPath returns the retained constant path of an unresolved stub.
func (gs *GlobalState) UnresolvedPath(id TypeID) (scope SymbolRef, path []names.Ref) {
	d := gs.TypeOf(id)
	if d.Kind != TypeUnresolved {
		panic("core: UnresolvedPath on non-stub type")
	}
	return d.Sym, gs.types.paths[d.A]
}

// LiteralValueInt decodes an integer literal type.
func (gs *GlobalState) LiteralValueInt(id TypeID) int64 {
	d := gs.TypeOf(id)
	if d.Kind != TypeLiteral || d.Sym != SymInteger {
		panic("core: not an integer literal type")
	}
	return int64(uint64(d.A)<<32 | uint64(d.B)) // #nosec G115
}

// LiteralValueFloat decodes a float literal type.
func (gs *GlobalState) LiteralValueFloat(id TypeID) float64 {
	d := gs.TypeOf(id)
	if d.Kind != TypeLiteral || d.Sym != SymFloat {
		panic("core: not a float literal type")
	}
	return math.Float64frombits(uint64(d.A)<<32 | uint64(d.B))
}

// LiteralValueName decodes a symbol or string literal type.
func (gs *GlobalState) LiteralValueName(id TypeID) names.Ref {
	d := gs.TypeOf(id)
	if d.Kind != TypeLiteral || (d.Sym != SymSymbol && d.Sym != SymString) {
		panic("core: not a name-backed literal type")
	}
	return names.Ref(d.A)
}

// IsUntyped reports whether the term is untyped (any blame).
func (gs *GlobalState) IsUntyped(id TypeID) bool {
	return gs.TypeOf(id).Kind == TypeUntyped
}

// SanityCheckType validates structural invariants of a term. Violations are
// checker bugs and panic.
func (gs *GlobalState) SanityCheckType(id TypeID) {
	d := gs.TypeOf(id)
	switch d.Kind {
	case TypeInvalid:
		panic("core: invalid type escaped construction")
	case TypeOr, TypeAnd:
		left, right := TypeID(d.A), TypeID(d.B)
		ld, rd := gs.TypeOf(left), gs.TypeOf(right)
		// Canonical unions fold to the left; a same-kind right child means
		// a constructor was bypassed.
		if rd.Kind == d.Kind {
			panic("core: nested " + d.Kind.String() + " on the right")
		}
		if ld.Kind == TypeUntyped || rd.Kind == TypeUntyped {
			panic("core: untyped inside " + d.Kind.String())
		}
		gs.SanityCheckType(left)
		gs.SanityCheckType(right)
	case TypeApplied:
		for _, t := range gs.TypeArgs(id) {
			gs.SanityCheckType(t)
		}
	case TypeTuple:
		for _, t := range gs.TupleElems(id) {
			gs.SanityCheckType(t)
		}
	case TypeShape:
		keys, values := gs.ShapeKeysValues(id)
		for _, k := range keys {
			if gs.TypeOf(k).Kind != TypeLiteral {
				panic("core: non-literal shape key")
			}
		}
		for _, v := range values {
			gs.SanityCheckType(v)
		}
	case TypeMeta:
		gs.SanityCheckType(TypeID(d.A))
	}
}

// RebindTypeVar re-points a type variable at its resolved owner symbol,
// keeping the handle stable. Only TypeVar terms may be rebound.
func (gs *GlobalState) RebindTypeVar(id TypeID, sym SymbolRef) {
	d := gs.TypeOf(id)
	if d.Kind != TypeVar {
		panic("core: rebinding a non-typevar term")
	}
	delete(gs.types.index, d)
	d.Sym = sym
	gs.types.types[id] = d
	gs.types.index[d] = id
}

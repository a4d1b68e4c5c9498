package core

import (
	"sigil/internal/config"
	"sigil/internal/diag"
	"sigil/internal/names"
	"sigil/internal/source"
)

// The serializer contract: a pure-data image of one GlobalState. The
// structures below are what the msgpack snapshot in internal/driver
// encodes; they carry no handles into live state.

// SnapshotArg mirrors ArgInfo.
type SnapshotArg struct {
	Name       uint32
	Loc        source.Span
	Kind       uint8
	HasDefault bool
	Type       uint32
	Rebind     uint32
}

// SnapshotMember is one stable-ordered member entry.
type SnapshotMember struct {
	Name uint32
	Sym  uint32
}

// SnapshotSymbol mirrors Symbol.
type SnapshotSymbol struct {
	Owner         uint32
	Name          uint32
	Flags         uint32
	SuperOrRebind uint32
	Mixins        []uint32
	TypeParams    []uint32
	Members       []SnapshotMember
	Arguments     []SnapshotArg
	ResultType    uint32
	Locs          []source.Span
	UniqueCounter uint32
	HasIntrinsic  bool
}

// SnapshotType mirrors TypeDesc.
type SnapshotType struct {
	Kind uint8
	Sym  uint32
	A    uint32
	B    uint32
}

// SnapshotShape mirrors one shape side-table slot.
type SnapshotShape struct {
	Keys   []uint32
	Values []uint32
}

// Snapshot is the full serialized image.
type Snapshot struct {
	Names      []names.ExportedName
	Symbols    []SnapshotSymbol
	Types      []SnapshotType
	Lists      [][]uint32
	Shapes     []SnapshotShape
	Paths      [][]uint32
	VarCounter uint32
}

// ExportSnapshot dumps the state into its serialized image. Member maps are
// emitted in stable order so equal states produce equal bytes.
func (gs *GlobalState) ExportSnapshot() *Snapshot {
	snap := &Snapshot{
		Names:      gs.Names.Export(),
		Symbols:    make([]SnapshotSymbol, len(gs.symbols)),
		Types:      make([]SnapshotType, len(gs.types.types)),
		Lists:      make([][]uint32, len(gs.types.lists)),
		Shapes:     make([]SnapshotShape, len(gs.types.shapes)),
		Paths:      make([][]uint32, len(gs.types.paths)),
		VarCounter: gs.types.varCounter,
	}
	for i := range gs.symbols {
		src := &gs.symbols[i]
		dst := &snap.Symbols[i]
		dst.Owner = uint32(src.Owner)
		dst.Name = uint32(src.Name)
		dst.Flags = uint32(src.Flags)
		dst.SuperOrRebind = uint32(src.SuperOrRebind)
		dst.Mixins = refsToU32(src.Mixins)
		dst.TypeParams = refsToU32(src.TypeParams)
		if i > 0 {
			for _, entry := range gs.MembersStableOrderSlow(SymbolRef(i)) { // #nosec G115
				dst.Members = append(dst.Members, SnapshotMember{Name: uint32(entry.Name), Sym: uint32(entry.Sym)})
			}
		}
		for _, arg := range src.Arguments {
			dst.Arguments = append(dst.Arguments, SnapshotArg{
				Name:       uint32(arg.Name),
				Loc:        arg.Loc,
				Kind:       uint8(arg.Kind),
				HasDefault: arg.HasDefault,
				Type:       uint32(arg.Type),
				Rebind:     uint32(arg.Rebind),
			})
		}
		dst.ResultType = uint32(src.ResultType)
		dst.Locs = append(dst.Locs, src.Locs...)
		dst.UniqueCounter = src.UniqueCounter
		dst.HasIntrinsic = src.Intrinsic != nil
	}
	for i, d := range gs.types.types {
		snap.Types[i] = SnapshotType{Kind: uint8(d.Kind), Sym: uint32(d.Sym), A: d.A, B: d.B}
	}
	for i, l := range gs.types.lists {
		snap.Lists[i] = typeIDsToU32(l)
	}
	for i, sh := range gs.types.shapes {
		snap.Shapes[i] = SnapshotShape{Keys: typeIDsToU32(sh.keys), Values: typeIDsToU32(sh.values)}
	}
	for i, p := range gs.types.paths {
		snap.Paths[i] = make([]uint32, len(p))
		for j, n := range p {
			snap.Paths[i][j] = uint32(n)
		}
	}
	return snap
}

// RestoreSnapshot rebuilds a GlobalState from its serialized image.
// Intrinsics are re-bound from the static table; the snapshot only records
// that one was present.
func RestoreSnapshot(snap *Snapshot, cfg config.Config, reporter diag.Reporter) *GlobalState {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	gs := &GlobalState{
		Names:    names.TableFromExport(snap.Names),
		symbols:  make([]Symbol, len(snap.Symbols)),
		types:    newTypeStore(),
		reporter: reporter,
		config:   cfg,
	}
	for i := range snap.Symbols {
		src := &snap.Symbols[i]
		dst := &gs.symbols[i]
		dst.Owner = SymbolRef(src.Owner)
		dst.Name = names.Ref(src.Name)
		dst.Flags = Flags(src.Flags)
		dst.SuperOrRebind = SymbolRef(src.SuperOrRebind)
		dst.Mixins = u32ToRefs(src.Mixins)
		dst.TypeParams = u32ToRefs(src.TypeParams)
		if len(src.Members) > 0 {
			dst.Members = make(map[names.Ref]SymbolRef, len(src.Members))
			for _, m := range src.Members {
				dst.Members[names.Ref(m.Name)] = SymbolRef(m.Sym)
			}
		}
		for _, arg := range src.Arguments {
			dst.Arguments = append(dst.Arguments, ArgInfo{
				Name:       names.Ref(arg.Name),
				Loc:        arg.Loc,
				Kind:       ArgKind(arg.Kind),
				HasDefault: arg.HasDefault,
				Type:       TypeID(arg.Type),
				Rebind:     SymbolRef(arg.Rebind),
			})
		}
		dst.ResultType = TypeID(src.ResultType)
		dst.Locs = append(dst.Locs, src.Locs...)
		dst.UniqueCounter = src.UniqueCounter
		if src.HasIntrinsic {
			dst.Intrinsic = genericInstantiate
		}
	}
	gs.types.types = make([]TypeDesc, len(snap.Types))
	for i, d := range snap.Types {
		desc := TypeDesc{Kind: TypeKind(d.Kind), Sym: SymbolRef(d.Sym), A: d.A, B: d.B}
		gs.types.types[i] = desc
		if i > 0 {
			gs.types.index[desc] = TypeID(i) // #nosec G115
		}
	}
	gs.types.lists = make([][]TypeID, len(snap.Lists))
	for i, l := range snap.Lists {
		gs.types.lists[i] = u32ToTypeIDs(l)
	}
	gs.types.shapes = make([]shapeInfo, len(snap.Shapes))
	for i, sh := range snap.Shapes {
		gs.types.shapes[i] = shapeInfo{keys: u32ToTypeIDs(sh.Keys), values: u32ToTypeIDs(sh.Values)}
	}
	gs.types.paths = make([][]names.Ref, len(snap.Paths))
	for i, p := range snap.Paths {
		refs := make([]names.Ref, len(p))
		for j, n := range p {
			refs[j] = names.Ref(n)
		}
		gs.types.paths[i] = refs
	}
	gs.types.varCounter = snap.VarCounter
	gs.rebuildListIndex()
	return gs
}

// rebuildListIndex recomputes the content index of list-backed types after
// a restore.
func (gs *GlobalState) rebuildListIndex() {
	for i := 1; i < len(gs.types.types); i++ {
		id := TypeID(i) // #nosec G115
		d := gs.types.types[i]
		switch d.Kind {
		case TypeApplied:
			gs.types.listIndex[listKey(TypeApplied, d.Sym, gs.types.lists[d.A])] = id
		case TypeTuple:
			gs.types.listIndex[listKey(TypeTuple, NoSymbol, gs.types.lists[d.A])] = id
		case TypeShape:
			sh := gs.types.shapes[d.A]
			gs.types.listIndex[listKey(TypeShape, NoSymbol, sh.keys, sh.values)] = id
		case TypeUnresolved:
			path := gs.types.paths[d.A]
			ids := make([]TypeID, len(path))
			for j, n := range path {
				ids[j] = TypeID(n)
			}
			gs.types.listIndex[listKey(TypeUnresolved, d.Sym, ids)] = id
		}
	}
}

func refsToU32(refs []SymbolRef) []uint32 {
	out := make([]uint32, len(refs))
	for i, r := range refs {
		out[i] = uint32(r)
	}
	return out
}

func u32ToRefs(vs []uint32) []SymbolRef {
	if len(vs) == 0 {
		return nil
	}
	out := make([]SymbolRef, len(vs))
	for i, v := range vs {
		out[i] = SymbolRef(v)
	}
	return out
}

func typeIDsToU32(ids []TypeID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

func u32ToTypeIDs(vs []uint32) []TypeID {
	if len(vs) == 0 {
		return nil
	}
	out := make([]TypeID, len(vs))
	for i, v := range vs {
		out[i] = TypeID(v)
	}
	return out
}

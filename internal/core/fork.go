package core

import (
	"sigil/internal/names"
)

// Fork deep-copies the state once per worker. Each copy remembers the fork
// baseline and its shard index; Merge later replays everything a shard
// created past the baseline, in shard order, so symbol creation stays
// deterministic.
func (gs *GlobalState) Fork(n int) []*GlobalState {
	shards := make([]*GlobalState, n)
	for i := 0; i < n; i++ {
		cp := gs.DeepCopy()
		cp.forkBase = forkBase{
			symbols: len(gs.symbols),
			nameLen: gs.Names.Len(),
			shard:   i,
		}
		shards[i] = cp
	}
	return shards
}

// Merge replays the shards' deltas against the master, in order.
func (gs *GlobalState) Merge(shards []*GlobalState) {
	for _, shard := range shards {
		gs.mergeShard(shard)
	}
}

type shardTranslator struct {
	master *GlobalState
	shard  *GlobalState
	base   forkBase
	syms   map[SymbolRef]SymbolRef
	types  map[TypeID]TypeID
}

func (gs *GlobalState) mergeShard(shard *GlobalState) {
	tr := &shardTranslator{
		master: gs,
		shard:  shard,
		base:   shard.forkBase,
		syms:   make(map[SymbolRef]SymbolRef),
		types:  make(map[TypeID]TypeID),
	}

	// New symbols, in creation order. Owners always precede children, so a
	// single pass resolves every owner.
	for i := tr.base.symbols; i < len(shard.symbols); i++ {
		tr.importSymbol(SymbolRef(i)) // #nosec G115
	}

	// Pre-existing symbols may have gained members (reopened classes,
	// lazily created singletons) or types during shard work.
	for i := 1; i < tr.base.symbols; i++ {
		ref := SymbolRef(i) // #nosec G115
		src := &shard.symbols[i]
		dst := gs.Symbol(ref)
		for name, child := range src.Members {
			mapped := tr.name(name)
			if _, ok := dst.Members[mapped]; ok {
				continue
			}
			if dst.Members == nil {
				dst.Members = make(map[names.Ref]SymbolRef)
			}
			dst.Members[mapped] = tr.sym(child)
		}
		if src.ResultType.Exists() && !dst.ResultType.Exists() {
			dst.ResultType = tr.typ(src.ResultType)
		}
	}
}

// name maps a shard name into the master, re-interning anything minted
// after the fork.
func (tr *shardTranslator) name(r names.Ref) names.Ref {
	if !r.IsValid() || int(r) < tr.base.nameLen {
		return r
	}
	if uniq, original, num, ok := tr.shard.Names.UniqueInfo(r); ok {
		return tr.master.Names.Unique(uniq, tr.name(original), num)
	}
	return tr.master.Names.Intern(tr.shard.Names.Value(r))
}

// sym maps a shard symbol into the master.
func (tr *shardTranslator) sym(r SymbolRef) SymbolRef {
	if !r.Exists() || int(r) < tr.base.symbols {
		return r
	}
	if mapped, ok := tr.syms[r]; ok {
		return mapped
	}
	// Forward reference (a superclass assigned before its own import);
	// import it now.
	return tr.importSymbol(r)
}

func (tr *shardTranslator) importSymbol(r SymbolRef) SymbolRef {
	if mapped, ok := tr.syms[r]; ok {
		return mapped
	}
	src := &tr.shard.symbols[r]
	owner := tr.sym(src.Owner)
	name := tr.name(src.Name)

	// Idempotent against work other shards merged first: same owner, name
	// and kind folds into the existing symbol.
	ref := tr.master.FindMember(owner, name)
	if !ref.Exists() || tr.master.Symbol(ref).kind() != src.kind() {
		ref = tr.master.enterSymbol(owner, name, src.Loc(), src.kind())
	}
	tr.syms[r] = ref

	src = &tr.shard.symbols[r] // enterSymbol may have grown the master only
	dst := tr.master.Symbol(ref)
	dst.Flags |= src.Flags
	for _, loc := range src.Locs {
		dst.AddLoc(loc)
	}
	dst.UniqueCounter = max(dst.UniqueCounter, src.UniqueCounter)
	dst.Intrinsic = src.Intrinsic

	superOrRebind := tr.sym(src.SuperOrRebind)
	mixins := make([]SymbolRef, len(src.Mixins))
	for i, m := range src.Mixins {
		mixins[i] = tr.sym(m)
	}
	typeParams := make([]SymbolRef, len(src.TypeParams))
	for i, tp := range src.TypeParams {
		typeParams[i] = tr.sym(tp)
	}
	args := make([]ArgInfo, len(src.Arguments))
	for i, a := range src.Arguments {
		args[i] = a
		args[i].Name = tr.name(a.Name)
		args[i].Type = tr.typ(a.Type)
		args[i].Rebind = tr.sym(a.Rebind)
	}
	resultType := tr.typ(src.ResultType)

	dst = tr.master.Symbol(ref)
	if !dst.SuperOrRebind.Exists() {
		dst.SuperOrRebind = superOrRebind
	}
	if len(dst.Mixins) == 0 {
		dst.Mixins = mixins
	}
	if len(dst.TypeParams) == 0 {
		dst.TypeParams = typeParams
	}
	if len(dst.Arguments) == 0 {
		dst.Arguments = args
	}
	if !dst.ResultType.Exists() {
		dst.ResultType = resultType
	}
	return ref
}

// typ rebuilds a shard type in the master through the canonical
// constructors, memoized so shared terms stay shared.
func (tr *shardTranslator) typ(id TypeID) TypeID {
	if !id.Exists() {
		return NoType
	}
	if mapped, ok := tr.types[id]; ok {
		return mapped
	}
	shard, master := tr.shard, tr.master
	d := shard.TypeOf(id)
	var out TypeID
	switch d.Kind {
	case TypeClass:
		out = master.ClassTypeOf(tr.sym(d.Sym))
	case TypeApplied:
		args := shard.TypeArgs(id)
		mapped := make([]TypeID, len(args))
		for i, a := range args {
			mapped[i] = tr.typ(a)
		}
		out = master.AppliedTypeOf(tr.sym(d.Sym), mapped)
	case TypeTuple:
		elems := shard.TupleElems(id)
		mapped := make([]TypeID, len(elems))
		for i, e := range elems {
			mapped[i] = tr.typ(e)
		}
		out = master.TupleTypeOf(mapped)
	case TypeShape:
		keys, values := shard.ShapeKeysValues(id)
		mk := make([]TypeID, len(keys))
		mv := make([]TypeID, len(values))
		for i := range keys {
			mk[i] = tr.typ(keys[i])
			mv[i] = tr.typ(values[i])
		}
		out = master.ShapeTypeOf(mk, mv)
	case TypeLiteral:
		out = master.types.intern(TypeDesc{Kind: TypeLiteral, Sym: d.Sym, A: tr.literalA(d), B: d.B})
	case TypeOr:
		out = master.AnyType(tr.typ(TypeID(d.A)), tr.typ(TypeID(d.B)))
	case TypeAnd:
		out = master.AllType(tr.typ(TypeID(d.A)), tr.typ(TypeID(d.B)))
	case TypeVar:
		out = master.NewTypeVar(tr.sym(d.Sym))
	case TypeLambdaParam:
		out = master.LambdaParamType(tr.sym(d.Sym))
	case TypeSelf:
		out = master.SelfTypeType()
	case TypeMeta:
		out = master.MetaTypeOf(tr.typ(TypeID(d.A)))
	case TypeUnresolved:
		scope, path := shard.UnresolvedPath(id)
		mapped := make([]names.Ref, len(path))
		for i, n := range path {
			mapped[i] = tr.name(n)
		}
		out = master.UnresolvedClassTypeOf(tr.sym(scope), mapped)
	case TypeUntyped:
		out = master.types.intern(TypeDesc{Kind: TypeUntyped, Sym: tr.sym(d.Sym)})
	case TypeBottom:
		out = master.BottomType()
	case TypeTop:
		out = master.TopType()
	default:
		out = master.UntypedUntracked()
	}
	tr.types[id] = out
	return out
}

// literalA remaps the name payload of symbol/string literals; numeric
// payloads pass through.
func (tr *shardTranslator) literalA(d TypeDesc) uint32 {
	if d.Sym == SymSymbol || d.Sym == SymString {
		return uint32(tr.name(names.Ref(d.A)))
	}
	return d.A
}

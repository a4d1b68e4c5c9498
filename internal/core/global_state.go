package core

import (
	"fmt"

	"fortio.org/safecast"

	"sigil/internal/config"
	"sigil/internal/diag"
	"sigil/internal/names"
	"sigil/internal/source"
)

// GlobalState owns every symbol, name, and type of one check session. All
// mutation goes through it; handles stay valid for its whole lifetime. One
// GlobalState is single-threaded; parallelism deep-copies it per worker
// (see internal/driver).
type GlobalState struct {
	Names    *names.Table
	symbols  []Symbol
	types    *typeStore
	reporter diag.Reporter
	config   config.Config

	// forkBase remembers the symbol/name counts at fork time, so a shard
	// can replay only its own additions during merge.
	forkBase forkBase
}

type forkBase struct {
	symbols int
	nameLen int
	shard   int
}

// NewGlobalState builds a state with the reserved prelude symbols entered.
func NewGlobalState(cfg config.Config, reporter diag.Reporter) *GlobalState {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	gs := &GlobalState{
		Names:    names.NewTable(),
		symbols:  make([]Symbol, 1, 256),
		types:    newTypeStore(),
		reporter: reporter,
		config:   cfg,
	}
	gs.initPrelude()
	return gs
}

// Reporter exposes the diagnostic sink.
func (gs *GlobalState) Reporter() diag.Reporter { return gs.reporter }

// SetReporter swaps the diagnostic sink. Forked shards share the parent's
// reporter; workers that diagnose concurrently must install their own
// before running.
func (gs *GlobalState) SetReporter(r diag.Reporter) {
	if r == nil {
		r = diag.NopReporter{}
	}
	gs.reporter = r
}

// Config exposes the session configuration.
func (gs *GlobalState) Config() config.Config { return gs.config }

// SymbolCount reports the number of allocated symbols, sentinel excluded.
func (gs *GlobalState) SymbolCount() int { return len(gs.symbols) - 1 }

// Symbol returns the record behind a ref. The pointer stays valid until the
// next symbol allocation; callers must not retain it across EnterSymbol.
func (gs *GlobalState) Symbol(ref SymbolRef) *Symbol {
	if !ref.Exists() || int(ref) >= len(gs.symbols) {
		panic(fmt.Sprintf("core: dereferencing invalid SymbolRef %d", ref))
	}
	return &gs.symbols[ref]
}

func (gs *GlobalState) allocSymbol(sym Symbol) SymbolRef {
	value, err := safecast.Conv[uint32](len(gs.symbols))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	ref := SymbolRef(value)
	gs.symbols = append(gs.symbols, sym)
	return ref
}

// enterSymbol is the shared idempotent entry path. A member with the same
// name and kind is returned as-is; a kind mismatch reports DuplicateSymbol
// and moves the new definition under a mangle-renamed name so checking can
// continue.
func (gs *GlobalState) enterSymbol(owner SymbolRef, name names.Ref, loc source.Span, kind Flags) SymbolRef {
	ownerData := gs.Symbol(owner)
	if existing, ok := ownerData.Members[name]; ok {
		if gs.Symbol(existing).kind() == kind {
			gs.Symbol(existing).AddLoc(loc)
			return existing
		}
		if e := diag.Begin(gs.reporter, diag.NamerDuplicateSymbol, loc); e != nil {
			e.Header(fmt.Sprintf("Redefining `%s` with a different kind", gs.Names.Value(name))).
				Section(gs.Symbol(existing).Loc(), "previously defined here").
				Emit()
		}
		ownerData.UniqueCounter++
		name = gs.Names.Unique(names.UniqueMangleRename, name, ownerData.UniqueCounter)
	}

	ref := gs.allocSymbol(Symbol{
		Owner: owner,
		Name:  name,
		Flags: kind,
	})
	sym := gs.Symbol(ref)
	sym.AddLoc(loc)
	owned := gs.Symbol(owner)
	if owned.Members == nil {
		owned.Members = make(map[names.Ref]SymbolRef)
	}
	owned.Members[name] = ref
	return ref
}

// EnterClassSymbol enters (or reopens) a class or module under owner.
func (gs *GlobalState) EnterClassSymbol(owner SymbolRef, name names.Ref, loc source.Span) SymbolRef {
	return gs.enterSymbol(owner, name, loc, FlagClass)
}

// EnterMethodSymbol enters a method under owner.
func (gs *GlobalState) EnterMethodSymbol(owner SymbolRef, name names.Ref, loc source.Span) SymbolRef {
	return gs.enterSymbol(owner, name, loc, FlagMethod)
}

// EnterFieldSymbol enters an instance field under owner.
func (gs *GlobalState) EnterFieldSymbol(owner SymbolRef, name names.Ref, loc source.Span) SymbolRef {
	return gs.enterSymbol(owner, name, loc, FlagField)
}

// EnterStaticFieldSymbol enters a constant or static field under owner.
func (gs *GlobalState) EnterStaticFieldSymbol(owner SymbolRef, name names.Ref, loc source.Span) SymbolRef {
	return gs.enterSymbol(owner, name, loc, FlagStaticField)
}

// EnterTypeMember enters a class-scoped generic parameter.
func (gs *GlobalState) EnterTypeMember(owner SymbolRef, name names.Ref, loc source.Span, v Variance) SymbolRef {
	ref := gs.enterSymbol(owner, name, loc, FlagTypeMember)
	sym := gs.Symbol(ref)
	if sym.Flags&(FlagTypeCovariant|FlagTypeInvariant|FlagTypeContravariant) == 0 {
		sym.SetVariance(v)
		owner := gs.Symbol(sym.Owner)
		owner.TypeParams = append(owner.TypeParams, ref)
	}
	return ref
}

// EnterTypeArgument enters a method-scoped generic parameter.
func (gs *GlobalState) EnterTypeArgument(owner SymbolRef, name names.Ref, loc source.Span, v Variance) SymbolRef {
	ref := gs.enterSymbol(owner, name, loc, FlagTypeArgument)
	sym := gs.Symbol(ref)
	if sym.Flags&(FlagTypeCovariant|FlagTypeInvariant|FlagTypeContravariant) == 0 {
		sym.SetVariance(v)
		owner := gs.Symbol(sym.Owner)
		owner.TypeParams = append(owner.TypeParams, ref)
	}
	return ref
}

// FindMember looks the name up on the symbol's local member map.
func (gs *GlobalState) FindMember(sym SymbolRef, name names.Ref) SymbolRef {
	if ref, ok := gs.Symbol(sym).Members[name]; ok {
		return ref
	}
	return NoSymbol
}

// MembersStableOrderSlow returns the member map ordered by rendered name.
// Slow; for serializers and printers only.
type MemberEntry struct {
	Name names.Ref
	Sym  SymbolRef
}

func (gs *GlobalState) MembersStableOrderSlow(sym SymbolRef) []MemberEntry {
	data := gs.Symbol(sym)
	out := make([]MemberEntry, 0, len(data.Members))
	for name, ref := range data.Members {
		out = append(out, MemberEntry{Name: name, Sym: ref})
	}
	// Sort by rendered name, refs as tiebreaker for mangled duplicates.
	sortMembers(gs.Names, out)
	return out
}

// NewBlameSymbol mints a synthetic method symbol used only to attribute
// untyped to a source ("typed blame" vs "untyped blame" roots).
func (gs *GlobalState) NewBlameSymbol(owner SymbolRef, name names.Ref) SymbolRef {
	ref := gs.EnterMethodSymbol(owner, name, source.Span{})
	gs.Symbol(ref).Flags |= FlagDSLSynthesized
	return ref
}

// DeepCopy clones the whole state. The copy shares nothing with the
// original except the reporter; handles remain valid in both.
func (gs *GlobalState) DeepCopy() *GlobalState {
	cp := &GlobalState{
		Names:    gs.Names.Clone(),
		symbols:  make([]Symbol, len(gs.symbols), cap(gs.symbols)),
		types:    newTypeStore(),
		reporter: gs.reporter,
		config:   gs.config,
		forkBase: gs.forkBase,
	}
	for i := range gs.symbols {
		cp.symbols[i] = cloneSymbol(&gs.symbols[i])
	}
	cp.types.types = append(cp.types.types[:0], gs.types.types...)
	cp.types.index = make(map[TypeDesc]TypeID, len(gs.types.index))
	for k, v := range gs.types.index {
		cp.types.index[k] = v
	}
	cp.types.listIndex = make(map[string]TypeID, len(gs.types.listIndex))
	for k, v := range gs.types.listIndex {
		cp.types.listIndex[k] = v
	}
	cp.types.lists = cloneLists(gs.types.lists)
	cp.types.shapes = make([]shapeInfo, len(gs.types.shapes))
	for i, sh := range gs.types.shapes {
		cp.types.shapes[i] = shapeInfo{
			keys:   append([]TypeID(nil), sh.keys...),
			values: append([]TypeID(nil), sh.values...),
		}
	}
	cp.types.paths = make([][]names.Ref, len(gs.types.paths))
	for i, p := range gs.types.paths {
		cp.types.paths[i] = append([]names.Ref(nil), p...)
	}
	cp.types.varCounter = gs.types.varCounter
	return cp
}

func cloneSymbol(s *Symbol) Symbol {
	cp := *s
	cp.Mixins = append([]SymbolRef(nil), s.Mixins...)
	cp.TypeParams = append([]SymbolRef(nil), s.TypeParams...)
	cp.Arguments = append([]ArgInfo(nil), s.Arguments...)
	cp.Locs = append([]source.Span(nil), s.Locs...)
	if s.Members != nil {
		cp.Members = make(map[names.Ref]SymbolRef, len(s.Members))
		for k, v := range s.Members {
			cp.Members[k] = v
		}
	}
	return cp
}

func cloneLists(lists [][]TypeID) [][]TypeID {
	out := make([][]TypeID, len(lists))
	for i, l := range lists {
		out[i] = append([]TypeID(nil), l...)
	}
	return out
}

package core

import "testing"

func TestForkCopiesAreIndependent(t *testing.T) {
	gs, _ := newTestState(t)
	shards := gs.Fork(2)
	before := gs.SymbolCount()

	shards[0].EnterClassSymbol(SymRoot, shards[0].Names.Intern("OnlyInShard"), testSpan(1))
	if gs.SymbolCount() != before {
		t.Fatalf("shard mutation leaked into the master")
	}
	if shards[1].FindMember(SymRoot, shards[1].Names.Intern("OnlyInShard")).Exists() {
		t.Fatalf("shard mutation leaked into a sibling")
	}
}

func TestMergeReplaysShardDeltas(t *testing.T) {
	gs, _ := newTestState(t)
	shards := gs.Fork(2)

	classA := shards[0].EnterClassSymbol(SymRoot, shards[0].Names.Intern("FromShard0"), testSpan(1))
	shards[0].Symbol(classA).SetIsModule(false)
	shards[0].Symbol(classA).SetSuperClass(SymObject)
	methodA := shards[0].EnterMethodSymbol(classA, shards[0].Names.Intern("run"), testSpan(2))
	shards[0].Symbol(methodA).ResultType = shards[0].ClassTypeOf(SymInteger)

	shards[1].EnterClassSymbol(SymRoot, shards[1].Names.Intern("FromShard1"), testSpan(3))

	gs.Merge(shards)

	merged := gs.FindMember(SymRoot, gs.Names.Intern("FromShard0"))
	if !merged.Exists() {
		t.Fatalf("shard 0 class missing after merge")
	}
	if !gs.FindMember(SymRoot, gs.Names.Intern("FromShard1")).Exists() {
		t.Fatalf("shard 1 class missing after merge")
	}
	method := gs.FindMember(merged, gs.Names.Intern("run"))
	if !method.Exists() {
		t.Fatalf("shard method missing after merge")
	}
	if gs.Symbol(method).ResultType != gs.ClassTypeOf(SymInteger) {
		t.Fatalf("result type not translated into the master")
	}
	if gs.Symbol(merged).SuperClass() != SymObject {
		t.Fatalf("superclass not preserved across merge")
	}
	gs.SanityCheck()
}

func TestMergeIsDeterministic(t *testing.T) {
	run := func() uint32 {
		gs, _ := newTestState(t)
		shards := gs.Fork(3)
		for i, shard := range shards {
			name := []string{"Alpha", "Beta", "Gamma"}[i]
			class := shard.EnterClassSymbol(SymRoot, shard.Names.Intern(name), testSpan(1))
			shard.Symbol(class).SetIsModule(false)
			shard.Symbol(class).SetSuperClass(SymObject)
		}
		gs.Merge(shards)
		h := newHasher()
		for _, probe := range []string{"Alpha", "Beta", "Gamma"} {
			h = h.u32(uint32(gs.FindMember(SymRoot, gs.Names.Intern(probe))))
		}
		return uint32(h)
	}
	if run() != run() {
		t.Fatalf("merge order must be deterministic")
	}
}

func TestMergeDedupsSameDefinition(t *testing.T) {
	gs, _ := newTestState(t)
	shards := gs.Fork(2)
	for _, shard := range shards {
		class := shard.EnterClassSymbol(SymRoot, shard.Names.Intern("Shared"), testSpan(1))
		shard.Symbol(class).SetIsModule(false)
		shard.Symbol(class).SetSuperClass(SymObject)
	}
	before := gs.SymbolCount()
	gs.Merge(shards)
	if gs.SymbolCount() != before+1 {
		t.Fatalf("expected one merged class, grew by %d", gs.SymbolCount()-before)
	}
}

func TestDeepCopyPreservesTypes(t *testing.T) {
	gs, _ := newTestState(t)
	union := gs.AnyType(gs.ClassTypeOf(SymInteger), gs.ClassTypeOf(SymString))
	cp := gs.DeepCopy()
	if cp.ShowType(union) != gs.ShowType(union) {
		t.Fatalf("type handles must stay valid in the copy")
	}
	if cp.AnyType(cp.ClassTypeOf(SymInteger), cp.ClassTypeOf(SymString)) != union {
		t.Fatalf("interner state must carry over")
	}
}

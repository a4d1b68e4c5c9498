package driver

import (
	"context"
	"fmt"
	"testing"

	"sigil/internal/config"
	"sigil/internal/core"
	"sigil/internal/diag"
	"sigil/internal/source"
)

func newDriverState(t *testing.T) *core.GlobalState {
	t.Helper()
	return core.NewGlobalState(config.Default(), diag.NopReporter{})
}

func TestResolveParallelMergesAllTasks(t *testing.T) {
	gs := newDriverState(t)

	var tasks []Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, func(shard *core.GlobalState) error {
			name := shard.Names.Intern(fmt.Sprintf("Task%d", i))
			class := shard.EnterClassSymbol(core.SymRoot, name, source.Span{File: 1, Start: uint32(i)})
			shard.Symbol(class).SetIsModule(false)
			shard.Symbol(class).SetSuperClass(core.SymObject)
			return nil
		})
	}

	if err := ResolveParallel(context.Background(), gs, 3, tasks); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 8; i++ {
		if !gs.FindMember(core.SymRoot, gs.Names.Intern(fmt.Sprintf("Task%d", i))).Exists() {
			t.Fatalf("task %d result missing after merge", i)
		}
	}
	gs.SanityCheck()
}

func TestResolveParallelSingleJobRunsInPlace(t *testing.T) {
	gs := newDriverState(t)
	before := gs.SymbolCount()
	task := func(shard *core.GlobalState) error {
		if shard != gs {
			t.Fatalf("single-job mode must not fork")
		}
		shard.EnterClassSymbol(core.SymRoot, shard.Names.Intern("Inline"), source.Span{})
		return nil
	}
	if err := ResolveParallel(context.Background(), gs, 1, []Task{task}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gs.SymbolCount() != before+1 {
		t.Fatalf("inline task did not run")
	}
}

func TestResolveParallelPropagatesErrors(t *testing.T) {
	gs := newDriverState(t)
	wantErr := fmt.Errorf("boom")
	tasks := []Task{
		func(*core.GlobalState) error { return nil },
		func(*core.GlobalState) error { return wantErr },
	}
	if err := ResolveParallel(context.Background(), gs, 2, tasks); err == nil {
		t.Fatalf("expected the task error to propagate")
	}
}

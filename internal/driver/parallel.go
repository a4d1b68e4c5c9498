// Package driver orchestrates the parallel resolution model and the
// snapshot cache around the single-threaded core.
package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sigil/internal/core"
)

// Task is one unit of per-file resolution work run against a shard's
// GlobalState. Tasks assigned to the same shard run serially, in order.
type Task func(gs *core.GlobalState) error

// ResolveParallel forks the state once per worker, distributes the tasks
// round-robin across the shards, runs the shards concurrently, and merges
// the deltas back in shard order. The master must not be touched while the
// group runs; after a successful return it owns every symbol the tasks
// created, with deterministic creation order.
func ResolveParallel(ctx context.Context, gs *core.GlobalState, jobs int, tasks []Task) error {
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(tasks) {
		jobs = len(tasks)
	}
	if jobs <= 1 {
		for _, task := range tasks {
			if err := task(gs); err != nil {
				return err
			}
		}
		return nil
	}

	shards := gs.Fork(jobs)
	g, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		g.Go(func() error {
			for j := i; j < len(tasks); j += jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := tasks[j](shard); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	gs.Merge(shards)
	return nil
}

// vigil-demo runs a scheduler against an in-memory store and exercises both
// termination paths: spawned actors that finish on their own, and tracked
// actors that are abandoned and left to the garbage collector. It exits once
// the scheduler is quiescent.
// Usage: go run ./cmd/vigil-demo
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seantiz/vigil/internal/actor"
	"github.com/seantiz/vigil/internal/liveness"
	"github.com/seantiz/vigil/internal/scheduler"
	"github.com/seantiz/vigil/internal/store"
)

const (
	spawned   = 5
	abandoned = 3
)

// abandon tracks an actor and drops the only reference to it.
//
//go:noinline
func abandon(ctx context.Context, sched *scheduler.Scheduler, i int) error {
	return sched.Track(ctx, actor.New(fmt.Sprintf("orphan-%d", i), "", actor.Params{}))
}

func main() {
	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	behaviors := actor.NewRegistry()
	actor.RegisterBuiltins(behaviors)

	sched := scheduler.New(liveness.New[actor.Actor](logger), behaviors, db, logger, scheduler.Options{
		ReclaimInterval: 100 * time.Millisecond,
		ExitWhenIdle:    true,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := range spawned {
		behavior := actor.BehaviorSleep
		if i%2 == 1 {
			behavior = actor.BehaviorFail
		}
		params := actor.Params{Duration: time.Duration(i+1) * 100 * time.Millisecond}
		if _, err := sched.Spawn(ctx, fmt.Sprintf("worker-%d", i), behavior, params); err != nil {
			log.Fatalf("spawn: %v", err)
		}
	}
	for i := range abandoned {
		if err := abandon(ctx, sched, i); err != nil {
			log.Fatalf("track: %v", err)
		}
	}

	logger.Info("vigil-demo: started", "pending", sched.PendingCount())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		// Nudge the collector so abandoned actors are noticed promptly.
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for !sched.Status().Quiescent {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				runtime.GC()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("vigil-demo: %v", err)
	}

	st := sched.Status()
	logger.Info("vigil-demo: done",
		"terminated", st.Terminated,
		"reclaimed", st.Reclaimed,
		"pending", st.Pending,
	)
}

// Command vigil runs the actor scheduler with its HTTP API. With
// VIGIL_EXIT_WHEN_IDLE set, the process exits once every actor it has seen
// has terminated or been reclaimed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/seantiz/vigil/internal/actor"
	"github.com/seantiz/vigil/internal/api"
	"github.com/seantiz/vigil/internal/config"
	"github.com/seantiz/vigil/internal/liveness"
	"github.com/seantiz/vigil/internal/scheduler"
	"github.com/seantiz/vigil/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("vigil: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"reclaim_interval", cfg.ReclaimInterval.String(),
		"exit_when_idle", cfg.ExitWhenIdle,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	behaviors := actor.NewRegistry()
	actor.RegisterBuiltins(behaviors)

	reg := liveness.New[actor.Actor](logger)
	sched := scheduler.New(reg, behaviors, db, logger, scheduler.Options{
		ReclaimInterval: cfg.ReclaimInterval,
		ExitWhenIdle:    cfg.ExitWhenIdle,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RestorePending {
		if _, err := sched.Restore(ctx); err != nil {
			log.Fatalf("failed to restore pending count: %v", err)
		}
	}

	srv := api.NewServer(cfg.ListenAddr, db, sched, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The scheduler returning on its own means it went idle; take the
		// server down with it.
		defer stop()
		return sched.Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("vigil: %v", err)
	}
	logger.Info("vigil: exited")
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seantiz/vigil/internal/actor"
	"github.com/seantiz/vigil/internal/liveness"
	"github.com/seantiz/vigil/internal/model"
	"github.com/seantiz/vigil/internal/store"
)

// DefaultReclaimInterval is how often Run drains collection notices when no
// interval is configured.
const DefaultReclaimInterval = time.Second

// ErrStopped is returned when spawning or tracking on a stopped scheduler.
var ErrStopped = errors.New("scheduler stopped")

// Options tunes a Scheduler.
type Options struct {
	// ReclaimInterval is the period of the reclaim loop in Run.
	ReclaimInterval time.Duration
	// ExitWhenIdle makes Run return once at least one actor has been seen
	// and the register is quiescent.
	ExitWhenIdle bool
}

// Scheduler runs actors and keeps the liveness register in step with them.
type Scheduler struct {
	register  *liveness.Register[actor.Actor]
	behaviors *actor.Registry
	store     store.Store
	logger    *slog.Logger
	broker    *EventBroker
	opts      Options

	// ctx is handed to every behavior and cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// lifecycle orders Spawn and Track against Stop so no goroutine is
	// added to wg once Stop has started waiting.
	lifecycle sync.RWMutex
	stopped   bool
	seen      atomic.Bool

	cpMu        sync.Mutex
	saved       bool
	lastPending int64
	lastTracked int
}

// New creates a scheduler around the given register.
func New(reg *liveness.Register[actor.Actor], behaviors *actor.Registry, s store.Store, logger *slog.Logger, opts Options) *Scheduler {
	if opts.ReclaimInterval <= 0 {
		opts.ReclaimInterval = DefaultReclaimInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		register:  reg,
		behaviors: behaviors,
		store:     s,
		logger:    logger,
		broker:    NewEventBroker(),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Broker returns the scheduler's event broker for SSE subscription.
func (s *Scheduler) Broker() *EventBroker {
	return s.broker
}

// Behaviors returns the names of the behaviors actors can be spawned with.
func (s *Scheduler) Behaviors() []string {
	return s.behaviors.List()
}

// Spawn starts a new actor running the named behavior. The actor is
// registered before its goroutine starts, and the register is notified on
// every exit path of the behavior: return, error or panic.
func (s *Scheduler) Spawn(ctx context.Context, name, behavior string, params actor.Params) (*actor.Actor, error) {
	b, err := s.behaviors.Resolve(behavior)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", name, err)
	}

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.stopped {
		return nil, ErrStopped
	}

	a := actor.New(name, behavior, params)
	s.register.OnTerminate(a, s.onTerminated(a.ID, a.Name))
	s.register.Register(a)
	s.seen.Store(true)
	s.record(ctx, model.Event{ActorID: a.ID, ActorName: a.Name, Kind: model.EventStarted, Detail: behavior})

	s.wg.Go(func() {
		s.run(a, b)
	})

	return a, nil
}

// Track registers an actor the scheduler does not run. Its owner either
// calls Release, or drops it and lets the reclaim loop account for it.
func (s *Scheduler) Track(ctx context.Context, a *actor.Actor) error {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.stopped {
		return ErrStopped
	}

	s.register.OnTerminate(a, s.onTerminated(a.ID, a.Name))
	s.register.Register(a)
	s.seen.Store(true)
	s.record(ctx, model.Event{ActorID: a.ID, ActorName: a.Name, Kind: model.EventTracked})
	return nil
}

// Release reports a tracked actor as terminated. It returns false if the
// actor had no live registration.
func (s *Scheduler) Release(a *actor.Actor) bool {
	return s.register.NotifyTerminated(a)
}

// run executes one behavior in its own goroutine.
func (s *Scheduler) run(a *actor.Actor, b actor.Behavior) {
	start := time.Now()
	outcome := outcomeCompleted

	defer func() {
		if p := recover(); p != nil {
			outcome = outcomePanicked
			s.logger.Error("actor panicked", "actor_id", a.ID, "actor_name", a.Name, "panic", p)
			s.record(context.Background(), model.Event{
				ActorID: a.ID, ActorName: a.Name, Kind: model.EventFailed, Detail: fmt.Sprintf("panic: %v", p),
			})
		}
		actorDuration.Observe(time.Since(start).Seconds())
		actorsTotal.WithLabelValues(a.Behavior, outcome).Inc()
		s.register.NotifyTerminated(a)
	}()

	if err := b(s.ctx, a); err != nil {
		outcome = outcomeFailed
		s.logger.Warn("actor failed", "actor_id", a.ID, "actor_name", a.Name, "error", err)
		s.record(context.Background(), model.Event{
			ActorID: a.ID, ActorName: a.Name, Kind: model.EventFailed, Detail: err.Error(),
		})
	}
}

// onTerminated builds the termination callback for an actor. It closes over
// the actor's ID and name only, never the actor, so the callback cannot keep
// a tracked actor reachable.
func (s *Scheduler) onTerminated(id, name string) func() {
	return func() {
		s.record(context.Background(), model.Event{ActorID: id, ActorName: name, Kind: model.EventTerminated})
	}
}

// record persists an event and publishes it. Store failures are logged; the
// liveness accounting never depends on them.
func (s *Scheduler) record(ctx context.Context, e model.Event) {
	e.CreatedAt = time.Now().UTC()
	if err := s.store.InsertEvent(ctx, &e); err != nil {
		s.logger.Error("failed to record event", "actor_id", e.ActorID, "kind", e.Kind, "error", err)
	}
	s.broker.Publish(e)
}

// Poll drains collection notices, refreshes gauges and checkpoints the
// pending count if it changed. It returns the number of actors reclaimed and
// the register status afterwards.
func (s *Scheduler) Poll(ctx context.Context) (int, liveness.Status) {
	n, st := s.drain(ctx)
	s.checkpoint(ctx, st, false)
	return n, st
}

func (s *Scheduler) drain(ctx context.Context) (int, liveness.Status) {
	n := s.register.Reclaim()
	if n > 0 {
		s.logger.Info("reclaimed unreachable actors", "count", n)
		s.record(ctx, model.Event{Kind: model.EventReclaimed, Detail: strconv.Itoa(n)})
	}
	st := s.register.Status()
	pendingActors.Set(float64(st.Pending))
	trackedActors.Set(float64(st.Tracked))
	return n, st
}

func (s *Scheduler) checkpoint(ctx context.Context, st liveness.Status, force bool) {
	s.cpMu.Lock()
	defer s.cpMu.Unlock()

	if !force && s.saved && s.lastPending == st.Pending && s.lastTracked == st.Tracked {
		return
	}
	cp := &model.Checkpoint{Pending: st.Pending, Tracked: st.Tracked, CreatedAt: time.Now().UTC()}
	if err := s.store.SaveCheckpoint(ctx, cp); err != nil {
		s.logger.Error("failed to save checkpoint", "pending", st.Pending, "error", err)
		return
	}
	s.saved = true
	s.lastPending = st.Pending
	s.lastTracked = st.Tracked
}

// Run drives the reclaim loop until ctx is done or, with ExitWhenIdle, until
// the register turns quiescent after at least one actor was seen. Either way
// it stops the scheduler before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.ReclaimInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler running",
		"reclaim_interval", s.opts.ReclaimInterval.String(),
		"exit_when_idle", s.opts.ExitWhenIdle,
	)

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-ticker.C:
			_, st := s.Poll(ctx)
			if s.opts.ExitWhenIdle && st.Quiescent && s.seen.Load() {
				s.logger.Info("scheduler quiescent", "registered_total", st.Registered)
				s.Stop()
				return nil
			}
		}
	}
}

// Stop refuses new actors, cancels running behaviors, waits for them, then
// drains the register one last time and writes a final checkpoint. Calls
// after the first return immediately.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	if s.stopped {
		s.lifecycle.Unlock()
		return
	}
	s.stopped = true
	s.lifecycle.Unlock()

	s.cancel()
	s.wg.Wait()

	ctx := context.Background()
	_, st := s.drain(ctx)
	s.checkpoint(ctx, st, true)
	s.broker.Close()

	s.logger.Info("scheduler stopped", "pending", st.Pending, "tracked", st.Tracked)
}

// Wait blocks until all running behaviors have returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Restore seeds the register's pending count from the latest checkpoint.
// Actors counted there belong to a previous process and can only be
// settled through SetPendingCount. It returns the restored count, or 0 if no
// checkpoint exists.
func (s *Scheduler) Restore(ctx context.Context) (int64, error) {
	cp, err := s.store.LatestCheckpoint(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	s.register.SetPendingCount(cp.Pending)
	pendingActors.Set(float64(cp.Pending))
	s.logger.Info("restored pending count", "pending", cp.Pending, "checkpoint_at", cp.CreatedAt)
	return cp.Pending, nil
}

// Status returns the register's diagnostic snapshot.
func (s *Scheduler) Status() liveness.Status {
	return s.register.Status()
}

// PendingCount returns the register's pending count.
func (s *Scheduler) PendingCount() int64 {
	return s.register.PendingCount()
}

// SetPendingCount overwrites the register's pending count.
func (s *Scheduler) SetPendingCount(n int64) {
	s.register.SetPendingCount(n)
	pendingActors.Set(float64(n))
}

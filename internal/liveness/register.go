package liveness

import (
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"weak"
)

// handle is a tracking handle: a weak observation of one registered task
// plus the cleanup that reports the task's collection.
type handle[T any] struct {
	id      uint64
	target  weak.Pointer[T]
	cleanup runtime.Cleanup
}

// Status is a diagnostic snapshot of a register.
type Status struct {
	Pending    int64  `json:"pending"`
	Tracked    int    `json:"tracked"`
	Handlers   int    `json:"handlers"`
	Quiescent  bool   `json:"quiescent"`
	Registered uint64 `json:"registered_total"`
	Terminated uint64 `json:"terminated_total"`
	Reclaimed  uint64 `json:"reclaimed_total"`
	Stale      uint64 `json:"stale_notifications_total"`
}

// Register counts pending tasks of type T and tracks them weakly. A task is
// identified by its pointer. All methods are safe for concurrent use; the
// counter, the handle registry and the handler map change together under a
// single mutex.
type Register[T any] struct {
	mu       sync.Mutex
	pending  int64
	nextID   uint64
	handles  map[uint64]*handle[T]
	byTarget map[weak.Pointer[T]][]uint64
	handlers map[weak.Pointer[T]]func()

	registered uint64
	terminated uint64
	reclaimed  uint64
	stale      uint64

	queue  *reclaimQueue
	logger *slog.Logger
}

// New creates an empty register. A nil logger discards output.
func New[T any](logger *slog.Logger) *Register[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Register[T]{
		handles:  make(map[uint64]*handle[T]),
		byTarget: make(map[weak.Pointer[T]][]uint64),
		handlers: make(map[weak.Pointer[T]]func()),
		queue:    &reclaimQueue{},
		logger:   logger,
	}
}

// Register adds one unit of pending work for task and starts tracking it.
// Registering the same task again adds another independent unit. A nil task
// is ignored.
//
// The task must be heap allocated and must not be a tiny pointer-free object,
// otherwise the runtime may never report its collection.
func (r *Register[T]) Register(task *T) {
	if task == nil {
		r.logger.Warn("liveness: ignoring nil task registration")
		return
	}
	wp := weak.Make(task)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	h := &handle[T]{id: r.nextID, target: wp}
	h.cleanup = runtime.AddCleanup(task, r.queue.push, h.id)

	r.handles[h.id] = h
	r.byTarget[wp] = append(r.byTarget[wp], h.id)
	r.pending++
	r.registered++
	registeredTotal.Inc()

	r.logger.Debug("liveness: registered", "handle", h.id, "pending", r.pending)
}

// OnTerminate sets the callback run when NotifyTerminated is called for task.
// A later call replaces an earlier one. The callback is never run for a task
// that is collected instead.
//
// The callback is stored strongly, so it must not capture task itself or the
// task can never become unreachable.
func (r *Register[T]) OnTerminate(task *T, fn func()) {
	if task == nil {
		return
	}
	wp := weak.Make(task)

	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		delete(r.handlers, wp)
		return
	}
	r.handlers[wp] = fn
}

// NotifyTerminated records that task finished. It runs and removes the
// task's termination callback, then releases one tracking handle for the
// task and decrements the pending count.
//
// The decrement only happens when a handle was actually released, and the
// return value reports that. Notifying twice, or for a task that was never
// registered, leaves the count untouched. A count seeded with
// SetPendingCount is therefore not drained by notifications for tasks this
// register never tracked.
//
// The callback runs outside the register's lock, so it may call back into
// the register. The handle is released even if the callback panics.
func (r *Register[T]) NotifyTerminated(task *T) (released bool) {
	if task == nil {
		return false
	}
	wp := weak.Make(task)

	defer func() {
		released = r.release(wp)
		runtime.KeepAlive(task)
	}()

	if fn := r.takeHandler(wp); fn != nil {
		fn()
	}
	return false
}

func (r *Register[T]) takeHandler(wp weak.Pointer[T]) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.handlers[wp]
	if ok {
		delete(r.handlers, wp)
	}
	return fn
}

// release drops the oldest live handle for wp and decrements the count.
func (r *Register[T]) release(wp weak.Pointer[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byTarget[wp]
	if len(ids) == 0 {
		r.stale++
		staleNotificationsTotal.Inc()
		r.logger.Debug("liveness: termination for untracked task", "pending", r.pending)
		return false
	}

	h := r.handles[ids[0]]
	// Stop has no effect if the cleanup is already queued. Reclaim skips ids
	// that are no longer in the registry, so the count still moves once.
	h.cleanup.Stop()
	r.dropLocked(h)
	r.pending--
	r.terminated++
	terminationsTotal.WithLabelValues(pathExplicit).Inc()

	r.logger.Debug("liveness: terminated", "handle", h.id, "pending", r.pending)
	return true
}

// dropLocked removes h from the registry and its target index.
func (r *Register[T]) dropLocked(h *handle[T]) {
	delete(r.handles, h.id)

	ids := r.byTarget[h.target]
	if i := slices.Index(ids, h.id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(r.byTarget, h.target)
		return
	}
	r.byTarget[h.target] = ids
}

// Reclaim drains every pending collection notice. Each handle still in the
// registry is removed and the count decremented once for it. Termination
// callbacks are not run; a callback left for a collected task is discarded.
// Reclaim never blocks and returns the number of handles reclaimed.
func (r *Register[T]) Reclaim() int {
	ids := r.queue.drain()
	if len(ids) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range ids {
		h, ok := r.handles[id]
		if !ok {
			continue
		}
		r.dropLocked(h)
		if _, live := r.byTarget[h.target]; !live {
			delete(r.handlers, h.target)
		}
		r.pending--
		n++
	}
	if n > 0 {
		r.reclaimed += uint64(n)
		terminationsTotal.WithLabelValues(pathCollected).Add(float64(n))
		r.logger.Debug("liveness: reclaimed", "count", n, "pending", r.pending)
	}
	return n
}

// IsQuiescent reports whether no work is pending.
func (r *Register[T]) IsQuiescent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending <= 0
}

// PendingCount returns the pending count.
func (r *Register[T]) PendingCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// SetPendingCount overwrites the pending count. It is meant for the owning
// scheduler seeding or transferring accounting; n is not validated.
func (r *Register[T]) SetPendingCount(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Info("liveness: pending count overwritten", "from", r.pending, "to", n)
	r.pending = n
}

// Status returns a diagnostic snapshot.
func (r *Register[T]) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Pending:    r.pending,
		Tracked:    len(r.handles),
		Handlers:   len(r.handlers),
		Quiescent:  r.pending <= 0,
		Registered: r.registered,
		Terminated: r.terminated,
		Reclaimed:  r.reclaimed,
		Stale:      r.stale,
	}
}

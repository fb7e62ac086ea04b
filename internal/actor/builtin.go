package actor

import (
	"context"
	"errors"
	"time"
)

// Built-in behavior names.
const (
	BehaviorNoop  = "noop"
	BehaviorSleep = "sleep"
	BehaviorFail  = "fail"
)

// ErrBehaviorFailed is what the fail behavior returns.
var ErrBehaviorFailed = errors.New("behavior failed")

// RegisterBuiltins adds the built-in behaviors to r.
func RegisterBuiltins(r *Registry) {
	r.Register(BehaviorNoop, Noop)
	r.Register(BehaviorSleep, Sleep)
	r.Register(BehaviorFail, Fail)
}

// Noop returns immediately.
func Noop(context.Context, *Actor) error { return nil }

// Sleep waits for the actor's Duration or until ctx is cancelled.
func Sleep(ctx context.Context, a *Actor) error {
	timer := time.NewTimer(a.Params.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fail waits like Sleep, then returns ErrBehaviorFailed.
func Fail(ctx context.Context, a *Actor) error {
	if err := Sleep(ctx, a); err != nil {
		return err
	}
	return ErrBehaviorFailed
}

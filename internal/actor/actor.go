package actor

import (
	"context"
	"time"

	"github.com/seantiz/vigil/internal/model"
)

// Behavior is the body of an actor. It should return promptly once ctx is
// cancelled.
type Behavior func(ctx context.Context, a *Actor) error

// Params tunes a behavior.
type Params struct {
	// Duration is how long time-based behaviors run.
	Duration time.Duration `json:"duration"`
}

// Actor is a running unit of work. Its pointer is its identity: the liveness
// register tracks actors by pointer, so copies of an Actor are unrelated
// tasks.
type Actor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Behavior  string    `json:"behavior"`
	Params    Params    `json:"params"`
	StartedAt time.Time `json:"started_at"`
}

// New builds an actor with a fresh ID.
func New(name, behavior string, params Params) *Actor {
	return &Actor{
		ID:        model.NewID(),
		Name:      name,
		Behavior:  behavior,
		Params:    params,
		StartedAt: time.Now().UTC(),
	}
}

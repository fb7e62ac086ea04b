package store

import (
	"context"
	"errors"

	"github.com/seantiz/vigil/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations for actor lifecycle history and
// pending-count checkpoints.
type Store interface {
	InsertEvent(ctx context.Context, e *model.Event) error
	ListEvents(ctx context.Context, limit, offset int) ([]*model.Event, int, error)
	ListActorEvents(ctx context.Context, actorID string) ([]*model.Event, error)
	SaveCheckpoint(ctx context.Context, cp *model.Checkpoint) error
	LatestCheckpoint(ctx context.Context) (*model.Checkpoint, error)
	Close() error
}

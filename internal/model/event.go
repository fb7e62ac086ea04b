package model

import "time"

// Lifecycle event kinds.
const (
	EventStarted    = "started"
	EventTracked    = "tracked"
	EventFailed     = "failed"
	EventTerminated = "terminated"
	EventReclaimed  = "reclaimed"
)

// terminalKinds are the kinds that release a unit of pending work.
var terminalKinds = map[string]bool{
	EventTerminated: true,
	EventReclaimed:  true,
}

// IsTerminal reports whether an event of the given kind ends an actor's
// pending lifetime. A failed actor is still followed by a terminated event.
func IsTerminal(kind string) bool {
	return terminalKinds[kind]
}

// Event is one persisted actor lifecycle event. Reclaimed events carry no
// actor identity, since the collected actor can no longer be inspected;
// Detail holds the number of actors reclaimed instead.
type Event struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name,omitempty"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Checkpoint records the pending count at a point in time so a restarted
// scheduler can pick up the previous accounting.
type Checkpoint struct {
	ID        int64     `json:"id"`
	Pending   int64     `json:"pending"`
	Tracked   int       `json:"tracked"`
	CreatedAt time.Time `json:"created_at"`
}

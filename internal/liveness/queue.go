package liveness

import "sync"

// reclaimQueue collects the ids of tracking handles whose targets were
// collected. Cleanup functions push from runtime goroutines; Reclaim drains.
// It holds plain ids so it can never retain a task.
type reclaimQueue struct {
	mu  sync.Mutex
	ids []uint64
}

func (q *reclaimQueue) push(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
}

// drain returns every queued id and empties the queue.
func (q *reclaimQueue) drain() []uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) == 0 {
		return nil
	}
	ids := q.ids
	q.ids = nil
	return ids
}

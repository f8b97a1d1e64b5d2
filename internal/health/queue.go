package health

import (
	"sync"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Queue collects probe results in arrival order. Push never blocks on the
// consumer; Drain never blocks on producers.
type Queue struct {
	mu     sync.Mutex
	items  []mcp.HealthResult
	notify chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Push appends r and wakes a waiter, if any.
func (q *Queue) Push(r mcp.HealthResult) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every queued result. It returns nil when the
// queue is empty.
func (q *Queue) Drain() []mcp.HealthResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports how many results are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready is signalled after a Push. A single signal may cover several
// results, so receivers should Drain.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}

package batch

import "sync"

// Queue hands out work items to concurrent workers. Each item is returned by
// exactly one call to Next; once the queue is drained every later call
// reports false. Items are fixed at construction and never refilled.
type Queue struct {
	mu    sync.Mutex
	items []string
	next  int
}

// NewQueue seeds a queue with items in the given order.
func NewQueue(items []string) *Queue {
	q := &Queue{items: make([]string, len(items))}
	copy(q.items, items)
	return q
}

// Next claims the next item. It returns false when no items remain.
func (q *Queue) Next() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.items) {
		return "", false
	}
	item := q.items[q.next]
	q.items[q.next] = "" // claimed items leave the queue
	q.next++
	return item, true
}

// Len returns the number of items the queue was seeded with.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Remaining returns the number of unclaimed items.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.next
}

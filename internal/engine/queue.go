package engine

import "sync"

// WorkQueue is an unbounded FIFO of file tasks with an end-of-input signal.
// Enumeration finishes before consumers start, so no backpressure is
// applied; a producer running alongside consumers would need a bound.
type WorkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []FileTask
	head   int
	closed bool
}

// NewWorkQueue returns an empty, open queue.
func NewWorkQueue() *WorkQueue {
	q := &WorkQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a task and wakes one waiting consumer. Pushing after Close
// is a programming error and panics.
func (q *WorkQueue) Push(task FileTask) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		panic("engine: push on closed work queue")
	}
	q.items = append(q.items, task)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop blocks until a task is available or the queue is closed. It returns
// ok=false once the queue is closed and drained.
func (q *WorkQueue) Pop() (FileTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	if q.head == len(q.items) {
		return FileTask{}, false
	}

	task := q.items[q.head]
	q.items[q.head] = FileTask{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return task, true
}

// Close marks the end of input and wakes every blocked consumer.
// Closing twice is a no-op.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *WorkQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued tasks.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

package store

import "sync"

// operation is one queued database statement together with its completion
// future. The dispatcher fulfills rows/err before closing done; the
// submitting caller reads them only after done is closed, so no entry is
// ever accessed concurrently.
type operation struct {
	stmt   string
	params []any
	read   bool

	// Fulfilled by the dispatcher. rows is set for reads only; err stays
	// internal (logged at the worker, surfaced to tests, never to callers).
	rows [][]any
	err  error

	done chan struct{}
}

// opQueue is an unbounded thread-safe FIFO of pending operations.
//
// Enqueuing is safe from any goroutine while the single dispatcher dequeues.
// The queue is unbounded on purpose: sustained write storms grow memory
// rather than rejecting callers. A buffered size-1 signal channel coalesces
// wake-ups for the dispatcher.
type opQueue struct {
	mu     sync.Mutex
	ops    []*operation
	closed bool
	signal chan struct{}
}

func newOpQueue() *opQueue {
	return &opQueue{
		ops:    make([]*operation, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an operation. Returns false if the queue is closed.
func (q *opQueue) Enqueue(op *operation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.ops = append(q.ops, op)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Dequeue removes and returns the front operation, blocking until one is
// available. Returns (nil, false) once the queue is closed and drained.
func (q *opQueue) Dequeue() (*operation, bool) {
	for {
		if op, ok := q.tryDequeue(); ok {
			return op, true
		}

		q.mu.Lock()
		if q.closed && len(q.ops) == 0 {
			q.mu.Unlock()
			return nil, false
		}
		q.mu.Unlock()

		<-q.signal
	}
}

func (q *opQueue) tryDequeue() (*operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		return nil, false
	}

	op := q.ops[0]
	// Nil the slot so the backing array does not retain completed operations
	// (and their result rows) under steady load.
	q.ops[0] = nil
	if len(q.ops) == 1 {
		q.ops = q.ops[:0]
	} else {
		q.ops = q.ops[1:]
	}
	return op, true
}

// Len returns the number of pending operations. The dispatcher's commit
// decision reads this immediately after executing a write; an enqueue that
// races past the check simply defers the commit to the next drain.
func (q *opQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Close rejects further enqueues and wakes the dispatcher so it can drain
// the remainder and exit.
func (q *opQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

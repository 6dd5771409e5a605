// ABOUTME: Serial execution contexts for engine work and event delivery
// ABOUTME: Provides the Dispatcher interface, an unbounded FIFO Queue and Inline
package convert

import (
	"log"
	"sync"
)

// Dispatcher runs tasks on some execution context. Implementations must
// run tasks from one Dispatcher in the order they were handed over.
type Dispatcher interface {
	Dispatch(task func())
}

// Inline runs every task on the calling goroutine
var Inline Dispatcher = inlineDispatcher{}

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(task func()) { task() }

// Queue is a serial execution context backed by one goroutine. Dispatch
// never blocks; tasks run one at a time in FIFO order.
type Queue struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool

	done chan struct{}
}

// NewQueue starts a queue goroutine. name only appears in logs.
func NewQueue(name string) *Queue {
	q := &Queue{
		name: name,
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Dispatch appends task to the queue. Tasks dispatched after Close are
// dropped.
func (q *Queue) Dispatch(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		log.Printf("Warning: queue %s is closed, dropping task", q.name)
		return
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// Close stops accepting tasks. Already queued tasks still run, then the
// goroutine exits and Done is closed. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Signal()
}

// Done is closed once the queue is closed and drained
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}

// Package queue runs submitted operations one at a time in submission order.
package queue

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/zerr"
)

// Operation is a unit of work run by the queue. Its return value is its outcome.
type Operation func() error

// Result is the pending outcome of an enqueued Operation.
type Result struct {
	done chan struct{}
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

// Done returns a channel that is closed once the operation has settled.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Err returns the outcome of the operation, or nil while it is still pending.
// Callers must receive from Done before trusting a nil result.
func (r *Result) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the operation settles or ctx ends. Giving up on the wait does not
// stop the operation.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Result) settle(err error) {
	r.err = err
	close(r.done)
}

type task struct {
	op     Operation
	result *Result
}

// Queue linearizes operations submitted from any goroutine.
//
// At most one operation runs at a time. Operations start in the order they were
// enqueued, and a failing operation only affects its own Result.
type Queue struct {
	mu       sync.Mutex
	pending  []*task
	inFlight bool
	coalesce bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithCoalescing makes Enqueue share the Result of an already pending operation instead
// of appending a new one. The operation passed to such an Enqueue call is discarded.
func WithCoalescing() Option {
	return func(q *Queue) {
		q.coalesce = true
	}
}

// New creates an empty, idle queue.
func New(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends op to the queue and starts draining if the queue is idle.
// The returned Result settles with whatever op returns.
func (q *Queue) Enqueue(op Operation) *Result {
	q.mu.Lock()
	if q.coalesce && len(q.pending) > 0 {
		shared := q.pending[len(q.pending)-1].result
		q.mu.Unlock()
		return shared
	}
	t := &task{op: op, result: newResult()}
	q.pending = append(q.pending, t)
	q.mu.Unlock()

	q.Dequeue()
	return t.result
}

// Dequeue starts the operation at the head of the queue.
//
// It returns false without doing anything when an operation is already running or
// nothing is pending. Once the started operation settles, the queue advances on its own.
func (q *Queue) Dequeue() bool {
	q.mu.Lock()
	if q.inFlight || len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	t := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.inFlight = true
	q.mu.Unlock()

	go q.run(t)
	return true
}

// Len returns the number of operations waiting to start.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Busy reports whether an operation is currently running.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

func (q *Queue) run(t *task) {
	defer func() {
		q.mu.Lock()
		q.inFlight = false
		q.mu.Unlock()
		q.Dequeue()
	}()

	t.result.settle(invoke(t.op))
}

// invoke runs op, turning a panic into an error for the waiter.
func invoke(op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.Wrap(domain.ErrTaskPanicked, "queued operation failed"), "panic", fmt.Sprint(r))
		}
	}()
	if op == nil {
		return nil
	}
	return op()
}

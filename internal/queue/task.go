package queue

import (
	"context"
	"fmt"
)

// Runnable is the unit of work executed by the queue. It receives the
// context passed to QueueTask, enriched with the task id.
type Runnable func(ctx context.Context) (any, error)

// Result is the outcome of a queued task: either the runnable's value or the
// error it returned, panicked with, or was dropped with.
type Result struct {
	Value any
	Err   error
}

// Handle is the caller's side of a queued task.
type Handle struct {
	id     string
	typeID string
	done   chan struct{}
	result Result
}

func newHandle(id, typeID string) *Handle {
	return &Handle{id: id, typeID: typeID, done: make(chan struct{})}
}

// ID returns the task id.
func (h *Handle) ID() string { return h.id }

// TypeID returns the rate-limiting group of the task.
func (h *Handle) TypeID() string { return h.typeID }

// Done is closed once the task completed or was dropped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result returns the task result. It is only meaningful after Done is closed.
func (h *Handle) Result() Result {
	select {
	case <-h.done:
		return h.result
	default:
		return Result{}
	}
}

// Wait blocks until the task resolves or ctx is done. Returning because of
// ctx does not cancel the task.
func (h *Handle) Wait(ctx context.Context) Result {
	select {
	case <-h.done:
		return h.result
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

func (h *Handle) resolve(r Result) {
	h.result = r
	close(h.done)
}

type task struct {
	handle *Handle
	ctx    context.Context
	run    Runnable
}

// Do queues fn under typeID, waits for it and returns its typed result.
func Do[T any](ctx context.Context, q *TaskQueue, typeID string, replaceSameType bool, fn func(ctx context.Context) (T, error)) (T, error) {
	h := q.QueueTask(ctx, typeID, func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		return v, err
	}, replaceSameType)

	var zero T
	res := h.Wait(ctx)
	if res.Err != nil {
		return zero, res.Err
	}
	v, ok := res.Value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResultType, res.Value)
	}
	return v, nil
}

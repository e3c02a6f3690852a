package queue

import "errors"

var (
	// ErrTaskReplaced resolves the handle of a pending task that was dropped
	// because a newer task of the same type was queued with replaceSameType.
	ErrTaskReplaced = errors.New("task replaced by a newer task of the same type")
	// ErrQueueStopped resolves handles of tasks that never started because
	// the queue was stopped.
	ErrQueueStopped = errors.New("task queue stopped")
	// ErrTaskPanicked wraps a panic recovered from a runnable.
	ErrTaskPanicked = errors.New("task panicked")
	// ErrUnexpectedResultType is returned by Do when a runnable's value does
	// not have the requested type.
	ErrUnexpectedResultType = errors.New("unexpected task result type")
)

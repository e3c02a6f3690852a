// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, the clock,
// HTTP response writing, HTTP client initialization and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TaskIDCtxKey is the key under which the task queue stores the id of the
// task whose runnable is currently executing.
var TaskIDCtxKey = contextKey("taskID")

// WithTaskID returns a copy of ctx carrying taskID.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, TaskIDCtxKey, taskID)
}

// GetTaskIDFromContext retrieves the task identifier from the context.
//
// Returns the task ID and an ok flag:
//   - ok == true:  value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
//
// Example usage:
//
//	taskID, ok := utils.GetTaskIDFromContext(ctx)
//	if !ok {
//	    // request was issued outside the task queue
//	}
func GetTaskIDFromContext(ctx context.Context) (string, bool) {
	taskID, ok := ctx.Value(TaskIDCtxKey).(string)
	return taskID, ok
}

// Package workers runs the background components of the link daemon as
// one unit.
//
// Every component with a Start/Stop lifecycle (the realtime session, the
// status poll job) is wrapped as a [Worker]. [Workers] starts them in order
// and stops them in reverse, so a component is never stopped before the
// ones started after it.
package workers

import (
	"context"
	"time"
)

// Worker is a background component. Start must not block; Stop waits until
// the component has finished and must be safe to call more than once.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// IntervalJob is a periodic job that takes its interval at start.
type IntervalJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

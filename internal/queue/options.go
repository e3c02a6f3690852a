package queue

import (
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
)

// Option configures a TaskQueue.
type Option func(*TaskQueue)

// WithConcurrentTypes allows one in-flight task per distinct typeID instead
// of strict one-at-a-time FIFO.
func WithConcurrentTypes(enabled bool) Option {
	return func(q *TaskQueue) { q.concurrent = enabled }
}

// WithPollInterval sets how long the scheduler sleeps when nothing is
// eligible to run.
func WithPollInterval(d time.Duration) Option {
	return func(q *TaskQueue) {
		if d > 0 {
			q.pollInterval = d
		}
	}
}

func WithClock(c utils.Clock) Option {
	return func(q *TaskQueue) { q.clock = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(q *TaskQueue) { q.log = l.Component("queue") }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(q *TaskQueue) { q.metrics = m }
}

func WithIDGenerator(g utils.IDGenerator) Option {
	return func(q *TaskQueue) { q.ids = g }
}

package workers

import (
	"context"
	"sync"
	"time"
)

type Workers struct {
	workers []Worker

	mu      sync.Mutex
	started int
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start starts every worker in registration order. Calling Start again
// before Stop is a no-op.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started > 0 {
		return
	}
	for _, worker := range w.workers {
		worker.Start(ctx)
		w.started++
	}
}

// Stop stops the started workers in reverse order.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := w.started - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	w.started = 0
}

type intervalWorker struct {
	job      IntervalJob
	interval time.Duration
}

// Every adapts job to a Worker that starts it with interval.
func Every(job IntervalJob, interval time.Duration) Worker {
	return &intervalWorker{job: job, interval: interval}
}

func (w *intervalWorker) Start(ctx context.Context) {
	w.job.Start(ctx, w.interval)
}

func (w *intervalWorker) Stop() {
	w.job.Stop()
}

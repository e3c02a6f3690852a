// Package queue implements the rate-limited task scheduler every request to
// the platform goes through.
//
// Tasks are grouped by an optional type id. A task is started only while the
// number of tasks started in the trailing minute is below the global cap and
// the number of same-type tasks started in that minute is below the type's
// cap. By default tasks run one at a time in strict FIFO order; with
// [WithConcurrentTypes] one task per distinct type id may be in flight.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/utils"
)

// Window is the trailing period over which run counts are measured.
const Window = time.Minute

const defaultPollInterval = 500 * time.Millisecond

// Config holds the rate caps. Zero or absent caps mean unlimited.
type Config struct {
	TotalPerMinute int
	TypePerMinute  map[string]int
}

type runRecord struct {
	typeID string
	at     time.Time
}

// TaskQueue schedules runnables under the configured rate caps.
type TaskQueue struct {
	cfg          Config
	concurrent   bool
	pollInterval time.Duration
	clock        utils.Clock
	log          *logger.Logger
	metrics      *metrics.Collector
	ids          utils.IDGenerator

	mu       sync.Mutex
	pending  []*task
	history  []runRecord
	inFlight map[string]int
	active   int
	running  bool
	stopped  bool

	wake chan struct{}
}

// New creates a TaskQueue. The scheduler goroutine is started lazily by the
// first QueueTask call and exits once nothing is pending.
func New(cfg Config, opts ...Option) *TaskQueue {
	typeCaps := make(map[string]int, len(cfg.TypePerMinute))
	for k, v := range cfg.TypePerMinute {
		typeCaps[k] = v
	}

	q := &TaskQueue{
		cfg:          Config{TotalPerMinute: cfg.TotalPerMinute, TypePerMinute: typeCaps},
		pollInterval: defaultPollInterval,
		clock:        utils.SystemClock{},
		log:          logger.Nop(),
		ids:          utils.NewUUIDGenerator(),
		inFlight:     make(map[string]int),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// QueueTask enqueues run under typeID and returns its handle. When
// replaceSameType is set and typeID is not empty, the first not-yet-started
// task with the same typeID is dropped and its handle resolves with
// ErrTaskReplaced. A failing or panicking runnable only affects its own
// handle.
func (q *TaskQueue) QueueTask(ctx context.Context, typeID string, run Runnable, replaceSameType bool) *Handle {
	h := newHandle(q.ids.Generate(), typeID)
	t := &task{handle: h, ctx: utils.WithTaskID(ctx, h.id), run: run}

	q.metrics.TaskEnqueued(typeID)

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		h.resolve(Result{Err: ErrQueueStopped})
		return h
	}

	var replaced *task
	if replaceSameType && typeID != "" {
		replaced = q.removePendingLocked(typeID)
	}
	q.pending = append(q.pending, t)
	pending := len(q.pending)
	q.ensureLoopLocked()
	q.mu.Unlock()

	if replaced != nil {
		q.log.Debug().
			Str("type_id", typeID).
			Str("task_id", replaced.handle.id).
			Msg("pending task replaced")
		q.metrics.TaskDropped(typeID)
		replaced.handle.resolve(Result{Err: ErrTaskReplaced})
	}

	q.log.Debug().
		Str("type_id", typeID).
		Str("task_id", h.id).
		Int("pending", pending).
		Msg("task queued")
	q.metrics.SetPending(pending)
	q.signal()

	return h
}

// Pending returns the number of tasks that have not started yet.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop rejects new tasks and resolves all pending tasks with
// ErrQueueStopped. Running tasks are allowed to finish.
func (q *TaskQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	dropped := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, t := range dropped {
		t.handle.resolve(Result{Err: ErrQueueStopped})
	}
	q.metrics.SetPending(0)
	q.signal()
}

func (q *TaskQueue) removePendingLocked(typeID string) *task {
	for i, t := range q.pending {
		if t.handle.typeID == typeID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return t
		}
	}
	return nil
}

func (q *TaskQueue) ensureLoopLocked() {
	if q.running || q.stopped {
		return
	}
	q.running = true
	go q.loop()
}

func (q *TaskQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *TaskQueue) loop() {
	timer := time.NewTimer(q.pollInterval)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if q.stopped || len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		batch := q.selectLocked(q.clock.Now())
		pending := len(q.pending)
		q.mu.Unlock()

		for _, t := range batch {
			q.metrics.TaskStarted(t.handle.typeID)
			q.log.Debug().
				Str("type_id", t.handle.typeID).
				Str("task_id", t.handle.id).
				Msg("task started")
			go q.execute(t)
		}
		if len(batch) > 0 {
			q.metrics.SetPending(pending)
		}

		timer.Reset(q.pollInterval)
		select {
		case <-q.wake:
		case <-timer.C:
		}
	}
}

// selectLocked removes and returns the tasks allowed to start at now,
// recording them in the run history.
func (q *TaskQueue) selectLocked(now time.Time) []*task {
	q.pruneLocked(now)

	if !q.concurrent {
		if q.active > 0 || len(q.pending) == 0 {
			return nil
		}
		head := q.pending[0]
		if !q.allowedLocked(head.handle.typeID) {
			return nil
		}
		q.pending = q.pending[1:]
		q.startLocked(head, now)
		return []*task{head}
	}

	var (
		batch   []*task
		rest    = make([]*task, 0, len(q.pending))
		blocked = make(map[string]bool)
	)
	for _, t := range q.pending {
		typeID := t.handle.typeID
		if blocked[typeID] {
			rest = append(rest, t)
			continue
		}
		blocked[typeID] = true
		if q.inFlight[typeID] > 0 || !q.allowedLocked(typeID) {
			rest = append(rest, t)
			continue
		}
		q.startLocked(t, now)
		batch = append(batch, t)
	}
	q.pending = rest
	return batch
}

func (q *TaskQueue) pruneLocked(now time.Time) {
	cutoff := now.Add(-Window)
	i := 0
	for i < len(q.history) && !q.history[i].at.After(cutoff) {
		i++
	}
	q.history = q.history[i:]
}

func (q *TaskQueue) allowedLocked(typeID string) bool {
	if q.cfg.TotalPerMinute > 0 && len(q.history) >= q.cfg.TotalPerMinute {
		return false
	}
	limit, ok := q.cfg.TypePerMinute[typeID]
	if typeID == "" || !ok || limit <= 0 {
		return true
	}
	count := 0
	for _, r := range q.history {
		if r.typeID == typeID {
			count++
		}
	}
	return count < limit
}

func (q *TaskQueue) startLocked(t *task, now time.Time) {
	q.history = append(q.history, runRecord{typeID: t.handle.typeID, at: now})
	q.inFlight[t.handle.typeID]++
	q.active++
}

func (q *TaskQueue) execute(t *task) {
	start := time.Now()
	value, err := invoke(t)
	elapsed := time.Since(start)

	q.metrics.TaskFinished(t.handle.typeID, elapsed, err != nil)
	if err != nil {
		q.log.Warn().
			Err(err).
			Str("type_id", t.handle.typeID).
			Str("task_id", t.handle.id).
			Dur("duration", elapsed).
			Msg("task failed")
	}

	q.mu.Lock()
	q.active--
	if q.inFlight[t.handle.typeID]--; q.inFlight[t.handle.typeID] <= 0 {
		delete(q.inFlight, t.handle.typeID)
	}
	q.mu.Unlock()

	t.handle.resolve(Result{Value: value, Err: err})
	q.signal()
}

func invoke(t *task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return t.run(t.ctx)
}

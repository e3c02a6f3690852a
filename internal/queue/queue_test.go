package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vrc-link/internal/utils"
)

// fakeClock is a manually advanced utils.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestQueue(cfg Config, opts ...Option) *TaskQueue {
	opts = append([]Option{WithPollInterval(5 * time.Millisecond)}, opts...)
	return New(cfg, opts...)
}

func waitAll(t *testing.T, handles []*Handle) []Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := make([]Result, len(handles))
	for i, h := range handles {
		results[i] = h.Wait(ctx)
		require.NoError(t, ctx.Err(), "handle %d did not resolve", i)
	}
	return results
}

func returning(v any) Runnable {
	return func(context.Context) (any, error) { return v, nil }
}

// ── Basic execution ──────────────────────────────────────────────────────────

func TestQueueTask_ReturnsValue(t *testing.T) {
	q := newTestQueue(Config{})

	res := waitAll(t, []*Handle{q.QueueTask(context.Background(), "A", returning(42), false)})

	require.NoError(t, res[0].Err)
	assert.Equal(t, 42, res[0].Value)
}

func TestQueueTask_ErrorCapturedAndLoopContinues(t *testing.T) {
	q := newTestQueue(Config{})
	boom := errors.New("boom")

	h1 := q.QueueTask(context.Background(), "A", func(context.Context) (any, error) { return nil, boom }, false)
	h2 := q.QueueTask(context.Background(), "A", returning("ok"), false)

	res := waitAll(t, []*Handle{h1, h2})

	assert.ErrorIs(t, res[0].Err, boom)
	require.NoError(t, res[1].Err)
	assert.Equal(t, "ok", res[1].Value)
}

func TestQueueTask_PanicCaptured(t *testing.T) {
	q := newTestQueue(Config{})

	h1 := q.QueueTask(context.Background(), "", func(context.Context) (any, error) { panic("kaboom") }, false)
	h2 := q.QueueTask(context.Background(), "", returning(1), false)

	res := waitAll(t, []*Handle{h1, h2})

	assert.ErrorIs(t, res[0].Err, ErrTaskPanicked)
	assert.Contains(t, res[0].Err.Error(), "kaboom")
	assert.NoError(t, res[1].Err)
}

func TestQueueTask_RunnableSeesTaskID(t *testing.T) {
	q := newTestQueue(Config{})

	h := q.QueueTask(context.Background(), "A", func(ctx context.Context) (any, error) {
		id, _ := utils.GetTaskIDFromContext(ctx)
		return id, nil
	}, false)

	res := waitAll(t, []*Handle{h})
	assert.Equal(t, h.ID(), res[0].Value)
}

func TestDo_Typed(t *testing.T) {
	q := newTestQueue(Config{})

	got, err := Do(context.Background(), q, "LIST_FRIENDS", false, func(context.Context) ([]string, error) {
		return []string{"usr_1", "usr_2"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"usr_1", "usr_2"}, got)
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	q := newTestQueue(Config{TotalPerMinute: 1}, WithClock(newFakeClock()))
	_, err := Do(context.Background(), q, "", false, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = Do(ctx, q, "", false, func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ── Ordering ─────────────────────────────────────────────────────────────────

func TestFIFO_OneAtATimeInOrder(t *testing.T) {
	q := newTestQueue(Config{})

	var (
		mu      sync.Mutex
		order   []int
		running atomic.Int32
		maxSeen atomic.Int32
	)
	handles := make([]*Handle, 0, 10)
	for i := range 10 {
		typeID := []string{"A", "B"}[i%2]
		handles = append(handles, q.QueueTask(context.Background(), typeID, func(context.Context) (any, error) {
			n := running.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			running.Add(-1)
			return nil, nil
		}, false))
	}

	waitAll(t, handles)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestConcurrentTypes_OneInFlightPerType(t *testing.T) {
	q := newTestQueue(Config{}, WithConcurrentTypes(true))

	release := make(chan struct{})
	var startedA, startedB atomic.Int32

	block := func(counter *atomic.Int32) Runnable {
		return func(context.Context) (any, error) {
			counter.Add(1)
			<-release
			return nil, nil
		}
	}

	handles := []*Handle{
		q.QueueTask(context.Background(), "A", block(&startedA), false),
		q.QueueTask(context.Background(), "A", block(&startedA), false),
		q.QueueTask(context.Background(), "B", block(&startedB), false),
	}

	require.Eventually(t, func() bool {
		return startedA.Load() == 1 && startedB.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// the second A waits behind the first one
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), startedA.Load())
	assert.Equal(t, 1, q.Pending())

	close(release)
	waitAll(t, handles)
	assert.Equal(t, int32(2), startedA.Load())
}

// ── Rate caps ────────────────────────────────────────────────────────────────

func TestRateLimit_TwentyTasksCapFifteen(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(Config{
		TotalPerMinute: 15,
		TypePerMinute:  map[string]int{"LIST_FRIENDS": 15},
	}, WithClock(clock))

	var completed atomic.Int32
	handles := make([]*Handle, 0, 20)
	for range 20 {
		handles = append(handles, q.QueueTask(context.Background(), "LIST_FRIENDS", func(context.Context) (any, error) {
			completed.Add(1)
			return nil, nil
		}, false))
	}

	require.Eventually(t, func() bool { return completed.Load() == 15 }, 2*time.Second, 5*time.Millisecond)

	clock.Advance(30 * time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(15), completed.Load())
	assert.Equal(t, 5, q.Pending())

	clock.Advance(31 * time.Second)
	waitAll(t, handles)
	assert.Equal(t, int32(20), completed.Load())
}

func TestRateLimit_GlobalCapAcrossTypes(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(Config{TotalPerMinute: 3}, WithClock(clock), WithConcurrentTypes(true))

	var completed atomic.Int32
	for _, typeID := range []string{"A", "B", "C", "D", "E"} {
		q.QueueTask(context.Background(), typeID, func(context.Context) (any, error) {
			completed.Add(1)
			return nil, nil
		}, false)
	}

	require.Eventually(t, func() bool { return completed.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(3), completed.Load())
}

func TestRateLimit_TypeCapIndependentOfGlobal(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(Config{
		TotalPerMinute: 100,
		TypePerMinute:  map[string]int{"UPDATE_STATUS": 2},
	}, WithClock(clock), WithConcurrentTypes(true))

	var statusRuns, otherRuns atomic.Int32
	for range 4 {
		q.QueueTask(context.Background(), "UPDATE_STATUS", func(context.Context) (any, error) {
			statusRuns.Add(1)
			return nil, nil
		}, false)
		q.QueueTask(context.Background(), "LIST_GROUPS", func(context.Context) (any, error) {
			otherRuns.Add(1)
			return nil, nil
		}, false)
	}

	require.Eventually(t, func() bool { return otherRuns.Load() == 4 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), statusRuns.Load())
}

func TestRateLimit_WindowBoundaryIsExclusive(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(Config{TotalPerMinute: 1}, WithClock(clock))

	var runs atomic.Int32
	run := func(context.Context) (any, error) { runs.Add(1); return nil, nil }

	q.QueueTask(context.Background(), "", run, false)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	h := q.QueueTask(context.Background(), "", run, false)
	clock.Advance(Window - time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	clock.Advance(time.Millisecond)
	waitAll(t, []*Handle{h})
	assert.Equal(t, int32(2), runs.Load())
}

// ── replaceSameType ──────────────────────────────────────────────────────────

func TestReplaceSameType_DropsOnePendingTask(t *testing.T) {
	q := newTestQueue(Config{})

	release := make(chan struct{})
	running := q.QueueTask(context.Background(), "UPDATE_STATUS", func(context.Context) (any, error) {
		<-release
		return "running", nil
	}, false)
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, time.Millisecond)

	stale1 := q.QueueTask(context.Background(), "UPDATE_STATUS", returning("stale1"), false)
	stale2 := q.QueueTask(context.Background(), "UPDATE_STATUS", returning("stale2"), false)
	other := q.QueueTask(context.Background(), "LIST_AVATARS", returning("other"), false)
	fresh := q.QueueTask(context.Background(), "UPDATE_STATUS", returning("fresh"), true)

	res := waitAll(t, []*Handle{stale1})
	assert.ErrorIs(t, res[0].Err, ErrTaskReplaced)
	assert.Equal(t, 3, q.Pending())

	close(release)
	res = waitAll(t, []*Handle{running, stale2, other, fresh})
	assert.Equal(t, "running", res[0].Value)
	assert.Equal(t, "stale2", res[1].Value)
	assert.Equal(t, "other", res[2].Value)
	assert.Equal(t, "fresh", res[3].Value)
}

func TestReplaceSameType_EmptyTypeIDNeverReplaces(t *testing.T) {
	q := newTestQueue(Config{TotalPerMinute: 1}, WithClock(newFakeClock()))

	first := q.QueueTask(context.Background(), "", returning(1), false)
	waitAll(t, []*Handle{first})

	q.QueueTask(context.Background(), "", returning(2), false)
	q.QueueTask(context.Background(), "", returning(3), true)

	assert.Equal(t, 2, q.Pending())
}

// ── Stop ─────────────────────────────────────────────────────────────────────

func TestStop_ResolvesPending(t *testing.T) {
	q := newTestQueue(Config{TotalPerMinute: 1}, WithClock(newFakeClock()))

	first := q.QueueTask(context.Background(), "", returning(1), false)
	waitAll(t, []*Handle{first})
	pending := q.QueueTask(context.Background(), "", returning(2), false)

	q.Stop()

	res := waitAll(t, []*Handle{pending})
	assert.ErrorIs(t, res[0].Err, ErrQueueStopped)

	after := q.QueueTask(context.Background(), "", returning(3), false)
	assert.ErrorIs(t, after.Result().Err, ErrQueueStopped)
}

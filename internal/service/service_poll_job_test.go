// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

// spyPoller считает вызовы PollIfStale.
type spyPoller struct {
	calls atomic.Int64
	err   error
}

func (s *spyPoller) PollIfStale(_ context.Context) (bool, error) {
	s.calls.Add(1)
	return s.err == nil, s.err
}

// ── NewStatusPollJob ─────────────────────────────────────────────────────────

func TestNewStatusPollJob_ReturnsInterface(t *testing.T) {
	job := NewStatusPollJob(&spyPoller{}, logger.Nop())
	require.NotNil(t, job)

	var _ StatusPollJob = job
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestStatusPollJob_Start_Polls(t *testing.T) {
	spy := &spyPoller{}
	job := NewStatusPollJob(spy, logger.Nop())

	// Интервал 10ms, за 55ms должно быть ~5 тиков
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "PollIfStale должен быть вызван несколько раз, вызвано: %d", got)
}

func TestStatusPollJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spyPoller{}
	job := NewStatusPollJob(spy, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, callsAfterStop, spy.calls.Load(), "после Stop новых вызовов быть не должно")
}

func TestStatusPollJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := NewStatusPollJob(&spyPoller{}, logger.Nop())

	assert.NotPanics(t, func() { job.Stop() })
	assert.NotPanics(t, func() { job.Stop() })
}

func TestStatusPollJob_Start_DefaultInterval(t *testing.T) {
	spy := &spyPoller{}
	job := NewStatusPollJob(spy, logger.Nop())

	// interval <= 0 → дефолт 30 секунд, за 20ms вызовов быть не должно
	job.Start(context.Background(), 0)
	time.Sleep(20 * time.Millisecond)
	job.Stop()

	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestStatusPollJob_ContextCancel_StopsJob(t *testing.T) {
	job := NewStatusPollJob(&spyPoller{}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop завис после отмены контекста")
	}
}

func TestStatusPollJob_ErrorDoesNotStopJob(t *testing.T) {
	spy := &spyPoller{err: assert.AnError}
	job := NewStatusPollJob(spy, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, spy.calls.Load(), int64(3))
}

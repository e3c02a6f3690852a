package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

const defaultStatusPollInterval = 30 * time.Second

type statusPollJob struct {
	poller StalenessPoller
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusPollJob creates a statusPollJob that calls poller.PollIfStale on
// a ticker. The job is idle until Start is called.
func NewStatusPollJob(poller StalenessPoller, log *logger.Logger) StatusPollJob {
	return &statusPollJob{poller: poller, logger: log.Component("status_poll")}
}

// Start implements StatusPollJob. It stops any previously running job, then
// launches a background goroutine that checks staleness every interval. If
// interval is zero or negative it defaults to 30 seconds. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *statusPollJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultStatusPollInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				polled, err := j.poller.PollIfStale(jobCtx)
				if err != nil && !errors.Is(err, context.Canceled) {
					j.logger.Warn().Err(err).Msg("status poll failed")
				} else if polled {
					j.logger.Debug().Msg("current user refreshed by poll")
				}
			}
		}
	}()
}

// Stop implements StatusPollJob. It cancels the background goroutine's
// context and blocks until the goroutine has fully exited. Safe to call when
// the job is not running.
func (j *statusPollJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package realtime keeps the push pipeline connected while the user is
// signed in and dispatches the inbound frames.
//
// A [Session] follows session.State.Status: LOGGED_IN opens the websocket,
// LOGGED_OUT closes it. A watchdog re-dials a dropped connection; dial
// attempts are paced by a token bucket. Frames are routed by their type to
// the handlers registered with [Session.Handle]. Handlers run on the read
// goroutine and must not call back into the Session.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/observable"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/models"
)

const (
	defaultWatchdogInterval = 10 * time.Second
	dialTimeout             = 15 * time.Second
	closeTimeout            = time.Second
)

// Handler processes the payload of one frame type.
type Handler func(ctx context.Context, content json.RawMessage) error

// TokenSource supplies the auth cookie value used to open the pipeline.
type TokenSource interface {
	AuthToken(ctx context.Context) string
}

// Session is the push pipeline client.
type Session struct {
	state     *session.State
	tokens    TokenSource
	address   string
	userAgent string

	dialer           *websocket.Dialer
	limiter          *rate.Limiter
	watchdogInterval time.Duration

	notifications *observable.Stream[models.Notification]

	logger  *logger.Logger
	metrics *metrics.Collector

	// last status seen by the subscription; read without the status lock
	loggedIn atomic.Bool

	mu          sync.Mutex
	handlers    map[string]Handler
	conn        *websocket.Conn
	dialing     bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

func WithDialer(d *websocket.Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// WithLimiter replaces the token bucket pacing dial attempts.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) { s.limiter = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Session) { s.metrics = m }
}

// New creates an idle Session. Nothing is dialed before Start.
func New(state *session.State, tokens TokenSource, adapterCfg config.Adapter, appCfg config.App, workersCfg config.Workers, log *logger.Logger, opts ...Option) *Session {
	interval := workersCfg.WatchdogInterval
	if interval <= 0 {
		interval = defaultWatchdogInterval
	}

	s := &Session{
		state:            state,
		tokens:           tokens,
		address:          strings.TrimRight(adapterCfg.PipelineAddress, "/"),
		userAgent:        appCfg.UserAgent,
		dialer:           &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: dialTimeout},
		limiter:          rate.NewLimiter(rate.Every(interval), 2),
		watchdogInterval: interval,
		notifications:    observable.NewStream[models.Notification](),
		logger:           log.Component("realtime"),
		handlers:         make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle registers h for frames of frameType, replacing any previous one.
func (s *Session) Handle(frameType string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[frameType] = h
}

// Notifications streams every notification frame.
func (s *Session) Notifications() *observable.Stream[models.Notification] {
	return s.notifications
}

// Connected reports whether a pipeline connection is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Start follows the auth status and runs the watchdog until ctx is done or
// Stop is called. Calling Start on a running Session is a no-op; a stopped
// Session can be started again.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go s.watchdog(runCtx)

	// the callback runs under the status lock, so dialing happens elsewhere
	unsubscribe := s.state.Status.Subscribe(func(status models.AuthStatus) {
		s.loggedIn.Store(status == models.AuthStatusLoggedIn)
		switch status {
		case models.AuthStatusLoggedIn:
			go s.connect()
		case models.AuthStatusLoggedOut:
			// the close handshake may block; keep it off the status lock
			if conn := s.detach(); conn != nil {
				go s.closeConn(conn)
			}
		}
	})

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Stop closes the connection and waits for the background goroutines.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, unsubscribe := s.cancel, s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	s.disconnect()
	s.wg.Wait()

	s.mu.Lock()
	s.ctx, s.cancel = nil, nil
	s.mu.Unlock()
}

func (s *Session) watchdog(ctx context.Context) {
	defer s.wg.Done()

	t := time.NewTicker(s.watchdogInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.loggedIn.Load() && !s.Connected() {
				s.logger.Debug().Msg("pipeline down, reconnecting")
				s.connect()
			}
		}
	}
}

// connect dials the pipeline unless a connection is open or being opened,
// the session is stopping or the dial budget is spent.
func (s *Session) connect() {
	s.mu.Lock()
	ctx := s.ctx
	if ctx == nil || ctx.Err() != nil || s.conn != nil || s.dialing || !s.loggedIn.Load() {
		s.mu.Unlock()
		return
	}
	if !s.limiter.Allow() {
		s.mu.Unlock()
		s.logger.Debug().Msg("reconnect throttled")
		return
	}
	s.dialing = true
	s.mu.Unlock()

	conn, err := s.dial(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialing = false

	if err != nil {
		s.logger.Warn().Err(err).Msg("pipeline dial failed")
		return
	}
	// logged out or stopped while dialing
	if ctx.Err() != nil || !s.loggedIn.Load() {
		_ = conn.Close()
		return
	}

	s.conn = conn
	s.wg.Add(1)
	go s.readLoop(ctx, conn)
	s.logger.Info().Msg("pipeline connected")
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	token := s.tokens.AuthToken(ctx)
	if token == "" {
		return nil, fmt.Errorf("no auth token")
	}

	s.metrics.RealtimeConnect()

	target := s.address + "/?authToken=" + url.QueryEscape(token)
	header := http.Header{}
	header.Set("User-Agent", s.userAgent)

	conn, resp, err := s.dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial pipeline: %w", err)
	}
	return conn, nil
}

func (s *Session) disconnect() {
	if conn := s.detach(); conn != nil {
		s.closeConn(conn)
	}
}

// detach takes the open connection out of the Session so Connected reports
// false at once.
func (s *Session) detach() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn := s.conn
	s.conn = nil
	return conn
}

func (s *Session) closeConn(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeTimeout))
	_ = conn.Close()
	s.logger.Info().Msg("pipeline closed")
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer s.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			dropped := s.conn == conn
			if dropped {
				s.conn = nil
			}
			s.mu.Unlock()

			if dropped {
				_ = conn.Close()
				s.logger.Warn().Err(err).Msg("pipeline connection lost")
			}
			return
		}

		s.dispatch(ctx, data)
	}
}

func (s *Session) dispatch(ctx context.Context, data []byte) {
	var frame models.PipelineFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("malformed pipeline frame")
		return
	}
	s.metrics.RealtimeFrame(frame.Type)

	s.mu.Lock()
	handler := s.handlers[frame.Type]
	s.mu.Unlock()

	isNotification := frame.Type == models.PipelineNotification
	if handler == nil && !isNotification {
		return
	}

	payload, err := frame.Payload()
	if err != nil {
		s.logger.Warn().Err(err).Str("frame_type", frame.Type).Msg("malformed frame content")
		return
	}

	if isNotification {
		var n models.Notification
		if err = json.Unmarshal(payload, &n); err != nil {
			s.logger.Warn().Err(err).Msg("malformed notification")
		} else {
			s.notifications.Publish(n)
		}
	}

	if handler == nil {
		return
	}
	if err = handler(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("frame_type", frame.Type).Msg("frame handler failed")
	}
}

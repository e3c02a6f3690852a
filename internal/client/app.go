package client

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/handler"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/realtime"
	"github.com/MKhiriev/go-vrc-link/internal/server"
	"github.com/MKhiriev/go-vrc-link/internal/service"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/workers"
	"github.com/MKhiriev/go-vrc-link/models"
)

type App struct {
	buildInfo models.AppBuildInfo
	version   string

	state    *session.State
	queue    *queue.TaskQueue
	services *service.Services
	realtime *realtime.Session
	workers  *workers.Workers
	server   server.Server

	logger *logger.Logger
}

// NewApp wires the background components together. The diagnostics server
// is only created when cfg.Server.DiagnosticsAddress is set.
func NewApp(
	cfg *config.StructuredConfig,
	buildInfo models.AppBuildInfo,
	state *session.State,
	q *queue.TaskQueue,
	services *service.Services,
	rt *realtime.Session,
	m *metrics.Collector,
	log *logger.Logger,
) (*App, error) {
	app := &App{
		buildInfo: buildInfo,
		version:   cfg.App.Version,
		state:     state,
		queue:     q,
		services:  services,
		realtime:  rt,
		logger:    log,
	}

	rt.Handle(models.PipelineUserUpdate, services.AuthService.HandleUserUpdate)
	rt.Handle(models.PipelineGroupMemberUpdated, services.APIService.HandleGroupMemberUpdate)

	app.workers = workers.New(
		rt,
		workers.Every(services.StatusPollJob, cfg.Workers.StatusPollInterval),
	)

	if cfg.Server.DiagnosticsAddress != "" {
		handlers, err := handler.NewHandlers(app, m.Handler(), cfg.Server, log)
		if err != nil {
			return nil, err
		}
		if app.server, err = server.NewServer(handlers, cfg.Server, log); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run restores the session, starts the background components and blocks
// until SIGTERM, SIGINT or SIGQUIT.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	a.logger.Info().Str("build", a.buildInfo.String()).Msg("starting link daemon")

	unsubscribe := a.realtime.Notifications().Subscribe(func(n models.Notification) {
		a.logger.Info().
			Str("notification_id", n.ID).
			Str("type", n.Type).
			Str("sender_user_id", n.SenderUserID).
			Msg("notification received")
	})
	defer unsubscribe()

	// workers follow the auth status, so they start before the session does
	a.workers.Start(ctx)
	if a.server != nil {
		a.server.RunServer()
	}

	a.restoreSession(ctx)

	<-ctx.Done()
	a.logger.Info().Msg("shutting down")

	if a.server != nil {
		a.server.Shutdown()
	}
	a.workers.Stop()
	a.queue.Stop()

	return nil
}

// restoreSession resumes the stored session and falls back to the
// remembered credentials. Failures leave the daemon LOGGED_OUT.
func (a *App) restoreSession(ctx context.Context) {
	auth := a.services.AuthService

	if err := auth.Init(ctx); err != nil {
		a.logger.Warn().Err(err).Str("user_message", service.UserMessage(err)).Msg("session restore failed")
	}
	if a.state.IsLoggedIn() {
		return
	}

	err := auth.LoginWithRemembered(ctx)
	var twoFactor *service.TwoFactorRequiredError
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoRememberedCredentials), errors.Is(err, session.ErrNoMasterKey):
		a.logger.Info().Msg("no remembered login, staying logged out")
	case errors.As(err, &twoFactor):
		a.logger.Warn().Any("methods", twoFactor.Methods).Msg("remembered login needs a second factor")
	default:
		a.logger.Warn().Err(err).Str("user_message", service.UserMessage(err)).Msg("session restore failed")
	}
}

// Health implements the diagnostics health source.
func (a *App) Health() models.Health {
	version := a.version
	if version == "" {
		version = a.buildInfo.String()
	}

	return models.Health{
		Status:            "ok",
		AuthStatus:        a.state.Status.Get(),
		RealtimeConnected: a.realtime.Connected(),
		PendingTasks:      a.queue.Pending(),
		Version:           version,
	}
}

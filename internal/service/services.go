package service

import (
	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/store"
)

type Services struct {
	APIService    APIService
	AuthService   AuthService
	StatusPollJob StatusPollJob
}

func NewServices(
	platform adapter.PlatformAdapter,
	q *queue.TaskQueue,
	state *session.State,
	credentials *session.CredentialStore,
	kv store.KeyValueStore,
	cfg config.StructuredConfig,
	logger *logger.Logger,
	m *metrics.Collector,
) *Services {
	apiSvc := NewAPIService(platform, q, state, kv, cfg.Adapter, logger, m)
	authSvc := NewAuthService(platform, q, state, credentials, apiSvc, cfg.Workers, logger)

	return &Services{
		APIService:    apiSvc,
		AuthService:   authSvc,
		StatusPollJob: NewStatusPollJob(authSvc, logger),
	}
}

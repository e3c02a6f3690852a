package server

import (
	"sync"

	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/handler"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger

	runOnce sync.Once
	started bool
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.DiagnosticsAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	s.runOnce.Do(func() {
		s.started = true
		s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching diagnostics HTTP server")
		go s.httpServer.RunServer()
	})
}

// Shutdown stops the listener and waits until RunServer has returned. It is
// a no-op for a server that was never started.
func (s *server) Shutdown() {
	s.runOnce.Do(func() {})
	if !s.started {
		return
	}

	s.httpServer.Shutdown()
	<-s.httpServer.done
	s.logger.Info().Msg("server Shutdown gracefully")
}

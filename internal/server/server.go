package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/handler"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

type server struct {
	httpServer *httpServer
	onShutdown []func()
	logger     *logger.Logger
}

// NewServer builds the HTTP server. Each onShutdown hook runs after the
// listener has drained, in order; the caller passes resource closers such
// as the database pool there.
func NewServer(handlers *handler.Handlers, cfg *config.ServerConfig, logger *logger.Logger, onShutdown ...func()) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil {
		return nil, errNoSyncHandler
	}
	if cfg == nil || cfg.HTTPAddress == "" {
		return nil, errNoListenAddress
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		onShutdown: onShutdown,
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	s.run(ctx)
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()

	for _, hook := range s.onShutdown {
		hook()
	}
}

// run serves until ctx is cancelled or the listener fails, then shuts
// down.
func (s *server) run(ctx context.Context) {
	failed := make(chan error, 1)
	go func() {
		failed <- s.httpServer.RunServer()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("stop signal received")
	case err := <-failed:
		if err != nil {
			s.logger.Err(err).Str("func", "server.run").Msg("HTTP server stopped unexpectedly")
		}
	}

	s.Shutdown()
	s.logger.Info().Msg("server Shutdown gracefully")
}

package http

import (
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
)

type Handler struct {
	services *service.Services

	// hasher verifies push integrity hashes; nil disables the check.
	hasher  *utils.Hasher
	limiter *rateLimiter
	metrics *metrics

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg *config.ServerConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		hasher:   utils.NewHasher(cfg.HashKey),
		limiter:  newRateLimiter(cfg.RateLimit, cfg.RateBurst),
		metrics:  newMetrics(),
		logger:   logger,
	}
}

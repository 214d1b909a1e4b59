package config

import (
	"fmt"
	"time"
)

// Server defaults applied when no source sets a value.
const (
	DefaultServerAddress = "localhost:8080"
	DefaultServerTimeout = 30 * time.Second
	DefaultRateLimit     = 10
	DefaultRateBurst     = 20
	DefaultTokenIssuer   = "go-trip-keeper"
)

// ServerConfig is the remote store configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	// HTTPAddress is the listen address.
	HTTPAddress string
	// RequestTimeout bounds a single inbound request.
	RequestTimeout time.Duration
	// DSN is the PostgreSQL connection string. Empty selects the in-memory
	// repository.
	DSN string
	// TokenSignKey verifies bearer tokens.
	TokenSignKey string
	// TokenIssuer is the required "iss" claim.
	TokenIssuer string
	// HashKey verifies the push integrity hash. Empty disables the check.
	HashKey string
	// RateLimit and RateBurst configure the per-user limiter. A negative
	// RateLimit disables limiting.
	RateLimit float64
	RateBurst int
}

// GetServerConfig builds and validates the remote store configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := newServerConfig(cfg)
	if err := serverCfg.validate(); err != nil {
		return nil, err
	}

	return serverCfg, nil
}

func newServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		HTTPAddress:    withDefault(cfg.Server.HTTPAddress, DefaultServerAddress),
		RequestTimeout: withDefault(cfg.Server.RequestTimeout, DefaultServerTimeout),
		DSN:            cfg.Storage.DB.DSN,
		TokenSignKey:   cfg.App.TokenSignKey,
		TokenIssuer:    withDefault(cfg.App.TokenIssuer, DefaultTokenIssuer),
		HashKey:        cfg.App.HashKey,
		RateLimit:      withDefault(cfg.Server.RateLimit, DefaultRateLimit),
		RateBurst:      withDefault(cfg.Server.RateBurst, DefaultRateBurst),
	}
}

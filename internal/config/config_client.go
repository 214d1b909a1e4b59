package config

import (
	"fmt"
	"strings"
	"time"
)

// Client defaults applied when no source sets a value.
const (
	DefaultClientDSN          = "trip-keeper.db"
	DefaultRemoteAddress      = "http://localhost:8080"
	DefaultRequestTimeout     = 15 * time.Second
	DefaultSyncDebounce       = 2 * time.Second
	DefaultProbeInterval      = 10 * time.Second
	DefaultBackgroundInterval = 15 * time.Minute
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Token is the bearer token attached to every remote call.
	Token string
	// HashKey is the HMAC key used to sign pushed snapshots.
	HashKey string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote store base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file the local store lives in.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	SyncDebounce       time.Duration
	ProbeInterval      time.Duration
	BackgroundInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains the remote address and timeout.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// LogFilePath is the rotated client log file. Empty selects the default
	// location next to the executable.
	LogFilePath string
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, applies defaults, and validates the
// resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	if err := clientCfg.validate(); err != nil {
		return nil, err
	}

	return clientCfg, nil
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{
			Token:   cfg.App.Token,
			HashKey: cfg.App.HashKey,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    normalizeAddress(withDefault(cfg.Adapter.HTTPAddress, DefaultRemoteAddress)),
			RequestTimeout: withDefault(cfg.Adapter.RequestTimeout, DefaultRequestTimeout),
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: withDefault(cfg.Storage.DB.DSN, DefaultClientDSN)},
		},
		Workers: ClientWorkers{
			SyncDebounce:       withDefault(cfg.Workers.SyncDebounce, DefaultSyncDebounce),
			ProbeInterval:      withDefault(cfg.Workers.ProbeInterval, DefaultProbeInterval),
			BackgroundInterval: withDefault(cfg.Workers.BackgroundInterval, DefaultBackgroundInterval),
		},
		LogFilePath: cfg.Log.FilePath,
	}

	return clientCfg
}

// normalizeAddress prefixes a bare host:port with http://.
func normalizeAddress(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	return "http://" + strings.TrimRight(addr, "/")
}

func withDefault[T comparable](value, def T) T {
	var zero T
	if value == zero {
		return def
	}
	return value
}

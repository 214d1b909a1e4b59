// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client and the remote store server. It is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds credentials and integrity keys.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings. The client uses a SQLite file,
	// the server a PostgreSQL DSN.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the remote store listener settings.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client's view of the remote store.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds timings of the debounce, connectivity probe and
	// background delivery workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds logging output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds credentials and integrity keys.
type App struct {
	// Token is the bearer token the client presents to the remote store.
	// Tokens are issued elsewhere; the client only stores and sends it.
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// TokenSignKey is the secret the server verifies bearer tokens with.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of bearer tokens.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// HashKey is the HMAC key for the push integrity hash. When empty, no
	// hash is attached or checked.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`
}

// Storage groups database settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds a database connection string.
type DB struct {
	// DSN is a SQLite file path on the client and a PostgreSQL connection
	// string on the server. An empty server DSN selects the in-memory store.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds the remote store listener settings.
type Server struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimit is the sustained number of sync requests per second allowed
	// for a single user. Zero disables rate limiting.
	// Env: SERVER_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the burst size of the per-user rate limiter.
	// Env: SERVER_RATE_BURST
	RateBurst int `env:"RATE_BURST"`
}

// Adapter holds the client's view of the remote store.
type Adapter struct {
	// HTTPAddress is the base URL (or host:port) of the remote store.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound remote call. Timeouts are
	// treated as retryable connectivity failures.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds timings of background workers.
type Workers struct {
	// SyncDebounce is the quiet period before a routine push is sent.
	// Env: WORKERS_SYNC_DEBOUNCE
	SyncDebounce time.Duration `env:"SYNC_DEBOUNCE"`

	// ProbeInterval is how often the connectivity prober pings the remote.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// BackgroundInterval is the period requested from the background
	// delivery scheduler.
	// Env: WORKERS_BACKGROUND_INTERVAL
	BackgroundInterval time.Duration `env:"BACKGROUND_INTERVAL"`
}

// Log holds logging output settings.
type Log struct {
	// FilePath is where the client writes its rotated log file.
	// Env: LOG_FILE
	FilePath string `env:"FILE"`
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources in the following priority order (last source wins for
// non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

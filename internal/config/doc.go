// Package config provides configuration loading, merging, and validation
// facilities for the go-trip-keeper client and remote store.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetClientConfig] for the local-first client and
// [GetServerConfig] for the remote store. Both start from
// [GetStructuredConfig] and apply role-specific defaults.
package config

// Package http implements the remote store's HTTP transport.
//
// It exposes route wiring, the sync handlers and the middleware in front
// of them. Authentication, per-user rate limiting, request tracing, access
// logging, metrics, compression and the push integrity check are handled
// here before requests reach the service layer.
package http

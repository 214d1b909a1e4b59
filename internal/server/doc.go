// Package server runs the remote store's HTTP server.
//
// It covers the server lifecycle: startup, signal handling and graceful
// shutdown bounded by a timeout.
package server

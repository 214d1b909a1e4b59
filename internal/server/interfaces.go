package server

// Server defines the lifecycle of the remote store's transport.
//
// RunServer blocks until shutdown is requested or the listener fails;
// Shutdown drains in-flight requests.
type Server interface {
	// RunServer starts serving requests and blocks until the server stops.
	RunServer()

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}

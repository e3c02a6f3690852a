package server

// Server defines the lifecycle contract of the diagnostics listener.
type Server interface {
	// RunServer starts serving in the background and returns immediately.
	RunServer()

	// Shutdown gracefully stops the server and waits for in-flight requests.
	Shutdown()
}

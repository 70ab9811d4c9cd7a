package server

// Server defines the lifecycle of the sync server.
type Server interface {
	// RunServer serves requests and runs the workers until a stop signal
	// arrives or one of them fails.
	RunServer() error

	// Shutdown stops the listener.
	Shutdown()
}

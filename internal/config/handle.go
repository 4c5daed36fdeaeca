package config

// Handle is the narrow view of a running backend that the host's shutdown
// path needs. Implement this to plug custom process handles into the
// lifecycle bridge for testing or alternative launchers.
//
// The default implementation is process.Child.
type Handle interface {
	// Kill asks the OS to terminate the backend without waiting for it.
	// It must be safe to call concurrently and more than once.
	Kill() error

	// PID returns the OS process ID, or -1 if the backend never started.
	PID() int

	// Done is closed once the backend's exit has been observed.
	Done() <-chan struct{}
}

package backendshell

import "github.com/wagiedev/backendshell-go/internal/errors"

// Re-export error types from internal package

// SpawnError indicates the backend could not be found or started.
type SpawnError = errors.SpawnError

// ReadError indicates a backend output stream failed mid-read.
type ReadError = errors.ReadError

// WaitError indicates the OS could not report the backend's exit status.
// It arrives as the Err of the lifecycle line.
type WaitError = errors.WaitError

// TerminationError indicates the kill signal could not be delivered.
type TerminationError = errors.TerminationError

// BackendShellError is the base interface for all backend shell errors.
type BackendShellError = errors.BackendShellError

// Re-export sentinel errors from internal package.
var (
	// ErrNoCommand indicates Start was called without an executable.
	ErrNoCommand = errors.ErrNoCommand

	// ErrNotStarted indicates the backend process has not been started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrAlreadyStarted indicates a supervisor was started twice.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrAlreadyExited indicates the backend already terminated.
	ErrAlreadyExited = errors.ErrAlreadyExited
)

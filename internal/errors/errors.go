package errors

import (
	"errors"
	"fmt"
	"strings"
)

// BackendShellError is the base interface for all backend shell errors.
type BackendShellError interface {
	error
	IsBackendShellError() bool
}

// Compile-time verification that all error types implement BackendShellError.
var (
	_ BackendShellError = (*SpawnError)(nil)
	_ BackendShellError = (*ReadError)(nil)
	_ BackendShellError = (*WaitError)(nil)
	_ BackendShellError = (*TerminationError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNoCommand indicates Start was called without an executable.
	ErrNoCommand = errors.New("no backend command configured")

	// ErrNotStarted indicates the backend process has not been started.
	ErrNotStarted = errors.New("backend not started")

	// ErrAlreadyStarted indicates Start was called twice on one supervisor.
	// Supervisors are single-use, create a new one for every backend run.
	ErrAlreadyStarted = errors.New("backend already started")

	// ErrAlreadyExited indicates the backend already terminated. Terminate
	// treats it as success.
	ErrAlreadyExited = errors.New("backend already exited")
)

// SpawnError indicates the backend process could not be created, either
// because the executable was not found or the OS refused to start it.
type SpawnError struct {
	Path          string
	SearchedPaths []string
	Err           error
}

func (e *SpawnError) Error() string {
	if len(e.SearchedPaths) > 0 && e.Err == nil {
		return fmt.Sprintf("backend executable %q not found in: [%s]",
			e.Path, strings.Join(e.SearchedPaths, " "))
	}

	return fmt.Sprintf("failed to spawn backend %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsBackendShellError implements BackendShellError.
func (e *SpawnError) IsBackendShellError() bool { return true }

// ReadError indicates a backend output stream failed mid-read. The reader
// for that stream stops as if it had reached end of stream.
type ReadError struct {
	Origin string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read backend %s: %v", e.Origin, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsBackendShellError implements BackendShellError.
func (e *ReadError) IsBackendShellError() bool { return true }

// WaitError indicates the OS failed to report the backend's exit status.
type WaitError struct {
	PID int
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for backend (pid %d): %v", e.PID, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

// IsBackendShellError implements BackendShellError.
func (e *WaitError) IsBackendShellError() bool { return true }

// TerminationError indicates the kill signal could not be delivered.
type TerminationError struct {
	PID int
	Err error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("terminate backend (pid %d): %v", e.PID, e.Err)
}

func (e *TerminationError) Unwrap() error {
	return e.Err
}

// IsBackendShellError implements BackendShellError.
func (e *TerminationError) IsBackendShellError() bool { return true }

package message

import (
	"fmt"
	"time"
)

// Origin identifies where an OutputLine came from.
type Origin string

const (
	// OriginStdout marks a line read from the backend's standard output.
	OriginStdout Origin = "stdout"
	// OriginStderr marks a line read from the backend's standard error.
	OriginStderr Origin = "stderr"
	// OriginLifecycle marks a synthetic line reporting the backend's exit.
	OriginLifecycle Origin = "lifecycle"
)

// String implements fmt.Stringer.
func (o Origin) String() string {
	return string(o)
}

// OutputLine is one unit of text forwarded from a supervised backend.
//
// Seq orders lines within a single Origin only. Lines from different origins
// are read concurrently and carry no global order.
type OutputLine struct {
	// ProcessID is the supervisor-assigned identifier of the backend run.
	ProcessID string
	Origin    Origin
	Text      string
	// Seq is the 1-based ordinal of the line within its origin.
	Seq  uint64
	Time time.Time

	// Exit is set on the lifecycle line reporting a completed wait.
	Exit *ExitStatus
	// Err is set on the lifecycle line reporting a failed wait.
	Err error
}

// IsLifecycle reports whether the line was synthesized by the supervisor.
func (l OutputLine) IsLifecycle() bool {
	return l.Origin == OriginLifecycle
}

// String renders the line with its origin prefix.
func (l OutputLine) String() string {
	return fmt.Sprintf("[%s] %s", l.Origin, l.Text)
}

// ExitStatus describes how a backend process terminated.
type ExitStatus struct {
	// Code is the exit code, or -1 when the process was terminated by a signal.
	Code int
	// Signaled is true when a signal ended the process.
	Signaled bool
	// Signal names the terminating signal (for example "SIGKILL").
	Signal string
	// Killed is true when the kill was requested through Terminate.
	Killed  bool
	Runtime time.Duration
}

// Success reports whether the process exited on its own with code 0.
func (s ExitStatus) Success() bool {
	return !s.Signaled && s.Code == 0
}

// String describes the exit the way it appears in lifecycle lines.
func (s ExitStatus) String() string {
	if s.Signaled {
		return "terminated by signal " + s.Signal
	}

	return fmt.Sprintf("exited with code %d", s.Code)
}

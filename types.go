package backendshell

import (
	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/message"
	"github.com/wagiedev/backendshell-go/internal/process"
)

// Command describes the backend to launch: an executable, its arguments and
// the working directory its entry point is resolved against.
type Command = config.Command

// OutputLine is one line of backend output, or the final lifecycle line.
type OutputLine = message.OutputLine

// Origin identifies where an OutputLine came from.
type Origin = message.Origin

// ExitStatus describes how a backend process terminated.
type ExitStatus = message.ExitStatus

// Re-export origin constants.
const (
	OriginStdout    = message.OriginStdout
	OriginStderr    = message.OriginStderr
	OriginLifecycle = message.OriginLifecycle
)

// State is the state of a supervised backend process.
type State = process.State

// Re-export process states.
const (
	StateNotStarted  = process.StateNotStarted
	StateRunning     = process.StateRunning
	StateExited      = process.StateExited
	StateKilled      = process.StateKilled
	StateSpawnFailed = process.StateSpawnFailed
)

// ParseOrigins maps stream names ("stdout", "err", "all", ...) to origins,
// for use with WithForward.
func ParseOrigins(names ...string) ([]Origin, error) {
	return config.ParseOrigins(names)
}

package backendshell

import (
	"log/slog"

	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/lifecycle"
)

// Handle is the narrow view of a running backend that shutdown code needs.
// Implement this to drive the lifecycle bridge with custom handles in tests
// or alternative launchers.
//
// The default implementation is *Process.
type Handle = config.Handle

// Bridge ties backends to the host's lifetime. Track each backend, then
// call CloseRequested from the window-close hook, or let NotifySignals do
// it for a headless host.
type Bridge = lifecycle.Bridge

// NewBridge creates a bridge with no tracked backends.
func NewBridge(log *slog.Logger) *Bridge {
	return lifecycle.NewBridge(log)
}

// Terminate asks the OS to kill the backend behind h and returns without
// waiting. A backend that already exited is a successful no-op; other
// failures are *TerminationError.
func Terminate(h Handle) error {
	return lifecycle.Terminate(h, nil)
}

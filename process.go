package backendshell

import (
	"context"
	"log/slog"

	"github.com/wagiedev/backendshell-go/internal/lifecycle"
	"github.com/wagiedev/backendshell-go/internal/process"
	"github.com/wagiedev/backendshell-go/internal/subprocess"
)

// Process is the host's handle to one running backend.
//
// Lifecycle: a Process is single-use. Once it has exited, call Start again
// for a new one.
//
// Example usage:
//
//	lines, proc, err := backendshell.Start(ctx, backendshell.Command{
//	    Path: "python",
//	    Args: []string{"../run_server.py"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	window.OnClose(func() { _ = proc.Terminate() })
//
//	for line := range lines {
//	    fmt.Println(line)
//	}
type Process struct {
	log   *slog.Logger
	sup   *subprocess.Supervisor
	child *process.Child
}

// Compile-time check that *Process implements Handle.
var _ Handle = (*Process)(nil)

// ID returns the identifier stamped on every OutputLine of this run. The
// backend sees it as BACKENDSHELL_PROCESS_ID.
func (p *Process) ID() string {
	return p.sup.ID()
}

// PID returns the OS process ID.
func (p *Process) PID() int {
	return p.child.PID()
}

// State returns the current process state.
func (p *Process) State() State {
	return p.child.State()
}

// ExitStatus returns how the backend ended, once it has.
func (p *Process) ExitStatus() (ExitStatus, bool) {
	return p.child.ExitStatus()
}

// Done returns a channel that is closed once the backend's exit has been
// observed. Output may still be in flight on the delivery channel.
func (p *Process) Done() <-chan struct{} {
	return p.child.Done()
}

// Finished returns a channel that is closed once the lifecycle line has been
// queued and nothing more will be delivered.
func (p *Process) Finished() <-chan struct{} {
	return p.sup.Finished()
}

// Kill sends a kill signal without waiting. It reports ErrAlreadyExited
// after the exit was observed; prefer Terminate, which treats that as
// success.
func (p *Process) Kill() error {
	return p.child.Kill()
}

// Terminate is the window-close operation: it asks the OS to kill the
// backend and returns without waiting for the exit. Calling it again, or
// after the backend exited on its own, is a no-op returning nil.
func (p *Process) Terminate() error {
	return lifecycle.Terminate(p, p.log)
}

// Close terminates the backend and waits until delivery has finished or
// ctx ends. Lines still queued remain readable from the delivery channel.
func (p *Process) Close(ctx context.Context) error {
	return p.sup.Close(ctx)
}

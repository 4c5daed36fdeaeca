// Package process wraps a backend's exec.Cmd in a handle that can be waited
// on by the supervisor and killed by the host at the same time.
//
// The handle exposes only the operations that need coordination: Start, Wait
// and Kill. One mutex serializes Kill with the state transition that follows
// a completed Wait, so a kill that races the backend's own exit is reported
// as ErrAlreadyExited rather than as a platform error. Wait itself blocks
// outside the mutex; holding it there would make Kill wait for the backend
// to exit on its own.
package process

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/wagiedev/backendshell-go/internal/errors"
	"github.com/wagiedev/backendshell-go/internal/message"
)

// State represents the state of a supervised process.
type State int

const (
	// StateNotStarted indicates the process has been created but not started.
	StateNotStarted State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process exited on its own.
	StateExited
	// StateKilled indicates the process was terminated by a signal.
	StateKilled
	// StateSpawnFailed indicates the OS refused to create the process.
	StateSpawnFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	case StateSpawnFailed:
		return "spawn_failed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateExited || s == StateKilled || s == StateSpawnFailed
}

// Child is the shared handle to one backend process.
type Child struct {
	// ID is the supervisor-assigned identifier of this run.
	ID string

	log *slog.Logger
	cmd *exec.Cmd

	mu            sync.Mutex
	state         State
	killRequested bool
	pid           int
	started       time.Time
	exit          *message.ExitStatus
	waitErr       error

	waitCmd  func(*exec.Cmd) error
	waitOnce sync.Once
	done     chan struct{}
}

// New wraps cmd, which must not have been started yet.
func New(id string, cmd *exec.Cmd, log *slog.Logger) *Child {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Child{
		ID:      id,
		log:     log.With("component", "process", "process_id", id),
		cmd:     cmd,
		pid:     -1,
		waitCmd: (*exec.Cmd).Wait,
		done:    make(chan struct{}),
	}
}

// Start starts the process. On failure the child moves to StateSpawnFailed
// and the OS error is returned unwrapped for the caller to classify.
func (c *Child) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNotStarted {
		return errors.ErrAlreadyStarted
	}

	if err := c.cmd.Start(); err != nil {
		c.state = StateSpawnFailed
		c.log.Error("Failed to start backend process", "path", c.cmd.Path, "error", err)

		return err
	}

	c.state = StateRunning
	c.pid = c.cmd.Process.Pid
	c.started = time.Now()
	c.log.Info("Backend process started", "pid", c.pid)

	return nil
}

// Wait blocks until the process terminates and returns its exit status.
//
// Only the first call waits on the OS; later calls return the same result.
// A non-nil error is a *errors.WaitError, or ErrNotStarted when the process
// never ran.
func (c *Child) Wait() (message.ExitStatus, error) {
	c.waitOnce.Do(c.wait)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exit == nil {
		return message.ExitStatus{}, c.waitErr
	}

	return *c.exit, c.waitErr
}

func (c *Child) wait() {
	defer close(c.done)

	c.mu.Lock()

	if c.state != StateRunning {
		c.waitErr = errors.ErrNotStarted
		c.mu.Unlock()

		return
	}

	cmd := c.cmd
	c.mu.Unlock()

	err := c.waitCmd(cmd)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cmd.ProcessState == nil {
		if err == nil {
			err = stderrors.New("no process state")
		}

		// The OS could not tell us how the process ended, but it is no longer
		// ours to manage.
		c.state = StateExited
		c.waitErr = &errors.WaitError{PID: c.pid, Err: err}
		c.log.Error("Failed to wait for backend process", "pid", c.pid, "error", err)

		return
	}

	if _, isExit := stderrors.AsType[*exec.ExitError](err); err != nil && !isExit {
		c.log.Warn("Wait reported an error after backend exit", "pid", c.pid, "error", err)
	}

	status := message.ExitStatus{
		Code:    cmd.ProcessState.ExitCode(),
		Killed:  c.killRequested,
		Runtime: time.Since(c.started),
	}

	status.Signaled, status.Signal = signalInfo(cmd.ProcessState, c.killRequested)
	if status.Signaled {
		status.Code = -1
		c.state = StateKilled
	} else {
		c.state = StateExited
	}

	c.exit = &status
	c.log.Info("Backend process terminated", "pid", c.pid, "status", status.String())
}

// Kill sends SIGKILL to the process without waiting for it to exit.
//
// It returns nil when the signal was sent or had already been sent,
// ErrAlreadyExited when the process has terminated, ErrNotStarted when it
// never ran, and *errors.TerminationError when the OS refused the signal.
func (c *Child) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateNotStarted, StateSpawnFailed:
		return errors.ErrNotStarted
	case StateExited, StateKilled:
		return errors.ErrAlreadyExited
	}

	if c.killRequested {
		c.log.Debug("Kill already requested", "pid", c.pid)

		return nil
	}

	c.log.Debug("Killing backend process", "pid", c.pid)

	if err := c.cmd.Process.Kill(); err != nil {
		if stderrors.Is(err, os.ErrProcessDone) {
			return errors.ErrAlreadyExited
		}

		return &errors.TerminationError{PID: c.pid, Err: err}
	}

	c.killRequested = true

	return nil
}

// State returns the current process state.
func (c *Child) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// PID returns the OS process ID, or -1 if the process never started.
func (c *Child) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pid
}

// KillRequested reports whether Kill has delivered a signal.
func (c *Child) KillRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.killRequested
}

// Done returns a channel that is closed once Wait has observed termination.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// ExitStatus returns the exit status once the process has been waited on.
func (c *Child) ExitStatus() (message.ExitStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exit == nil {
		return message.ExitStatus{}, false
	}

	return *c.exit, true
}

// Runtime returns how long the process has been running, or its total run
// time once it has terminated.
func (c *Child) Runtime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exit != nil {
		return c.exit.Runtime
	}

	if c.started.IsZero() {
		return 0
	}

	return time.Since(c.started)
}

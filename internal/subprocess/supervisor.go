package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/delivery"
	"github.com/wagiedev/backendshell-go/internal/errors"
	"github.com/wagiedev/backendshell-go/internal/launch"
	"github.com/wagiedev/backendshell-go/internal/message"
	"github.com/wagiedev/backendshell-go/internal/multiplex"
	"github.com/wagiedev/backendshell-go/internal/process"
)

// Supervisor runs one backend process. It is single-use: create a new one
// for every run.
type Supervisor struct {
	log     *slog.Logger
	id      string
	command config.Command
	options *config.Options

	lines *delivery.Channel
	child *process.Child
	mux   *multiplex.Multiplexer

	// Read ends of the output pipes. The supervisor owns them, so exec.Cmd
	// never closes a pipe under a running reader.
	stdout *os.File
	stderr *os.File

	mu       sync.Mutex
	started  bool
	finished chan struct{}
}

// New creates a supervisor for command. Nothing is started until Start.
func New(log *slog.Logger, command config.Command, options *config.Options) *Supervisor {
	if options == nil {
		options = &config.Options{}
	}

	if log == nil {
		log = options.Logger
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	id := ulid.Make().String()

	return &Supervisor{
		log:      log.With("component", "supervisor", "process_id", id),
		id:       id,
		command:  command,
		options:  options,
		lines:    delivery.New(),
		finished: make(chan struct{}),
	}
}

// ID returns the identifier stamped on every line of this run.
func (s *Supervisor) ID() string {
	return s.id
}

// Start resolves and spawns the backend and begins forwarding its output.
//
// It returns once the process is running; it never waits for output. The
// context bounds resolution only. The backend outlives it and is stopped by
// killing Process().
//
// Returns ErrNoCommand when no executable is configured, ErrAlreadyStarted
// on a second call, and *errors.SpawnError when the executable cannot be
// found or started. On error the delivery channel is closed without lines.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.ErrAlreadyStarted
	}

	s.started = true

	if err := s.start(ctx); err != nil {
		s.lines.Close()
		close(s.finished)

		return err
	}

	return nil
}

func (s *Supervisor) start(ctx context.Context) error {
	s.log.Info("Starting backend", "path", s.command.Path, "args", s.command.Args)

	resolver := launch.NewResolver(&launch.Config{
		Bundled:     s.options.Bundled,
		SearchPaths: s.options.SearchPaths,
		Logger:      s.log,
	})

	command, err := resolver.Resolve(ctx, s.command)
	if err != nil {
		return err
	}

	env, err := launch.BuildEnvironment(command.Path, s.options, s.id)
	if err != nil {
		return &errors.SpawnError{Path: command.Path, Err: err}
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return &errors.SpawnError{Path: command.Path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)

		return &errors.SpawnError{Path: command.Path, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	//nolint:gosec // G204: launching a configured backend is the purpose of this package
	cmd := exec.Command(command.Path, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = env
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	s.child = process.New(s.id, cmd, s.log)

	startErr := s.child.Start()

	// The child holds its own copies of the write ends. Keeping ours open
	// would stop the readers from ever seeing end of stream.
	closeAll(stdoutW, stderrW)

	if startErr != nil {
		closeAll(stdoutR, stderrR)

		return &errors.SpawnError{Path: command.Path, Err: startErr}
	}

	s.stdout = stdoutR
	s.stderr = stderrR

	s.mux = multiplex.Start(stdoutR, stderrR, func(line message.OutputLine) {
		s.lines.Push(line)
	}, &multiplex.Config{
		Logger:         s.log,
		ProcessID:      s.id,
		MaxLineSize:    s.options.MaxLineSize,
		Forward:        s.options.Forward,
		StdoutCallback: s.options.StdoutCallback,
		StderrCallback: s.options.StderrCallback,
	})

	go s.superviseExit()

	return nil
}

// superviseExit waits for the process, then reports its exit on the
// delivery channel exactly once and closes the channel.
func (s *Supervisor) superviseExit() {
	defer close(s.finished)
	defer s.lines.Close()

	status, waitErr := s.child.Wait()

	drain := s.options.EffectiveDrainTimeout()
	if drain >= 0 {
		s.awaitReaders(drain)
	}

	s.lines.Push(s.exitLine(status, waitErr))

	if err := s.mux.Wait(); err != nil {
		s.log.Warn("Output stream ended with error", "error", err)
	}

	closeAll(s.stdout, s.stderr)

	s.log.Debug("Delivery complete", "lines", s.lines.Pushed())
}

// awaitReaders gives the readers up to timeout to reach end of stream. A
// descendant of the backend that inherited the pipes can keep them open
// forever; past the timeout the read ends are closed to abandon them.
func (s *Supervisor) awaitReaders(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.mux.Done():
		return
	case <-timer.C:
	}

	s.log.Warn("Output streams still open after exit, abandoning them", "drain_timeout", timeout)
	closeAll(s.stdout, s.stderr)

	<-s.mux.Done()
}

func (s *Supervisor) exitLine(status message.ExitStatus, waitErr error) message.OutputLine {
	line := message.OutputLine{
		ProcessID: s.id,
		Origin:    message.OriginLifecycle,
		Seq:       1,
		Time:      time.Now(),
	}

	if waitErr != nil {
		line.Text = waitErr.Error()
		line.Err = waitErr

		return line
	}

	line.Text = status.String()
	line.Exit = &status

	return line
}

// Lines returns the delivery channel. It yields every forwarded output line,
// then one lifecycle line, and is closed after that.
func (s *Supervisor) Lines() <-chan message.OutputLine {
	return s.lines.Lines()
}

// Process returns the handle to the running backend, or nil before a
// successful Start.
func (s *Supervisor) Process() *process.Child {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.child == nil || s.child.State() == process.StateSpawnFailed {
		return nil
	}

	return s.child
}

// Finished returns a channel that is closed once the lifecycle line has been
// queued and the delivery channel closed for writing.
func (s *Supervisor) Finished() <-chan struct{} {
	return s.finished
}

// Close kills the backend and waits until delivery is complete or ctx ends.
// Lines still queued stay readable from Lines.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	child := s.child
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}

	if child != nil {
		if err := child.Kill(); err != nil && !isAlreadyDone(err) {
			return err
		}
	}

	select {
	case <-s.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isAlreadyDone(err error) bool {
	return stderrors.Is(err, errors.ErrAlreadyExited) || stderrors.Is(err, errors.ErrNotStarted)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

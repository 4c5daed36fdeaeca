// Package lifecycle ties backend processes to the host's own shutdown.
//
// Terminate is the window-close primitive: it asks the OS to kill a backend
// and returns without waiting. A Bridge collects the handles a host wants
// killed when it closes and fires Terminate on all of them exactly once,
// whether the close comes from a window event or a termination signal.
package lifecycle

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/errors"
)

// Terminate sends a kill signal to the backend behind h without waiting for
// it to exit. The supervisor reports the exit on the delivery channel.
//
// A backend that already exited, or was never started, is a successful
// no-op. Any other failure is returned as *errors.TerminationError.
func Terminate(h config.Handle, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	log = log.With("component", "lifecycle", "pid", h.PID())

	err := h.Kill()

	switch {
	case err == nil:
		log.Info("Backend termination requested")

		return nil
	case stderrors.Is(err, errors.ErrAlreadyExited), stderrors.Is(err, errors.ErrNotStarted):
		log.Debug("Backend not running, nothing to terminate", "reason", err)

		return nil
	}

	if _, ok := stderrors.AsType[*errors.TerminationError](err); !ok {
		err = &errors.TerminationError{PID: h.PID(), Err: err}
	}

	log.Error("Failed to terminate backend", "error", err)

	return err
}

// Bridge terminates tracked backends when the host closes.
type Bridge struct {
	log *slog.Logger

	mu      sync.Mutex
	handles []config.Handle
	hooks   []func()
	closed  bool

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewBridge creates an empty bridge.
func NewBridge(log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Bridge{
		log:  log.With("component", "lifecycle"),
		done: make(chan struct{}),
	}
}

// Track registers h for termination on close. A handle tracked after the
// close was requested is terminated immediately.
func (b *Bridge) Track(h config.Handle) {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()

		if err := Terminate(h, b.log); err != nil {
			b.log.Warn("Late-tracked backend could not be terminated", "error", err)
		}

		return
	}

	b.handles = append(b.handles, h)
	b.mu.Unlock()
}

// OnClose registers fn to run after the tracked backends were signalled.
// Hooks run once, in registration order, on the goroutine that requested
// the close.
func (b *Bridge) OnClose(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hooks = append(b.hooks, fn)
}

// CloseRequested is the host's close hook. The first call terminates every
// tracked backend and runs the OnClose hooks; later calls return the first
// call's result without doing anything.
//
// It never waits for a backend to exit.
func (b *Bridge) CloseRequested() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		handles := b.handles
		hooks := b.hooks
		b.mu.Unlock()

		b.log.Info("Close requested, terminating backends", "count", len(handles))

		var errs []error

		for _, h := range handles {
			if err := Terminate(h, b.log); err != nil {
				errs = append(errs, err)
			}
		}

		for _, hook := range hooks {
			hook()
		}

		b.closeErr = stderrors.Join(errs...)
		close(b.done)
	})

	return b.closeErr
}

// Closed returns a channel that is closed once CloseRequested has finished.
func (b *Bridge) Closed() <-chan struct{} {
	return b.done
}

// NotifySignals calls CloseRequested when one of sigs arrives, the way a
// headless host treats SIGINT or SIGTERM as its window closing. Listening
// stops after the first signal, once ctx ends, or once the bridge closes.
// The returned stop function also ends listening and is safe to call more
// than once, including from an OnClose hook.
func (b *Bridge) NotifySignals(ctx context.Context, sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			b.log.Info("Received signal", "signal", sig.String())

			if err := b.CloseRequested(); err != nil {
				b.log.Warn("Close after signal reported errors", "error", err)
			}
		case <-b.done:
		case <-ctx.Done():
		}
	}()

	return cancel
}

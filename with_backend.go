package backendshell

import (
	"context"
	"fmt"
	"time"
)

// closeTimeout bounds how long WithBackend waits for delivery to finish
// after killing the backend.
var closeTimeout = 5 * time.Second

// WithBackend manages a backend's lifecycle with automatic cleanup.
//
// This helper starts the backend, passes its delivery channel and handle to
// fn, and terminates the backend when fn returns. Lines fn did not consume
// are discarded.
//
// If fn returns an error, it is returned to the caller.
// If cleanup fails, a warning is logged but does not override fn's error.
//
// Example usage:
//
//	err := backendshell.WithBackend(ctx, cmd, func(lines <-chan backendshell.OutputLine, p *backendshell.Process) error {
//	    for line := range backendshell.Lines(ctx, lines) {
//	        if strings.Contains(line.Text, "Running on") {
//	            return openWindow(ctx)
//	        }
//	    }
//	    return errors.New("backend exited before it was ready")
//	},
//	    backendshell.WithLogger(log),
//	)
func WithBackend(
	ctx context.Context,
	cmd Command,
	fn func(<-chan OutputLine, *Process) error,
	opts ...Option,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	lines, proc, err := Start(ctx, cmd, opts...)
	if err != nil {
		return fmt.Errorf("failed to start backend: %w", err)
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()

		if closeErr := proc.Close(closeCtx); closeErr != nil {
			log.Warn("failed to close backend", "error", closeErr)

			// Delivery is still running; keep consuming so it can finish.
			go func() {
				for range lines {
				}
			}()

			return
		}

		for range lines {
		}
	}()

	return fn(lines, proc)
}

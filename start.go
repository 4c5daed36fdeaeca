package backendshell

import (
	"context"

	"github.com/wagiedev/backendshell-go/internal/subprocess"
)

// Start launches the backend described by cmd and begins forwarding its
// output.
//
// Start returns as soon as the process is running, before it has written
// anything. The returned channel yields every stdout and stderr line as it
// is read, then exactly one lifecycle line describing the exit, and is
// closed after that. Lines of one stream arrive in the order they were
// written; the two streams interleave as they are read.
//
// The context bounds only the launch itself. The backend keeps running
// after ctx ends and is stopped with Terminate or a Bridge.
//
// Returns ErrNoCommand when cmd.Path is empty and no bundled backend
// exists, and *SpawnError when the executable cannot be found or the OS
// refuses to start it. Start never retries.
func Start(ctx context.Context, cmd Command, opts ...Option) (<-chan OutputLine, *Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	sup := subprocess.New(log, cmd, options)
	if err := sup.Start(ctx); err != nil {
		return nil, nil, err
	}

	return sup.Lines(), &Process{log: log, sup: sup, child: sup.Process()}, nil
}

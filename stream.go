package backendshell

import (
	"context"
	"iter"
)

// Lines ranges over a delivery channel until it closes or ctx ends.
// Breaking out of the loop leaves the remaining lines in the channel.
func Lines(ctx context.Context, ch <-chan OutputLine) iter.Seq[OutputLine] {
	return func(yield func(OutputLine) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-ch:
				if !ok || !yield(line) {
					return
				}
			}
		}
	}
}

// AwaitExit consumes lines until the lifecycle line and returns it. Output
// lines read on the way are passed to each, which may be nil.
//
// It returns ctx.Err() if ctx ends first and ErrNotStarted if the channel
// closes without a lifecycle line.
func AwaitExit(ctx context.Context, ch <-chan OutputLine, each func(OutputLine)) (OutputLine, error) {
	for line := range Lines(ctx, ch) {
		if line.IsLifecycle() {
			return line, nil
		}

		if each != nil {
			each(line)
		}
	}

	if err := ctx.Err(); err != nil {
		return OutputLine{}, err
	}

	return OutputLine{}, ErrNotStarted
}

//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/backendshell-go"
)

// skipIfPythonNotInstalled skips the test if the error indicates no python
// interpreter is on PATH.
func skipIfPythonNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*backendshell.SpawnError](err); ok {
		t.Skip("python not installed")
	}
}

// startPython launches an inline python backend the way a desktop app would
// launch its dev server.
func startPython(
	t *testing.T,
	ctx context.Context,
	script string,
	opts ...backendshell.Option,
) (<-chan backendshell.OutputLine, *backendshell.Process) {
	t.Helper()

	lines, proc, err := backendshell.Start(ctx, backendshell.Command{
		Path: "python",
		Args: []string{"-c", script},
	}, opts...)
	if err != nil {
		skipIfPythonNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	return lines, proc
}

// collect drains the delivery channel, failing the test if it stays open
// past timeout.
func collect(t *testing.T, lines <-chan backendshell.OutputLine, timeout time.Duration) []backendshell.OutputLine {
	t.Helper()

	var got []backendshell.OutputLine

	deadline := time.After(timeout)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return got
			}

			got = append(got, line)
		case <-deadline:
			require.FailNow(t, "delivery channel was not closed", "received %d lines", len(got))
		}
	}
}

package backendshell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(lines ...OutputLine) <-chan OutputLine {
	ch := make(chan OutputLine, len(lines))
	for _, line := range lines {
		ch <- line
	}

	close(ch)

	return ch
}

func TestLines_Empty(t *testing.T) {
	count := 0

	for range Lines(context.Background(), feed()) {
		count++
	}

	assert.Equal(t, 0, count)
}

func TestLines_StopsOnBreak(t *testing.T) {
	ch := feed(
		OutputLine{Origin: OriginStdout, Text: "one"},
		OutputLine{Origin: OriginStdout, Text: "two"},
	)

	for line := range Lines(context.Background(), ch) {
		assert.Equal(t, "one", line.Text)

		break
	}

	// The unread line is still in the channel.
	line := <-ch
	assert.Equal(t, "two", line.Text)
}

func TestLines_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An open channel with nothing in it would block forever without ctx.
	ch := make(chan OutputLine)

	for range Lines(ctx, ch) {
		t.Fatal("no line expected")
	}
}

func TestAwaitExit(t *testing.T) {
	ch := feed(
		OutputLine{Origin: OriginStdout, Text: "ready"},
		OutputLine{Origin: OriginStderr, Text: "warning"},
		OutputLine{Origin: OriginLifecycle, Text: "exited with code 0", Exit: &ExitStatus{}},
	)

	var seen []string

	exit, err := AwaitExit(context.Background(), ch, func(line OutputLine) {
		seen = append(seen, line.Text)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ready", "warning"}, seen)
	assert.Equal(t, "exited with code 0", exit.Text)
	assert.True(t, exit.Exit.Success())
}

func TestAwaitExit_ClosedWithoutExit(t *testing.T) {
	_, err := AwaitExit(context.Background(), feed(OutputLine{Text: "x"}), nil)
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestAwaitExit_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AwaitExit(ctx, make(chan OutputLine), nil)
	require.ErrorIs(t, err, context.Canceled)
}

package subprocess

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/message"
)

func texts(lines []message.OutputLine) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.Text
	}

	return out
}

// TestDrain_LateOutputPrecedesExitLine checks that output written by a
// descendant after the backend exits is delivered before the exit line.
func TestDrain_LateOutputPrecedesExitLine(t *testing.T) {
	requireUnix(t)

	s := New(nil, shell("(sleep 0.3; echo late) & exit 0"), nil)
	require.NoError(t, s.Start(context.Background()))

	lines := drain(t, s)
	require.Equal(t, []string{"late", "exited with code 0"}, texts(lines))
}

// TestDrain_NegativeTimeoutReportsExitImmediately checks that disabling the
// drain wait lets the exit line overtake late output, which still arrives
// before the channel closes.
func TestDrain_NegativeTimeoutReportsExitImmediately(t *testing.T) {
	requireUnix(t)

	s := New(nil, shell("(sleep 0.5; echo late) & exit 0"), &config.Options{DrainTimeout: -1})
	require.NoError(t, s.Start(context.Background()))

	lines := drain(t, s)
	require.Equal(t, []string{"exited with code 0", "late"}, texts(lines))
	require.True(t, lines[0].IsLifecycle())
}

// TestDrain_TimeoutAbandonsInheritedPipes checks that a descendant holding
// the pipes open cannot keep the delivery channel open past the timeout.
func TestDrain_TimeoutAbandonsInheritedPipes(t *testing.T) {
	requireUnix(t)

	s := New(nil, shell("echo started; sleep 5 & exit 0"), &config.Options{
		DrainTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, s.Start(context.Background()))

	begin := time.Now()
	lines := drain(t, s)

	require.Less(t, time.Since(begin), 4*time.Second)
	require.Equal(t, []string{"started", "exited with code 0"}, texts(lines))
	require.True(t, lines[len(lines)-1].IsLifecycle())
}

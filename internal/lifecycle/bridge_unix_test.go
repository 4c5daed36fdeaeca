//go:build unix

package lifecycle

import (
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/backendshell-go/internal/process"
)

// TestTerminate_SleepingBackend covers the window-close scenario: a backend
// sleeping forever is killed, twice-terminated without blocking, and gone.
func TestTerminate_SleepingBackend(t *testing.T) {
	child := process.New("window-close", exec.Command("sleep", "60"), nil)
	require.NoError(t, child.Start())

	pid := child.PID()

	require.NoError(t, Terminate(child, nil))
	require.NoError(t, Terminate(child, nil))

	status, err := child.Wait()
	require.NoError(t, err)
	require.True(t, status.Signaled)
	require.True(t, status.Killed)

	// Once reaped the PID no longer accepts signals.
	require.ErrorIs(t, syscall.Kill(pid, 0), syscall.ESRCH)

	require.NoError(t, Terminate(child, nil))
}

func TestBridge_NotifySignals(t *testing.T) {
	h := newMockHandle()

	bridge := NewBridge(nil)
	bridge.Track(h)

	stop := bridge.NotifySignals(context.Background(), syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-bridge.Closed():
	case <-time.After(5 * time.Second):
		t.Fatal("signal did not trigger close")
	}

	require.Equal(t, 1, h.Kills())
}

func TestBridge_NotifySignalsStopsWithContext(t *testing.T) {
	h := newMockHandle()

	bridge := NewBridge(nil)
	bridge.Track(h)

	ctx, cancel := context.WithCancel(context.Background())
	stop := bridge.NotifySignals(ctx, syscall.SIGUSR2)

	cancel()
	stop()
	stop()

	require.Equal(t, 0, h.Kills())
}

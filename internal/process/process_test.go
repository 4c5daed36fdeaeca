package process

import (
	stderrors "errors"
	"os/exec"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/backendshell-go/internal/errors"
)

func requireUnix(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}
}

func waitWithTimeout(t *testing.T, c *Child) {
	t.Helper()

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = c.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("process did not terminate")
	}
}

func TestState_String(t *testing.T) {
	require.Equal(t, "not_started", StateNotStarted.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "exited", StateExited.String())
	require.Equal(t, "killed", StateKilled.String())
	require.Equal(t, "spawn_failed", StateSpawnFailed.String())
	require.Equal(t, "unknown(42)", State(42).String())

	require.False(t, StateRunning.Terminal())
	require.True(t, StateKilled.Terminal())
	require.True(t, StateSpawnFailed.Terminal())
}

func TestChild_NaturalExit(t *testing.T) {
	requireUnix(t)

	c := New("run-1", exec.Command("sh", "-c", "exit 3"), nil)
	require.Equal(t, StateNotStarted, c.State())
	require.Equal(t, -1, c.PID())

	require.NoError(t, c.Start())
	require.Equal(t, StateRunning, c.State())
	require.Positive(t, c.PID())

	status, err := c.Wait()
	require.NoError(t, err)
	require.Equal(t, 3, status.Code)
	require.False(t, status.Signaled)
	require.False(t, status.Killed)
	require.Equal(t, "exited with code 3", status.String())
	require.Equal(t, StateExited, c.State())

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after Wait")
	}

	again, err := c.Wait()
	require.NoError(t, err)
	require.Equal(t, status, again)
}

func TestChild_KillWhileRunning(t *testing.T) {
	requireUnix(t)

	c := New("run-2", exec.Command("sleep", "30"), nil)
	require.NoError(t, c.Start())

	require.NoError(t, c.Kill())
	require.True(t, c.KillRequested())

	// A second kill before the exit is observed is a no-op.
	require.NoError(t, c.Kill())

	waitWithTimeout(t, c)

	status, ok := c.ExitStatus()
	require.True(t, ok)
	require.True(t, status.Signaled)
	require.True(t, status.Killed)
	require.Equal(t, -1, status.Code)
	require.Equal(t, "SIGKILL", status.Signal)
	require.Equal(t, "terminated by signal SIGKILL", status.String())
	require.Equal(t, StateKilled, c.State())

	require.ErrorIs(t, c.Kill(), errors.ErrAlreadyExited)
}

func TestChild_KillAfterExitIsAlreadyExited(t *testing.T) {
	requireUnix(t)

	c := New("run-3", exec.Command("true"), nil)
	require.NoError(t, c.Start())
	waitWithTimeout(t, c)

	require.ErrorIs(t, c.Kill(), errors.ErrAlreadyExited)
	require.ErrorIs(t, c.Kill(), errors.ErrAlreadyExited)
}

func TestChild_KillRacingExitNeverFails(t *testing.T) {
	requireUnix(t)

	for range 20 {
		c := New("race", exec.Command("true"), nil)
		require.NoError(t, c.Start())

		var wg sync.WaitGroup

		wg.Go(func() { _, _ = c.Wait() })

		err := c.Kill()
		if err != nil {
			require.ErrorIs(t, err, errors.ErrAlreadyExited)
		}

		wg.Wait()
		require.True(t, c.State().Terminal())
	}
}

func TestChild_KillBeforeStart(t *testing.T) {
	c := New("run-4", exec.Command("true"), nil)
	require.ErrorIs(t, c.Kill(), errors.ErrNotStarted)

	_, err := c.Wait()
	require.ErrorIs(t, err, errors.ErrNotStarted)
}

func TestChild_SpawnFailure(t *testing.T) {
	c := New("run-5", exec.Command("/nonexistent/backend/binary"), nil)

	err := c.Start()
	require.Error(t, err)
	require.Equal(t, StateSpawnFailed, c.State())
	require.ErrorIs(t, c.Kill(), errors.ErrNotStarted)
	require.ErrorIs(t, c.Start(), errors.ErrAlreadyStarted)
}

func TestChild_StartTwice(t *testing.T) {
	requireUnix(t)

	c := New("run-6", exec.Command("true"), nil)
	require.NoError(t, c.Start())
	require.ErrorIs(t, c.Start(), errors.ErrAlreadyStarted)
	waitWithTimeout(t, c)
}

func TestChild_WaitFailureBecomesWaitError(t *testing.T) {
	requireUnix(t)

	cmd := exec.Command("sleep", "30")
	c := New("run-7", cmd, nil)
	c.waitCmd = func(*exec.Cmd) error { return stderrors.New("no child processes") }

	require.NoError(t, c.Start())

	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	_, err := c.Wait()

	waitErr, ok := stderrors.AsType[*errors.WaitError](err)
	require.True(t, ok, "expected WaitError, got %v", err)
	require.Equal(t, c.PID(), waitErr.PID)
	require.ErrorContains(t, err, "no child processes")

	_, ok = c.ExitStatus()
	require.False(t, ok)
}

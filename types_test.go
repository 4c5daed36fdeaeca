package backendshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	origins, err := ParseOrigins("err")
	require.NoError(t, err)
	require.Equal(t, []Origin{OriginStderr}, origins)

	origins, err = ParseOrigins("all")
	require.NoError(t, err)
	require.Equal(t, []Origin{OriginStdout, OriginStderr}, origins)

	_, err = ParseOrigins("lifecycle")
	require.Error(t, err)
}

func TestState_ReExports(t *testing.T) {
	require.Equal(t, "running", StateRunning.String())
	require.True(t, StateKilled.Terminal())
	require.False(t, StateNotStarted.Terminal())
}

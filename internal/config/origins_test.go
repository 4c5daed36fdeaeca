package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/backendshell-go/internal/message"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []message.Origin
	}{
		{name: "empty", input: nil, want: nil},
		{name: "stdout", input: []string{"stdout"}, want: []message.Origin{message.OriginStdout}},
		{name: "short names", input: []string{"err", "out"}, want: []message.Origin{message.OriginStderr, message.OriginStdout}},
		{name: "all", input: []string{"ALL"}, want: []message.Origin{message.OriginStdout, message.OriginStderr}},
		{name: "dedup", input: []string{"stderr", " Err ", "both"}, want: []message.Origin{message.OriginStderr, message.OriginStdout}},
		{name: "blank ignored", input: []string{"", "stdout"}, want: []message.Origin{message.OriginStdout}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrigins(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrigins_Unknown(t *testing.T) {
	_, err := ParseOrigins([]string{"stdin"})
	require.ErrorContains(t, err, `unknown output stream "stdin"`)
}

func TestOptions_EffectiveDrainTimeout(t *testing.T) {
	require.Equal(t, DefaultDrainTimeout, (&Options{}).EffectiveDrainTimeout())
	require.Equal(t, time.Second, (&Options{DrainTimeout: time.Second}).EffectiveDrainTimeout())
	require.Negative(t, (&Options{DrainTimeout: -1}).EffectiveDrainTimeout())
}

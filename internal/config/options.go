// Package config provides configuration types for the backend shell.
package config

import (
	"log/slog"
	"time"

	"github.com/wagiedev/backendshell-go/internal/message"
)

// DefaultDrainTimeout bounds how long the exit notification waits for the
// backend's output streams to reach end of stream.
const DefaultDrainTimeout = 2 * time.Second

// Command describes the backend to launch.
type Command struct {
	// Path is the executable: a bare name searched on PATH, or a path.
	// Relative paths containing a separator resolve against Dir.
	Path string

	// Args are passed to the executable, typically the backend script.
	Args []string

	// Dir is the working directory of the backend. The backend's entry point
	// is usually resolved relative to it. Empty means the host's directory.
	Dir string
}

// Options configures how a backend is launched and supervised.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Env provides additional environment variables for the backend.
	// Entries override the host environment and EnvFiles.
	Env map[string]string

	// EnvFiles are dotenv files loaded into the backend environment, in order.
	EnvFiles []string

	// Bundled is the path of a packaged backend executable. When it exists it
	// is launched with no arguments instead of Command.
	Bundled string

	// SearchPaths are extra directories searched for a bare executable name
	// after PATH.
	SearchPaths []string

	// Forward lists the origins delivered to the host. Empty means stdout and
	// stderr. Streams not forwarded are still drained.
	Forward []message.Origin

	// StdoutCallback receives every stdout line on the reader goroutine.
	StdoutCallback func(string)

	// StderrCallback receives every stderr line on the reader goroutine.
	StderrCallback func(string)

	// MaxLineSize is the longest line delivered in one piece.
	// Zero uses the reader default (1MB).
	MaxLineSize int

	// DrainTimeout bounds how long the exit line waits for both output
	// streams to close. Zero uses DefaultDrainTimeout; negative disables the
	// wait, so the exit line is unordered relative to late output.
	DrainTimeout time.Duration
}

// EffectiveDrainTimeout returns the drain timeout with defaults applied.
func (o *Options) EffectiveDrainTimeout() time.Duration {
	if o.DrainTimeout == 0 {
		return DefaultDrainTimeout
	}

	return o.DrainTimeout
}

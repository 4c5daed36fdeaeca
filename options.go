package backendshell

import (
	"log/slog"
	"time"

	"github.com/wagiedev/backendshell-go/internal/config"
)

// Options configures how a backend is launched and supervised.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithEnv sets additional environment variables for the backend.
// They override both the host environment and WithEnvFiles.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvFiles loads dotenv files into the backend environment, in order.
// A missing file makes Start fail.
func WithEnvFiles(paths ...string) Option {
	return func(o *Options) {
		o.EnvFiles = append(o.EnvFiles, paths...)
	}
}

// ===== Resolution =====

// WithBundled sets the path of a packaged backend executable. When the file
// exists it is launched without arguments in place of the configured
// command, the way a packaged desktop app ships its backend. Relative paths
// resolve against Command.Dir.
func WithBundled(path string) Option {
	return func(o *Options) {
		o.Bundled = path
	}
}

// WithSearchPaths adds directories searched for a bare executable name
// after PATH.
func WithSearchPaths(dirs ...string) Option {
	return func(o *Options) {
		o.SearchPaths = append(o.SearchPaths, dirs...)
	}
}

// ===== Output =====

// WithForward limits which streams are delivered on the channel. Streams
// left out are still read, so the backend never blocks on a full pipe, and
// their callbacks still fire. The default forwards stdout and stderr.
func WithForward(origins ...Origin) Option {
	return func(o *Options) {
		o.Forward = append(o.Forward, origins...)
	}
}

// WithStdoutCallback sets a function called with every stdout line on the
// reader goroutine. It must not block.
func WithStdoutCallback(handler func(string)) Option {
	return func(o *Options) {
		o.StdoutCallback = handler
	}
}

// WithStderrCallback sets a function called with every stderr line on the
// reader goroutine. It must not block.
func WithStderrCallback(handler func(string)) Option {
	return func(o *Options) {
		o.StderrCallback = handler
	}
}

// WithMaxLineSize sets the longest line delivered in one piece. Longer
// lines arrive as consecutive chunks. Default is 1MB.
func WithMaxLineSize(size int) Option {
	return func(o *Options) {
		o.MaxLineSize = size
	}
}

// WithDrainTimeout bounds how long the exit line waits for the backend's
// output to reach end of stream. A negative value reports the exit as soon
// as it is observed, possibly ahead of buffered output.
func WithDrainTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.DrainTimeout = d
	}
}

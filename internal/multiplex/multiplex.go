// Package multiplex reads a backend's stdout and stderr concurrently and
// funnels both into a single sink.
//
// Each stream gets its own linereader.Reader on its own goroutine. Lines keep
// their order within a stream; across streams they arrive in whatever order
// the two readers observe, exactly as the backend's own stdout and stderr
// carry no mutual ordering.
package multiplex

import (
	"io"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/backendshell-go/internal/linereader"
	"github.com/wagiedev/backendshell-go/internal/message"
)

// Config configures a Multiplexer.
type Config struct {
	// Logger receives reader diagnostics. If nil, logging is disabled.
	Logger *slog.Logger

	// ProcessID is stamped on every line.
	ProcessID string

	// MaxLineSize overrides linereader.DefaultMaxLineSize when positive.
	MaxLineSize int

	// Forward lists the origins pushed to the sink. Streams that are not
	// forwarded are still read to the end so the backend never blocks on a
	// full pipe. Empty means both stdout and stderr.
	Forward []message.Origin

	// StdoutCallback and StderrCallback receive every line of their stream,
	// forwarded or not, on the reader goroutine.
	StdoutCallback func(string)
	StderrCallback func(string)
}

// Multiplexer owns the two stream readers of one backend.
type Multiplexer struct {
	log  *slog.Logger
	eg   errgroup.Group
	done chan struct{}
	err  error
}

// Start launches one reader per non-nil stream and returns immediately.
// sink is called from both reader goroutines and must be safe for concurrent
// use.
func Start(stdout, stderr io.Reader, sink linereader.Sink, cfg *Config) *Multiplexer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	m := &Multiplexer{
		log:  log.With("component", "multiplex"),
		done: make(chan struct{}),
	}

	m.spawn(stdout, message.OriginStdout, cfg.StdoutCallback, sink, cfg, log)
	m.spawn(stderr, message.OriginStderr, cfg.StderrCallback, sink, cfg, log)

	go func() {
		defer close(m.done)

		m.err = m.eg.Wait()
		m.log.Debug("All output streams drained")
	}()

	return m
}

func (m *Multiplexer) spawn(
	src io.Reader,
	origin message.Origin,
	callback func(string),
	sink linereader.Sink,
	cfg *Config,
	log *slog.Logger,
) {
	if src == nil {
		return
	}

	forward := len(cfg.Forward) == 0 || slices.Contains(cfg.Forward, origin)

	reader := linereader.New(src, origin, func(line message.OutputLine) {
		if callback != nil {
			callback(line.Text)
		}

		if forward {
			sink(line)
		}
	},
		linereader.WithLogger(log),
		linereader.WithProcessID(cfg.ProcessID),
		linereader.WithMaxLineSize(cfg.MaxLineSize),
	)

	m.eg.Go(reader.Run)
}

// Done returns a channel that is closed once both readers have finished.
func (m *Multiplexer) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until both readers have finished. It returns the first
// *errors.ReadError, if any; the other reader is unaffected by it.
func (m *Multiplexer) Wait() error {
	<-m.done

	return m.err
}

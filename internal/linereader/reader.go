// Package linereader turns one backend output stream into a sequence of
// text lines.
//
// A Reader decodes its stream as UTF-8, replacing invalid byte sequences with
// U+FFFD, splits on newlines and hands each line to a sink before reading
// again. It returns when the stream reports end of file, which happens once
// the backend closes its end of the pipe.
package linereader

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/wagiedev/backendshell-go/internal/errors"
	"github.com/wagiedev/backendshell-go/internal/message"
)

const (
	// DefaultMaxLineSize is the longest line emitted in one piece. Longer
	// lines are split into DefaultMaxLineSize chunks.
	DefaultMaxLineSize = 1024 * 1024 // 1MB

	initialBufferSize = 4096
)

// Sink receives every line read from the stream, on the reader's goroutine.
type Sink func(message.OutputLine)

// Reader reads one stream line by line.
type Reader struct {
	log         *slog.Logger
	src         io.Reader
	origin      message.Origin
	processID   string
	sink        Sink
	maxLineSize int
	now         func() time.Time
	seq         uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithProcessID stamps every emitted line with the given backend run ID.
func WithProcessID(id string) Option {
	return func(r *Reader) {
		r.processID = id
	}
}

// WithMaxLineSize overrides DefaultMaxLineSize. Values smaller than one
// UTF-8 sequence are ignored.
func WithMaxLineSize(n int) Option {
	return func(r *Reader) {
		if n >= utf8.UTFMax {
			r.maxLineSize = n
		}
	}
}

// New creates a Reader that forwards lines from src to sink tagged with origin.
func New(src io.Reader, origin message.Origin, sink Sink, opts ...Option) *Reader {
	r := &Reader{
		log:         slog.New(slog.DiscardHandler),
		src:         src,
		origin:      origin,
		sink:        sink,
		maxLineSize: DefaultMaxLineSize,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.log = r.log.With("component", "linereader", "origin", string(origin))

	return r
}

// Run reads until end of stream. It returns nil at end of stream or when the
// source was closed underneath it (os.ErrClosed), and a *errors.ReadError
// when the stream fails mid-read. Either way no further lines are emitted.
func (r *Reader) Run() error {
	scanner := bufio.NewScanner(unicode.UTF8.NewDecoder().Reader(r.src))
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, r.maxLineSize)), r.maxLineSize)
	scanner.Split(r.splitLines)

	for scanner.Scan() {
		r.seq++

		r.sink(message.OutputLine{
			ProcessID: r.processID,
			Origin:    r.origin,
			Text:      scanner.Text(),
			Seq:       r.seq,
			Time:      r.now(),
		})
	}

	if err := scanner.Err(); err != nil {
		// The owner closed the read end to abandon the stream.
		if stderrors.Is(err, os.ErrClosed) {
			r.log.Debug("Stream abandoned", "lines", r.seq)

			return nil
		}

		r.log.Warn("Stream read failed, treating as end of stream", "error", err, "lines", r.seq)

		return &errors.ReadError{Origin: string(r.origin), Err: err}
	}

	r.log.Debug("Stream reached end", "lines", r.seq)

	return nil
}

// Lines returns the number of lines emitted so far. It is only meaningful
// after Run returns.
func (r *Reader) Lines() uint64 {
	return r.seq
}

// splitLines is bufio.ScanLines that emits over-long lines in chunks instead
// of failing with bufio.ErrTooLong.
func (r *Reader) splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, dropCR(data[:i]), nil
	}

	if len(data) >= r.maxLineSize {
		n := runeBoundary(data, r.maxLineSize)

		return n, data[:n], nil
	}

	if atEOF {
		return len(data), dropCR(data), nil
	}

	return 0, nil, nil
}

func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}

	return data
}

// runeBoundary returns the largest cut point not after limit that does not
// split a UTF-8 sequence.
func runeBoundary(data []byte, limit int) int {
	for i := limit - 1; i >= 0 && i >= limit-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}

		if i > 0 && !utf8.FullRune(data[i:limit]) {
			return i
		}

		return limit
	}

	return limit
}

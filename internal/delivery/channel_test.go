package delivery

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wagiedev/backendshell-go/internal/message"
)

func drain(t *testing.T, c *Channel) []message.OutputLine {
	t.Helper()

	var lines []message.OutputLine

	timeout := time.After(5 * time.Second)

	for {
		select {
		case line, ok := <-c.Lines():
			if !ok {
				return lines
			}

			lines = append(lines, line)
		case <-timeout:
			t.Fatalf("channel not closed after %d lines", len(lines))
		}
	}
}

func TestChannel_DeliversInPushOrder(t *testing.T) {
	c := New()

	for i := range 5 {
		require.True(t, c.Push(message.OutputLine{Text: fmt.Sprint(i)}))
	}

	c.Close()

	lines := drain(t, c)
	require.Len(t, lines, 5)

	for i, line := range lines {
		require.Equal(t, fmt.Sprint(i), line.Text)
	}
}

func TestChannel_PushNeverBlocksWithoutConsumer(t *testing.T) {
	c := New()

	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := range 10000 {
			c.Push(message.OutputLine{Seq: uint64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Push blocked with no consumer")
	}

	require.Equal(t, uint64(10000), c.Pushed())

	c.Close()
	require.Len(t, drain(t, c), 10000)
}

func TestChannel_PushAfterCloseIsDropped(t *testing.T) {
	c := New()
	c.Close()
	c.Close()

	require.False(t, c.Push(message.OutputLine{Text: "late"}))
	require.Empty(t, drain(t, c))
}

func TestChannel_EmptyIsNotDone(t *testing.T) {
	c := New()

	select {
	case _, ok := <-c.Lines():
		t.Fatalf("received from open empty channel (ok=%v)", ok)
	case <-time.After(50 * time.Millisecond):
	}

	c.Push(message.OutputLine{Text: "later"})
	c.Close()

	lines := drain(t, c)
	require.Len(t, lines, 1)
	require.Equal(t, "later", lines[0].Text)
}

// TestChannel_PerProducerFIFO checks that concurrent producers never see their
// own lines reordered.
func TestChannel_PerProducerFIFO(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		producers := rapid.IntRange(1, 4).Draw(r, "producers")
		counts := make([]int, producers)

		for i := range counts {
			counts[i] = rapid.IntRange(0, 200).Draw(r, fmt.Sprintf("count%d", i))
		}

		c := New()

		var wg sync.WaitGroup

		for p, n := range counts {
			origin := message.Origin(fmt.Sprint(p))

			wg.Go(func() {
				for i := 1; i <= n; i++ {
					c.Push(message.OutputLine{Origin: origin, Seq: uint64(i)})
				}
			})
		}

		wg.Wait()
		c.Close()

		last := make(map[message.Origin]uint64)
		total := 0

		for line := range c.Lines() {
			if line.Seq != last[line.Origin]+1 {
				r.Fatalf("origin %s: got seq %d after %d", line.Origin, line.Seq, last[line.Origin])
			}

			last[line.Origin] = line.Seq
			total++
		}

		want := 0
		for _, n := range counts {
			want += n
		}

		if total != want {
			r.Fatalf("delivered %d lines, want %d", total, want)
		}
	})
}

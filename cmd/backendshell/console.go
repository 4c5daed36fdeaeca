package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/logrusorgru/aurora"

	"github.com/wagiedev/backendshell-go"
)

// printer echoes backend and frontend messages to the terminal. Backend
// stdout is blue, stderr red and lifecycle lines yellow; frontend log
// messages are green and frontend errors red.
type printer struct {
	mu        sync.Mutex
	out       io.Writer
	errOut    io.Writer
	au        aurora.Aurora
	tagOrigin bool
}

func newPrinter(out, errOut io.Writer, color, tagOrigin bool) *printer {
	return &printer{
		out:       out,
		errOut:    errOut,
		au:        aurora.NewAurora(color),
		tagOrigin: tagOrigin,
	}
}

// Line echoes one line from the delivery channel.
func (p *printer) Line(line backendshell.OutputLine) {
	text := line.Text
	if p.tagOrigin {
		text = line.String()
	}

	switch line.Origin {
	case backendshell.OriginStdout:
		p.println(p.out, p.au.Blue(text))
	case backendshell.OriginStderr:
		p.println(p.errOut, p.au.Red(text))
	case backendshell.OriginLifecycle:
		if line.Err != nil {
			p.println(p.errOut, p.au.Red("Failed to wait for backend: "+line.Err.Error()))

			return
		}

		p.println(p.out, p.au.Yellow("Backend "+text))
	}
}

// Log echoes a frontend log message.
func (p *printer) Log(msg string) {
	p.println(p.out, p.au.Green("[Frontend] "+msg))
}

// Error echoes a frontend error.
func (p *printer) Error(msg string) {
	p.println(p.errOut, p.au.Red("[Frontend Error] "+msg))
}

// Fail echoes an error of the shell itself.
func (p *printer) Fail(msg string) {
	p.println(p.errOut, p.au.Red(msg))
}

func (p *printer) println(w io.Writer, v aurora.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(w, v.String())
}

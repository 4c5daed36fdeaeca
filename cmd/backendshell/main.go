// Command backendshell runs a backend server in the foreground the way a
// desktop shell would: it echoes the backend's output in colour, reports its
// exit, and kills it when the shell is interrupted.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionString := fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	cmd := newRootCmd(os.Stdout, os.Stderr)
	cmd.Version = versionString

	if err := cmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// reportError prints err unless the console has already shown it, as it
// does for the backend's exit and for a failed start.
func reportError(w io.Writer, err error) {
	if _, ok := errors.AsType[*exitError](err); ok {
		return
	}

	fmt.Fprintln(w, "Error:", err)
}

// Package subprocess supervises one backend process from spawn to exit.
//
// A Supervisor resolves the executable, starts it with its own stdout and
// stderr pipes, multiplexes both streams into a delivery channel and, once
// the process has terminated, appends exactly one lifecycle line describing
// how it ended before closing the channel.
package subprocess

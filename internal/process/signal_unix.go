//go:build unix

package process

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// signalInfo reports whether ps ended by a signal and names it.
func signalInfo(ps *os.ProcessState, _ bool) (bool, string) {
	status, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return false, ""
	}

	if name := unix.SignalName(status.Signal()); name != "" {
		return true, name
	}

	return true, status.Signal().String()
}

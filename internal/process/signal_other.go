//go:build !unix

package process

import "os"

// signalInfo reports a process ended by Kill as signaled. Windows has no
// signals, so TerminateProcess otherwise looks like a plain exit code 1.
func signalInfo(_ *os.ProcessState, killRequested bool) (bool, string) {
	if killRequested {
		return true, "SIGKILL"
	}

	return false, ""
}

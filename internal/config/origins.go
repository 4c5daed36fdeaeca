package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wagiedev/backendshell-go/internal/message"
)

// ParseOrigins maps user-facing stream names to origins.
//
// Accepted names (case-insensitive):
//   - "stdout", "out" -> stdout
//   - "stderr", "err" -> stderr
//   - "all", "both" -> stdout and stderr
//
// The result is deduplicated and keeps first-seen order.
func ParseOrigins(names []string) ([]message.Origin, error) {
	var origins []message.Origin

	add := func(o message.Origin) {
		if !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "stdout", "out":
			add(message.OriginStdout)
		case "stderr", "err":
			add(message.OriginStderr)
		case "all", "both":
			add(message.OriginStdout)
			add(message.OriginStderr)
		case "":
		default:
			return nil, fmt.Errorf("unknown output stream %q (want stdout, stderr or all)", name)
		}
	}

	return origins, nil
}

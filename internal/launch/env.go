package launch

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wagiedev/backendshell-go/internal/config"
)

const (
	// ProcessIDEnv carries the supervisor-assigned run identifier to the
	// backend so its own logs can be correlated with the host's.
	ProcessIDEnv = "BACKENDSHELL_PROCESS_ID"

	// pythonUnbufferedEnv stops Python from block-buffering stdout when it is
	// a pipe, which would otherwise hold back the readiness line.
	pythonUnbufferedEnv = "PYTHONUNBUFFERED"
)

// BuildEnvironment constructs the environment for the backend process.
//
// Later layers win: the host environment, then EnvFiles in order, then
// options.Env. Unreadable dotenv files are an error.
func BuildEnvironment(executable string, options *config.Options, processID string) ([]string, error) {
	// Start with current environment
	env := os.Environ()

	if len(options.EnvFiles) > 0 {
		fileVars, err := godotenv.Read(options.EnvFiles...)
		if err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}

		env = appendSorted(env, fileVars)
	}

	// Add or override with user-provided environment variables
	env = appendSorted(env, options.Env)

	env = append(env, ProcessIDEnv+"="+processID)

	if isPython(executable) && !hasKey(env, pythonUnbufferedEnv) {
		env = append(env, pythonUnbufferedEnv+"=1")
	}

	return env, nil
}

// appendSorted appends vars in key order so the resulting environment is
// deterministic. exec.Cmd keeps the last value of a duplicated key.
func appendSorted(env []string, vars map[string]string) []string {
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, fmt.Sprintf("%s=%s", key, vars[key]))
	}

	return env
}

func hasKey(env []string, key string) bool {
	prefix := key + "="

	return slices.ContainsFunc(env, func(kv string) bool {
		return strings.HasPrefix(kv, prefix)
	})
}

func isPython(executable string) bool {
	base := strings.TrimSuffix(filepath.Base(executable), ".exe")

	return strings.HasPrefix(base, "python")
}

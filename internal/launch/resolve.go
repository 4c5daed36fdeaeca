package launch

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/backendshell-go/internal/config"
	"github.com/wagiedev/backendshell-go/internal/errors"
)

// alternates lists interpreter names tried when the configured one is not
// installed. Windows ships "python", most Linux distributions "python3".
var alternates = map[string][]string{
	"python":  {"python3"},
	"python3": {"python"},
	"node":    {"nodejs"},
	"nodejs":  {"node"},
}

// Config holds configuration for backend resolution.
type Config struct {
	// Bundled is the path of a packaged backend executable. When the file
	// exists it replaces the configured command entirely.
	Bundled string

	// SearchPaths are extra directories checked for a bare executable name
	// after PATH.
	SearchPaths []string

	// Logger is an optional logger for resolution.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// Resolver locates the executable for a backend command.
type Resolver interface {
	// Resolve returns cmd with Path replaced by an executable that exists.
	// The context is checked before any filesystem access.
	Resolve(ctx context.Context, cmd config.Command) (config.Command, error)
}

type resolver struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that resolver implements Resolver.
var _ Resolver = (*resolver)(nil)

// NewResolver creates a resolver with the given configuration.
func NewResolver(cfg *Config) Resolver {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &resolver{
		cfg: cfg,
		log: log.With("component", "launch"),
	}
}

// Resolve locates the backend executable.
func (r *resolver) Resolve(ctx context.Context, cmd config.Command) (config.Command, error) {
	if err := ctx.Err(); err != nil {
		return config.Command{}, err
	}

	if bundled, ok := r.bundled(cmd.Dir); ok {
		r.log.Debug("Using bundled backend", "path", bundled)

		return config.Command{Path: bundled, Dir: cmd.Dir}, nil
	}

	if cmd.Path == "" {
		return config.Command{}, errors.ErrNoCommand
	}

	path, err := r.findExecutable(cmd.Path, cmd.Dir)
	if err != nil {
		r.log.Error("Failed to resolve backend executable", "error", err)

		return config.Command{}, err
	}

	r.log.Debug("Resolved backend executable", "path", path)

	cmd.Path = path

	return cmd, nil
}

func (r *resolver) bundled(dir string) (string, bool) {
	if r.cfg.Bundled == "" {
		return "", false
	}

	path := r.cfg.Bundled
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		r.log.Debug("Bundled backend not present", "path", path)

		return "", false
	}

	return absolute(path), true
}

func (r *resolver) findExecutable(name, dir string) (string, error) {
	// Anything with a separator is a path and is used as given.
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		path := name
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}

		if _, err := os.Stat(path); err != nil {
			return "", &errors.SpawnError{Path: name, SearchedPaths: []string{path}}
		}

		return absolute(path), nil
	}

	candidates := append([]string{name}, alternates[name]...)
	searchedPaths := make([]string, 0, len(candidates)*(len(r.cfg.SearchPaths)+1))

	for _, candidate := range candidates {
		r.log.Debug("Searching PATH", "name", candidate)

		if path, err := exec.LookPath(candidate); err == nil {
			if candidate != name {
				r.log.Info("Using interpreter alternate", "requested", name, "path", path)
			}

			return path, nil
		}

		searchedPaths = append(searchedPaths, "$PATH/"+candidate)

		for _, searchDir := range r.cfg.SearchPaths {
			path := filepath.Join(searchDir, candidate)
			searchedPaths = append(searchedPaths, path)

			if isExecutable(path) {
				return absolute(path), nil
			}
		}
	}

	r.log.Warn("Backend executable not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.SpawnError{Path: name, SearchedPaths: searchedPaths}
}

// absolute anchors a resolved path to the host's working directory.
// exec.Cmd reads a relative Path against Cmd.Dir, which would apply a
// relative Dir a second time.
func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode()&0o111 != 0 || filepath.Ext(path) == ".exe"
}

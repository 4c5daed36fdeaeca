// Package launch resolves the backend executable and builds its environment.
//
// # Resolution
//
// The Resolver turns a configured Command into one the OS can start:
//
//	resolver := launch.NewResolver(&launch.Config{
//	    Bundled: "resources/backend/server", // Optional packaged backend
//	    Logger:  slog.Default(),
//	})
//	cmd, err := resolver.Resolve(ctx, command)
//
// Resolution proceeds in the following order:
//  1. The bundled executable in Config.Bundled, launched without arguments
//  2. Command.Path when it contains a path separator, relative to Command.Dir
//  3. System PATH
//  4. Config.SearchPaths
//  5. Interpreter alternates (python and python3, node and nodejs)
//
// A failed search returns *errors.SpawnError listing every location tried.
//
// # Environment
//
// BuildEnvironment layers the host environment, dotenv files and explicit
// variables, then adds the variables every backend receives.
package launch

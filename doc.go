// Package backendshell runs a desktop app's backend as a supervised child
// process.
//
// A desktop shell typically launches a local server (a Python or Node
// backend) next to its window, shows what the server prints, and must make
// sure the server dies with the window. This package does that: it spawns
// the backend with its own stdout and stderr pipes, reads both streams
// concurrently into one unbounded delivery channel, reports the exit as a
// final lifecycle line, and kills the backend on request without blocking.
//
// # Basic Usage
//
//	ctx := context.Background()
//	lines, proc, err := backendshell.Start(ctx, backendshell.Command{
//	    Path: "python",
//	    Args: []string{"../run_server.py"},
//	},
//	    backendshell.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for line := range lines {
//	    switch line.Origin {
//	    case backendshell.OriginStdout:
//	        fmt.Println("[backend]", line.Text)
//	    case backendshell.OriginStderr:
//	        fmt.Fprintln(os.Stderr, "[backend]", line.Text)
//	    case backendshell.OriginLifecycle:
//	        fmt.Println("backend", line.Text)
//	    }
//	}
//
// The channel is never closed while the backend may still write: emptiness
// means "nothing yet", not "done". It closes after the lifecycle line.
//
// # Window Close
//
// Call Terminate from the window-close hook. It sends a kill signal and
// returns immediately; the lifecycle line reports the exit:
//
//	bridge := backendshell.NewBridge(log)
//	bridge.Track(proc)
//	window.OnClose(func() { _ = bridge.CloseRequested() })
//
// Headless hosts can route SIGINT and SIGTERM through the same path with
// Bridge.NotifySignals.
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	lines, proc, err := backendshell.Start(ctx, cmd, backendshell.WithLogger(logger))
//
// # Error Handling
//
// Only launch failures are returned synchronously. Everything after the
// spawn, including a failed wait, arrives on the channel:
//
//	lines, proc, err := backendshell.Start(ctx, cmd)
//	if err != nil {
//	    if spawnErr, ok := errors.AsType[*backendshell.SpawnError](err); ok {
//	        log.Fatalf("backend %q could not start, searched: %v", spawnErr.Path, spawnErr.SearchedPaths)
//	    }
//	    log.Fatal(err)
//	}
package backendshell

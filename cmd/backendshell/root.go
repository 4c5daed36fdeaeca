package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wagiedev/backendshell-go"
)

// defaultCommand launches the development backend next to the shell.
var defaultCommand = []string{"python", "../run_server.py"}

// config is the shell configuration after flags, environment and the yaml
// file have been merged.
type config struct {
	Command      []string          `mapstructure:"command"`
	Cwd          string            `mapstructure:"cwd"`
	Bundled      string            `mapstructure:"bundled"`
	Env          map[string]string `mapstructure:"env"`
	EnvFiles     []string          `mapstructure:"env_file"`
	SearchPaths  []string          `mapstructure:"search_path"`
	Forward      []string          `mapstructure:"forward"`
	DrainTimeout time.Duration     `mapstructure:"drain_timeout"`
	LogLevel     string            `mapstructure:"log_level"`
	NoColor      bool              `mapstructure:"no_color"`
	TagOrigin    bool              `mapstructure:"tag_origin"`
	FrontendLog  bool              `mapstructure:"frontend_log"`
}

// exitError carries the backend's exit code out of the command. Its message
// has already been shown on the console.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string { return e.msg }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if exitErr, ok := errors.AsType[*exitError](err); ok {
		return exitErr.code
	}

	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	var cfgFile string

	cmd := &cobra.Command{
		Use:   "backendshell [flags] [-- command [args...]]",
		Short: "Run a desktop app backend under supervision",
		Long: `backendshell launches a backend server as a child process, echoes its
stdout and stderr, reports how it exited, and kills it when the shell is
interrupted. Without a command it runs "python ../run_server.py".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if len(args) > 0 {
				cfg.Command = args
			}

			envFlag, _ := cmd.Flags().GetStringToString("env")
			cfg.Env = mergeEnv(cfg.Env, envFlag)

			return run(cmd.Context(), &cfg, cmd.InOrStdin(), stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ./backendshell.yaml)")
	flags.String("cwd", "", "working directory of the backend")
	flags.String("bundled", "", "packaged backend executable, used instead of the command when present")
	flags.StringToString("env", nil, "extra backend environment variables (KEY=VALUE)")
	flags.StringSlice("env-file", nil, "dotenv files loaded into the backend environment")
	flags.StringSlice("search-path", nil, "extra directories searched for the executable")
	flags.StringSlice("forward", nil, "streams to echo: stdout, stderr or all (default all)")
	flags.Duration("drain-timeout", 0, "how long the exit report waits for output to finish")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable coloured output")
	flags.Bool("tag-origin", false, "prefix each line with its stream name")
	flags.Bool("frontend-log", false, `read "log <msg>" and "error <msg>" lines from stdin and echo them as frontend messages`)

	for _, name := range []string{
		"cwd", "bundled", "env-file", "search-path", "forward",
		"drain-timeout", "log-level", "no-color", "tag-origin", "frontend-log",
	} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	return cmd
}

func loadConfig(v *viper.Viper, cfgFile string) error {
	v.SetDefault("command", defaultCommand)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("BACKENDSHELL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("backendshell")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; a broken one is not.
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); ok && cfgFile == "" {
			return nil
		}

		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// mergeEnv combines env from the config file with --env values. Viper folds
// config keys to lower case, so file keys are restored to the conventional
// upper case; flag keys are used as typed and win.
func mergeEnv(fromFile, fromFlag map[string]string) map[string]string {
	env := make(map[string]string, len(fromFile)+len(fromFlag))

	for k, v := range fromFile {
		env[strings.ToUpper(k)] = v
	}

	maps.Copy(env, fromFlag)

	return env
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, cfg *config, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	forward, err := backendshell.ParseOrigins(cfg.Forward...)
	if err != nil {
		return err
	}

	console := newPrinter(stdout, stderr, !cfg.NoColor, cfg.TagOrigin)

	command := backendshell.Command{Dir: cfg.Cwd}
	if len(cfg.Command) > 0 {
		command.Path = cfg.Command[0]
		command.Args = cfg.Command[1:]
	}

	lines, proc, err := backendshell.Start(ctx, command,
		backendshell.WithLogger(log),
		backendshell.WithBundled(cfg.Bundled),
		backendshell.WithEnv(cfg.Env),
		backendshell.WithEnvFiles(cfg.EnvFiles...),
		backendshell.WithSearchPaths(cfg.SearchPaths...),
		backendshell.WithForward(forward...),
		backendshell.WithDrainTimeout(cfg.DrainTimeout),
	)
	if err != nil {
		console.Fail(fmt.Sprintf("Failed to start backend: %v", err))

		return &exitError{code: 1, msg: err.Error(), err: err}
	}

	bridge := backendshell.NewBridge(log)
	bridge.Track(proc)

	stop := bridge.NotifySignals(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if cfg.FrontendLog {
		go forwardFrontendLog(stdin, console)
	}

	var exit backendshell.OutputLine

	for line := range lines {
		console.Line(line)

		if line.IsLifecycle() {
			exit = line
		}
	}

	return exitResult(exit, bridge)
}

// exitResult turns the final lifecycle line into the shell's own result. A
// backend killed because the shell was closing is a clean shutdown. Only the
// bridge kills the backend, and the exit can be reported before the bridge
// has finished closing, so a requested kill counts as closed.
func exitResult(exit backendshell.OutputLine, bridge *backendshell.Bridge) error {
	select {
	case <-bridge.Closed():
		return nil
	default:
	}

	if exit.Exit != nil && exit.Exit.Killed {
		return nil
	}

	if exit.Err != nil {
		return &exitError{code: 1, msg: exit.Text}
	}

	if exit.Exit == nil || exit.Exit.Success() {
		return nil
	}

	code := exit.Exit.Code
	if exit.Exit.Signaled {
		code = 1
	}

	return &exitError{code: code, msg: "backend " + exit.Text}
}

// forwardFrontendLog echoes messages a frontend writes to the shell's stdin.
func forwardFrontendLog(stdin io.Reader, console *printer) {
	scanner := bufio.NewScanner(stdin)

	for scanner.Scan() {
		kind, msg, _ := strings.Cut(scanner.Text(), " ")

		switch kind {
		case "log":
			console.Log(msg)
		case "error":
			console.Error(msg)
		}
	}
}

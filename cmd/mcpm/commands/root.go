// Package commands implements the CLI commands for mcpm.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/dashboard"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
)

// debugEnv raises the log level when no -v flag is given.
const debugEnv = "MCPM_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// cfg is the loaded configuration. It is nil until initConfig succeeds.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// fileLogger writes only to --log-file. The dashboard uses it because it
// owns the terminal.
var fileLogger *slog.Logger

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from config, else text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml, then "+config.DefaultPath()+")")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpm version {{.Version}}\n")

	// Silence errors and usage so Execute controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "mcpm",
	Short: "Manage MCP servers across AI assistant clients",
	Long: `mcpm finds the MCP servers declared by Claude Code, Cursor, VS Code,
Windsurf and Claude Desktop, shows them in one place, and lets you add,
remove, sync and health-check them.

Without a subcommand mcpm opens the interactive dashboard.`,
	Example: `  # Open the dashboard
  mcpm

  # List every discovered server
  mcpm list

  # Check that a server starts and answers the handshake
  mcpm check filesystem

  # Copy a server to every client that lacks it
  mcpm sync filesystem

  See Also: mcpm doctor, mcpm clients, mcpm config`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfigLoaded(cmd)
	},
	RunE: runDashboard,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	format := logFormat
	if format == "" && cfg != nil {
		format = cfg.LogFormat
	}

	var primaryHandler slog.Handler
	switch logging.Format(format) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}
	fileLogger = nil

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		})
		handlers = append(handlers, fileHandler)
		fileLogger = slog.New(fileHandler)
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfigLoaded surfaces a config load failure for every command that
// depends on the configuration. doctor and config still run so the user
// can inspect and repair the file.
func checkConfigLoaded(cmd *cobra.Command) error {
	if configLoadErr == nil {
		return nil
	}
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}
	if p := cmd.Parent(); p != nil && p.Name() == "config" {
		return nil
	}
	return errors.NewConfigError(configLoadErr)
}

// settings returns the loaded configuration, or the defaults when loading
// failed or has not run.
func settings() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.Default()
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	if !interactive() {
		return errors.NewUserError(
			errors.New("the dashboard needs an interactive terminal"),
			"Run: mcpm list",
		)
	}

	cwd, err := workingDir()
	if err != nil {
		return err
	}

	c := settings()
	return dashboard.Run(cmd.Context(), dashboard.Options{
		Cwd:            cwd,
		Logger:         fileLogger,
		DefaultClients: defaultClients(c),
		ShowSecrets:    c.ShowSecrets,
	}, c.Watch)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}
	printError(os.Stderr, err)
	return exitCode(err)
}

// exitCode maps err to a process exit code. Errors without an ExitError
// in their chain are user errors.
func exitCode(err error) int {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return errors.ExitUser
}

// printError writes err and any suggestion to w. An ExitError carrying
// neither an error nor a suggestion only sets the exit code; one with only
// a suggestion prints the suggestion as the error.
func printError(w io.Writer, err error) {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		switch {
		case exitErr.Err == nil && exitErr.Suggestion == "":
		case exitErr.Err == nil:
			fmt.Fprintf(w, "Error: %s\n", exitErr.Suggestion)
		case exitErr.Suggestion == "":
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		default:
			fmt.Fprintf(w, "Error: %v\n  %s\n", exitErr.Err, exitErr.Suggestion)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

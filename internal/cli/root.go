// Package cli wires the workmux commands. Every command resolves its own
// backend and state store so commands stay independently testable.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"workmux/internal/config"
	"workmux/internal/mux"
	"workmux/internal/state"
)

var (
	// Global output flags - inherited by all subcommands
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// ExitError carries a process exit code alongside the message printed to
// stderr. Commands return it instead of calling os.Exit so Execute remains
// the single exit point.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

var rootCmd = &cobra.Command{
	Use:   "workmux",
	Short: "Orchestrate git worktrees paired with multiplexer panes running agents",
	Long: `workmux pairs git worktrees with tmux or WezTerm panes so AI coding
agents can work on branches in parallel.

Agents report their state with set-window-status; coordinators observe it:

  workmux status                          # live agents across worktrees
  workmux wait feature-x --status waiting # block until the agent needs input
  workmux send feature-x "run the tests"  # type into the agent's pane
  workmux capture feature-x --lines 200   # read the agent's screen
  workmux run feature-x -- make test      # run a command in a visible pane`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if debugMode || os.Getenv("WORKMUX_DEBUG") != "" {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
		if noColor {
			os.Setenv("NO_COLOR", "1")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the merged configuration relative to the current
// directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	return config.Load(cwd)
}

// openStore opens the state store at the resolved state directory.
func openStore() (*state.Store, error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	return state.Open(dir)
}

// openBackend builds the multiplexer backend: the configured one when
// forced, otherwise detected from the environment.
func openBackend(cfg *config.Config) (mux.Backend, error) {
	kind := mux.Detect()
	if cfg != nil && cfg.Backend != "" {
		kind = mux.Kind(cfg.Backend)
	}
	return mux.New(kind)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"workmux/internal/state"
)

var (
	runTimeoutSecs int
	runKeep        bool
	runSplit       int
)

// runPollInterval is how often the coordinator checks for result.json.
const runPollInterval = 200 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run <worktree> -- <command> [args...]",
	Short: "Run a command in a visible split pane of the worktree's agent",
	Long: `Runs a command inside the worktree, in a new split below the agent's
pane so the user can watch it. Output is mirrored into run artifact
files and relayed to this process, which exits with the command's exit
code. A timeout exits 124 and leaves the pane for inspection.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := openBackend(cfg)
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}

		agent, err := agentForWorktree(store, backend, args[0])
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.RunTimeoutSecs) * time.Second
		if cmd.Flags().Changed("timeout") {
			timeout = time.Duration(runTimeoutSecs) * time.Second
		}

		runID := state.NewRunID()
		runDir, err := store.CreateRun(runID, &state.RunSpec{
			Command:      args[1:],
			WorktreePath: agent.State.Workdir,
			TimeoutSecs:  int(timeout / time.Second),
		})
		if err != nil {
			return err
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate own binary: %w", err)
		}
		helper := fmt.Sprintf("%s __exec --run-dir %s",
			shellQuote(exe), shellQuote(runDir))
		if _, err := backend.SplitPane(agent.State.PaneKey.PaneID, agent.State.Workdir, runSplit, helper); err != nil {
			return fmt.Errorf("split pane: %w", err)
		}

		result, err := pollRunResult(runDir, timeout)
		if err != nil {
			return err
		}
		return finishRun(runDir, result, runKeep)
	},
}

// finishRun relays captured output, settles the artifact directory and maps
// the outcome to the process exit code. A nil result means the deadline
// passed before the helper published one; the helper pane is left alone
// either way.
func finishRun(runDir string, result *state.RunResult, keep bool) error {
	relayRunOutput(runDir)

	if keep {
		fmt.Fprintf(os.Stderr, "Artifacts: %s\n", runDir)
	} else if err := state.CleanupRun(runDir); err != nil {
		return err
	}

	if result == nil {
		return &ExitError{Code: 124, Message: "Timeout"}
	}
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

func init() {
	runCmd.Flags().IntVar(&runTimeoutSecs, "timeout", 0, "Give up after this many seconds (default from config)")
	runCmd.Flags().BoolVar(&runKeep, "keep", false, "Keep the run artifact directory")
	runCmd.Flags().IntVar(&runSplit, "split", 30, "Helper pane height as a percentage")
	rootCmd.AddCommand(runCmd)
}

// pollRunResult waits for result.json, returning nil on timeout.
func pollRunResult(runDir string, timeout time.Duration) (*state.RunResult, error) {
	deadline := time.Now().Add(timeout)
	for {
		result, err := state.ReadRunResult(runDir)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		time.Sleep(runPollInterval)
	}
}

// relayRunOutput copies the captured stdout and stderr files to this
// process's streams, preserving their separation.
func relayRunOutput(runDir string) {
	if data, err := os.ReadFile(filepath.Join(runDir, state.RunStdoutFile)); err == nil {
		os.Stdout.Write(data)
	}
	if data, err := os.ReadFile(filepath.Join(runDir, state.RunStderrFile)); err == nil {
		os.Stderr.Write(data)
	}
}

// shellQuote wraps s in single quotes for the helper pane's shell line.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, c := range s {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '/' || c == '.' || c == '-' || c == '_') {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	var out []byte
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}

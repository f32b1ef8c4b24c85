package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"workmux/internal/reconcile"
	"workmux/internal/state"
)

var (
	sendFile    string
	sendNoEnter bool
)

var sendCmd = &cobra.Command{
	Use:   "send <worktree> [text]",
	Short: "Type text into the worktree's agent pane",
	Long: `Sends text to the pane of the agent working in the named worktree,
followed by Enter unless --no-enter is given. The text comes from the
argument or from --file, never both.`,
	// Validated at the argument-parsing boundary: the text argument and
	// --file are mutually exclusive and one of them is required.
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
			return err
		}
		if sendFile != "" && len(args) == 2 {
			return &ExitError{Code: 1, Message: "send takes text or --file, not both"}
		}
		if sendFile == "" && len(args) < 2 {
			return &ExitError{Code: 1, Message: "send needs text or --file"}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if len(args) == 2 {
			text = args[1]
		} else {
			data, err := os.ReadFile(sendFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", sendFile, err)
			}
			text = string(data)
		}

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
		return backend.SendText(agent.State.PaneKey.PaneID, text, !sendNoEnter)
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendFile, "file", "", "Read the text to send from this file")
	sendCmd.Flags().BoolVar(&sendNoEnter, "no-enter", false, "Do not press Enter after the text")
	rootCmd.AddCommand(sendCmd)
}

// agentForWorktree resolves the named worktree and returns the first live
// agent working under it.
func agentForWorktree(store *state.Store, backend reconcile.PaneSource, name string) (*reconcile.Agent, error) {
	wt, err := resolveWorktree(name)
	if err != nil {
		return nil, err
	}
	agents, err := reconcile.Reconcile(store, backend)
	if err != nil {
		return nil, err
	}
	matched := reconcile.MatchWorkdir(agents, wt.Path)
	if len(matched) == 0 {
		return nil, &ExitError{Code: 1, Message: fmt.Sprintf("No agent running in worktree '%s'", name)}
	}
	return &matched[0], nil
}

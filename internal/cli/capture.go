package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var captureLines int

// CaptureResult is the JSON output for the capture command.
type CaptureResult struct {
	Worktree string `json:"worktree"`
	PaneID   string `json:"pane_id"`
	Lines    int    `json:"lines"`
	Content  string `json:"content"`
}

var captureCmd = &cobra.Command{
	Use:   "capture <worktree>",
	Short: "Print the recent contents of the worktree's agent pane",
	Args:  cobra.ExactArgs(1),
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

		lines := cfg.CaptureLines
		if cmd.Flags().Changed("lines") {
			lines = captureLines
		}

		agent, err := agentForWorktree(store, backend, args[0])
		if err != nil {
			return err
		}
		content, err := backend.Capture(agent.State.PaneKey.PaneID, lines)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(CaptureResult{
				Worktree: args[0],
				PaneID:   agent.State.PaneKey.PaneID,
				Lines:    lines,
				Content:  content,
			})
		}
		fmt.Print(content)
		if content != "" && content[len(content)-1] != '\n' {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().IntVar(&captureLines, "lines", 0, "Scrollback lines to capture (default from config)")
	rootCmd.AddCommand(captureCmd)
}

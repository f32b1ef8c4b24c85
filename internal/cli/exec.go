package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"workmux/internal/state"
)

var execRunDir string

// execCmd is the hidden helper that runs inside the split pane the run
// coordinator creates. It executes the spec'd command with output going
// both to the pane (visible to the user) and to the artifact files, then
// publishes result.json as the completion signal.
var execCmd = &cobra.Command{
	Use:    "__exec",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := state.ReadRunSpec(execRunDir)
		if err != nil {
			return err
		}
		if len(spec.Command) == 0 {
			return fmt.Errorf("run spec has no command")
		}

		stdout, err := os.OpenFile(filepath.Join(execRunDir, state.RunStdoutFile),
			os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer stdout.Close()
		stderr, err := os.OpenFile(filepath.Join(execRunDir, state.RunStderrFile),
			os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer stderr.Close()

		child := exec.Command(spec.Command[0], spec.Command[1:]...)
		child.Dir = spec.WorktreePath
		child.Stdin = os.Stdin
		child.Stdout = io.MultiWriter(os.Stdout, stdout)
		child.Stderr = io.MultiWriter(os.Stderr, stderr)

		result := &state.RunResult{}
		if err := child.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				result.ExitCode = exitErr.ExitCode()
				if result.ExitCode == -1 {
					result.ExitCode = 1
					result.Signal = exitErr.ProcessState.String()
				}
			} else {
				// Spawn failure (command not found, bad workdir). Surface
				// it in the pane and still publish a result.
				fmt.Fprintln(os.Stderr, "workmux:", err)
				result.ExitCode = 127
			}
		}

		if err := state.WriteRunResult(execRunDir, result); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	execCmd.Flags().StringVar(&execRunDir, "run-dir", "", "Run artifact directory")
	_ = execCmd.MarkFlagRequired("run-dir")
	rootCmd.AddCommand(execCmd)
}

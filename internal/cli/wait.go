package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workmux/internal/reconcile"
	"workmux/internal/state"
)

var (
	waitStatuses string
	waitTimeout  int
)

var waitCmd = &cobra.Command{
	Use:   "wait <worktree>",
	Short: "Block until the worktree's agent reaches one of the given statuses",
	Long: `Polls the state store until an agent working in the named worktree
reports one of the requested statuses. Exits 0 on success; prints
"Timeout" and exits 1 when the deadline passes first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wanted, err := parseStatuses(waitStatuses)
		if err != nil {
			return err
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
		wt, err := resolveWorktree(args[0])
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.WaitTimeoutSecs) * time.Second
		if cmd.Flags().Changed("timeout") {
			timeout = time.Duration(waitTimeout) * time.Second
		}
		interval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
		deadline := time.Now().Add(timeout)

		for {
			agents, err := reconcile.Reconcile(store, backend)
			if err != nil {
				return err
			}
			for _, a := range reconcile.MatchWorkdir(agents, wt.Path) {
				if wanted[a.State.Status] {
					return nil
				}
			}
			if !time.Now().Add(interval).Before(deadline) {
				return &ExitError{Code: 1, Message: "Timeout"}
			}
			time.Sleep(interval)
		}
	},
}

func init() {
	waitCmd.Flags().StringVar(&waitStatuses, "status", "", "Comma-separated statuses to wait for (required)")
	waitCmd.Flags().IntVar(&waitTimeout, "timeout", 0, "Give up after this many seconds")
	_ = waitCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(waitCmd)
}

// parseStatuses splits and validates a comma-separated status list.
func parseStatuses(raw string) (map[string]bool, error) {
	wanted := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		s := strings.ToLower(strings.TrimSpace(part))
		if s == "" {
			continue
		}
		if !state.KnownStatus(s) {
			return nil, &ExitError{Code: 1, Message: fmt.Sprintf("Invalid status: %s", part)}
		}
		wanted[s] = true
	}
	if len(wanted) == 0 {
		return nil, &ExitError{Code: 1, Message: "Invalid status: (empty)"}
	}
	return wanted, nil
}

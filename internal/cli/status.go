package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workmux/internal/reconcile"
	"workmux/internal/util"
	"workmux/internal/worktree"
)

// AgentRow is the JSON output shape for one live agent.
type AgentRow struct {
	Worktree string `json:"worktree"`
	Branch   string `json:"branch,omitempty"`
	Status   string `json:"status"`
	AgeSecs  int64  `json:"age_secs"`
	Backend  string `json:"backend"`
	PaneID   string `json:"pane_id"`
	Workdir  string `json:"workdir"`
	Command  string `json:"command"`
}

var statusCmd = &cobra.Command{
	Use:   "status [worktree]",
	Short: "Show live agents and their reported statuses",
	Args:  cobra.MaximumNArgs(1),
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

		agents, err := reconcile.Reconcile(store, backend)
		if err != nil {
			return err
		}

		rows := buildAgentRows(agents, knownWorktrees())
		if len(args) == 1 {
			// A filter that matches nothing is still exit 0; status never
			// fails over an unknown name.
			rows = filterRows(rows, args[0])
		}

		if jsonOutput {
			return printJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Println("No active agents")
			return nil
		}
		fmt.Println(renderStatusTable(rows))
		return nil
	},
}

// commandColumnWidth bounds the COMMAND column so one long agent command
// line cannot blow up the table.
const commandColumnWidth = 24

func renderStatusTable(rows []AgentRow) string {
	table := NewStyledTable("WORKTREE", "BRANCH", "STATUS", "AGE", "PANE", "COMMAND")
	for _, r := range rows {
		table.AddRow(r.Worktree, r.Branch, r.Status, formatAge(r.AgeSecs), r.PaneID,
			util.Truncate(r.Command, commandColumnWidth))
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// knownWorktrees lists the current repository's worktrees; outside a git
// repository the list is empty and rows fall back to directory basenames.
func knownWorktrees() []worktree.Worktree {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	worktrees, err := worktree.List(cwd)
	if err != nil {
		return nil
	}
	return worktrees
}

// resolveWorktree finds a worktree by name or branch relative to the
// current directory.
func resolveWorktree(name string) (*worktree.Worktree, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	wt, err := worktree.Find(cwd, name)
	if err != nil {
		var nf *worktree.NotFoundError
		if errors.As(err, &nf) {
			return nil, &ExitError{Code: 1, Message: err.Error()}
		}
		return nil, err
	}
	return wt, nil
}

// buildAgentRows joins live agents against the repository worktrees. An
// agent working under a known worktree adopts its name and branch.
func buildAgentRows(agents []reconcile.Agent, worktrees []worktree.Worktree) []AgentRow {
	rows := make([]AgentRow, 0, len(agents))
	now := time.Now().Unix()
	for _, a := range agents {
		row := AgentRow{
			Worktree: filepath.Base(a.State.Workdir),
			Status:   a.State.Status,
			Backend:  a.State.PaneKey.Backend,
			PaneID:   a.State.PaneKey.PaneID,
			Workdir:  a.State.Workdir,
			Command:  a.State.Command,
		}
		if a.State.UpdatedAt > 0 && now >= a.State.UpdatedAt {
			row.AgeSecs = now - a.State.UpdatedAt
		}
		canonical := util.CanonicalPath(a.State.Workdir)
		for _, wt := range worktrees {
			if util.PathWithin(canonical, util.CanonicalPath(wt.Path)) {
				row.Worktree = wt.Name()
				row.Branch = wt.Branch
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// filterRows keeps rows whose worktree or branch matches the filter, by
// exact name first and substring otherwise.
func filterRows(rows []AgentRow, filter string) []AgentRow {
	matched := make([]AgentRow, 0, len(rows))
	for _, r := range rows {
		if r.Worktree == filter || r.Branch == filter ||
			strings.Contains(r.Worktree, filter) || (r.Branch != "" && strings.Contains(r.Branch, filter)) {
			matched = append(matched, r)
		}
	}
	return matched
}

// formatAge renders seconds as a compact single-unit age.
func formatAge(secs int64) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	default:
		return fmt.Sprintf("%dd", secs/86400)
	}
}

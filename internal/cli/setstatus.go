package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workmux/internal/mux"
	"workmux/internal/state"
)

var setWindowStatusCmd = &cobra.Command{
	Use:   "set-window-status <working|waiting|done|idle|clear>",
	Short: "Report this pane's agent status (run from inside the agent's pane)",
	Long: `Records the calling pane's agent status in the state store. Meant to be
invoked by agent hooks: the pane is identified from the multiplexer
environment, so the agent never needs to know its own pane id.

Outside a multiplexer pane this is a silent no-op so hooks stay portable.
"clear" removes the pane's record entirely.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := strings.ToLower(strings.TrimSpace(args[0]))
		if status != "clear" && !state.KnownStatus(status) {
			return &ExitError{Code: 1, Message: fmt.Sprintf("Invalid status: %s", args[0])}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := openBackend(cfg)
		if err != nil {
			return err
		}
		paneID, ok := backend.CurrentPane()
		if !ok {
			// Not inside a pane of this backend. Hooks run everywhere,
			// so this must not fail.
			slog.Debug("set-window-status outside a multiplexer pane, ignoring")
			return nil
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		key := mux.PaneKey(backend, paneID)

		if status == "clear" {
			return store.Delete(key)
		}

		panes, err := backend.LivePanes()
		if err != nil {
			return err
		}
		pane, ok := panes[paneID]
		if !ok {
			// The pane env var exists but the server does not list it;
			// racing a pane close. Nothing to record.
			slog.Debug("current pane not listed by multiplexer", "pane", paneID)
			return nil
		}

		return store.Upsert(&state.AgentState{
			PaneKey:   key,
			PanePID:   pane.PID,
			Command:   pane.Command,
			Workdir:   pane.Workdir,
			Status:    status,
			UpdatedAt: time.Now().Unix(),
		})
	},
}

func init() {
	rootCmd.AddCommand(setWindowStatusCmd)
}

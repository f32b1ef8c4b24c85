// Package reconcile cross-references persisted agent records with live
// multiplexer truth to produce the authoritative list of running agents.
package reconcile

import (
	"fmt"
	"log/slog"

	"workmux/internal/mux"
	"workmux/internal/state"
	"workmux/internal/util"
)

// PaneSource is the slice of the multiplexer backend reconciliation needs.
type PaneSource interface {
	Kind() mux.Kind
	InstanceID() string
	LivePanes() (map[string]mux.LivePane, error)
}

// Agent is one record confirmed live, paired with its current pane view.
// Produced fresh on every call and owned by the caller for one invocation.
type Agent struct {
	State state.AgentState
	Pane  mux.LivePane
}

// Reconcile loads every stored record, checks it against the live pane set
// and returns the survivors. Stale records are deleted as a side effect:
//
//   - pane gone entirely: the window was closed or the session killed;
//   - PID and command both changed: the pane id was recycled by an
//     unrelated process.
//
// A changed command with an unchanged PID is a benign status transition
// (agents shell out all the time), and a recycled PID alone can be OS PID
// reuse, so only the conjunction evicts. Records belonging to other
// backends or server instances are passed through untouched — a tmux
// invocation must not evict WezTerm agents it cannot see.
func Reconcile(store *state.Store, src PaneSource) ([]Agent, error) {
	records, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("list agent records: %w", err)
	}

	live, err := src.LivePanes()
	if err != nil {
		return nil, fmt.Errorf("query live panes: %w", err)
	}

	backend := string(src.Kind())
	instance := src.InstanceID()

	var agents []Agent
	for _, rec := range records {
		if rec.PaneKey.Backend != backend || rec.PaneKey.Instance != instance {
			continue
		}

		pane, ok := live[rec.PaneKey.PaneID]
		if !ok {
			slog.Debug("evicting record for vanished pane", "pane", rec.PaneKey)
			if err := store.Delete(rec.PaneKey); err != nil {
				return nil, err
			}
			continue
		}

		if pane.PID != rec.PanePID && pane.Command != rec.Command {
			slog.Debug("evicting record for recycled pane",
				"pane", rec.PaneKey, "stored_pid", rec.PanePID, "live_pid", pane.PID)
			if err := store.Delete(rec.PaneKey); err != nil {
				return nil, err
			}
			continue
		}

		agents = append(agents, Agent{State: rec, Pane: pane})
	}
	return agents, nil
}

// MatchWorkdir filters agents down to those whose recorded workdir equals
// the given worktree path or lives underneath it. Paths are canonicalized
// so symlinked checkouts still match.
func MatchWorkdir(agents []Agent, worktreePath string) []Agent {
	root := util.CanonicalPath(worktreePath)
	var matched []Agent
	for _, a := range agents {
		if util.PathWithin(util.CanonicalPath(a.State.Workdir), root) {
			matched = append(matched, a)
		}
	}
	return matched
}

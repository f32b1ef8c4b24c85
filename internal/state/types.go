// Package state provides filesystem-backed persistence for per-pane agent
// records and run artifacts. One JSON file per pane, written atomically;
// readers tolerate torn or malformed files by skipping them.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"workmux/internal/util"
)

// Backend identifiers persisted inside PaneKey.
const (
	BackendTmux    = "tmux"
	BackendWezTerm = "wezterm"
)

// PaneKey identifies a multiplexer pane across backends and server instances.
// It is the reconciliation join key; two keys are equal iff all fields match.
type PaneKey struct {
	Backend  string `json:"backend"`
	Instance string `json:"instance"`
	PaneID   string `json:"pane_id"`
}

// FileName returns the deterministic state-file name for this key.
// The sanitized parts keep the file readable; the hash suffix guarantees
// distinct keys never collide after sanitization, so updates for the same
// pane always overwrite the same file.
func (k PaneKey) FileName() string {
	raw := k.Backend + "\x00" + k.Instance + "\x00" + k.PaneID
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s__%s__%s-%s.json",
		util.SanitizeFilename(k.Backend),
		util.SanitizeFilename(k.Instance),
		util.SanitizeFilename(k.PaneID),
		hex.EncodeToString(sum[:4]))
}

// String renders the key for log and error messages.
func (k PaneKey) String() string {
	return k.Backend + "/" + k.Instance + "/" + k.PaneID
}

// Agent status values reported by hooks. The record field is an open string;
// these are the values workmux itself understands.
const (
	StatusWorking = "working"
	StatusWaiting = "waiting"
	StatusDone    = "done"
	StatusIdle    = "idle"
)

// KnownStatus reports whether s is a status value workmux recognizes.
// Used to reject typos at the CLI boundary before any polling starts.
func KnownStatus(s string) bool {
	switch s {
	case StatusWorking, StatusWaiting, StatusDone, StatusIdle:
		return true
	}
	return false
}

// AgentState is the persistent per-pane record, one JSON file per PaneKey.
type AgentState struct {
	PaneKey PaneKey `json:"pane_key"`

	// PID of the pane's shell process at the time of the last update.
	// Used for pane-recycling detection, not agent identity.
	PanePID int `json:"pane_pid"`

	// Foreground command observed when the status was set. A changed
	// command together with a changed PID means the pane was repurposed.
	Command string `json:"command"`

	// Absolute worktree directory the pane belongs to.
	Workdir string `json:"workdir"`

	// Last status explicitly reported by the agent or its hooks.
	Status string `json:"status"`

	// Unix seconds of the last update. Not a heartbeat; only moves when
	// a hook reports a status change.
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// Settings holds dashboard preferences persisted globally.
type Settings struct {
	SortMode    string `json:"sort_mode,omitempty"`
	PreviewSize int    `json:"preview_size,omitempty"`
}

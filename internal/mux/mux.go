// Package mux abstracts the two supported terminal multiplexers (tmux and
// WezTerm) behind one capability surface. Backends shell out to their own
// CLI and parse the textual response; a vanished session or pane is reported
// as "not found", never as an error, because reconciliation treats absence
// as a normal outcome.
package mux

import (
	"fmt"
	"os"

	"workmux/internal/state"
)

// Kind selects a backend. The set is closed: New switches exhaustively and
// backends embed sealed, so no third implementation can appear.
type Kind string

const (
	Tmux    Kind = state.BackendTmux
	WezTerm Kind = state.BackendWezTerm
)

// LivePane is the backend-independent view of one live pane.
type LivePane struct {
	PaneID  string
	PID     int    // shell process occupying the pane
	Command string // foreground command name
	Title   string
	Workdir string
}

// Backend is the capability interface every multiplexer must provide.
type Backend interface {
	// Kind names the backend ("tmux" or "wezterm").
	Kind() Kind

	// InstanceID disambiguates concurrent multiplexer servers (socket name).
	InstanceID() string

	// LivePanes returns every pane on this instance keyed by pane id.
	// A stopped server yields an empty map, not an error.
	LivePanes() (map[string]LivePane, error)

	// Capture returns the last lines of visible pane text, ANSI-stripped.
	Capture(paneID string, lines int) (string, error)

	// SendText delivers literal text to the pane, optionally followed by
	// a carriage return to submit it.
	SendText(paneID, text string, enter bool) error

	// SplitPane splits a new pane below paneID running command in workdir,
	// sized to percent of the window. Returns the new pane id.
	SplitPane(paneID, workdir string, percent int, command string) (string, error)

	// CurrentPane reports the pane this process runs inside, if any.
	CurrentPane() (string, bool)

	sealed()
}

// sealed prevents implementations outside this package.
type sealedMarker struct{}

func (sealedMarker) sealed() {}

// Detect picks the backend implied by the calling environment: a WezTerm
// pane when WEZTERM_PANE is set, tmux otherwise.
func Detect() Kind {
	if os.Getenv("WEZTERM_PANE") != "" {
		return WezTerm
	}
	return Tmux
}

// New constructs the backend for kind.
func New(kind Kind) (Backend, error) {
	switch kind {
	case Tmux:
		return newTmux(), nil
	case WezTerm:
		return newWezTerm(), nil
	default:
		return nil, fmt.Errorf("unknown multiplexer backend %q", kind)
	}
}

// PaneKey builds the persistent identity for a pane on this backend instance.
func PaneKey(b Backend, paneID string) state.PaneKey {
	return state.PaneKey{
		Backend:  string(b.Kind()),
		Instance: b.InstanceID(),
		PaneID:   paneID,
	}
}

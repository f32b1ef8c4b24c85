package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// stateWatcher turns fsnotify events on the agents directory into
// StateChangedMsg values, so the dashboard refreshes the moment a hook
// writes a status instead of waiting for the next tick.
type stateWatcher struct {
	fs *fsnotify.Watcher
}

func newStateWatcher(dir string) (*stateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &stateWatcher{fs: fsw}, nil
}

// wait blocks for the next relevant event. Rename covers the atomic
// temp-then-rename writes the state store performs.
func (w *stateWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					return StateChangedMsg{}
				}
			case _, ok := <-w.fs.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (w *stateWatcher) close() {
	_ = w.fs.Close()
}

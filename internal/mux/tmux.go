package mux

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const tmuxSep = "|#|"

// tmuxBackend shells out to the tmux CLI. The runner indirection exists so
// parser behavior is testable without a live server.
type tmuxBackend struct {
	sealedMarker
	run      func(args ...string) (string, error)
	instance string
}

func newTmux() *tmuxBackend {
	return &tmuxBackend{
		run:      runTmux,
		instance: tmuxInstanceID(),
	}
}

func runTmux(args ...string) (string, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// tmuxInstanceID derives the server identity from $TMUX, whose first
// comma-separated field is the server socket path. Outside tmux the default
// socket is assumed.
func tmuxInstanceID() string {
	env := os.Getenv("TMUX")
	if env == "" {
		return "default"
	}
	socket := env
	if i := strings.IndexByte(env, ','); i >= 0 {
		socket = env[:i]
	}
	if name := filepath.Base(socket); name != "" && name != "." {
		return name
	}
	return "default"
}

func (t *tmuxBackend) Kind() Kind         { return Tmux }
func (t *tmuxBackend) InstanceID() string { return t.instance }

func (t *tmuxBackend) CurrentPane() (string, bool) {
	pane := os.Getenv("TMUX_PANE")
	return pane, pane != ""
}

func (t *tmuxBackend) LivePanes() (map[string]LivePane, error) {
	format := strings.Join([]string{
		"#{pane_id}", "#{pane_pid}", "#{pane_current_command}",
		"#{pane_title}", "#{pane_current_path}",
	}, tmuxSep)
	out, err := t.run("list-panes", "-a", "-F", format)
	if err != nil {
		if tmuxServerGone(err) {
			return map[string]LivePane{}, nil
		}
		return nil, err
	}
	return parseTmuxPanes(out), nil
}

// tmuxServerGone recognizes the error shapes tmux emits when no server or
// session exists; those mean "no panes", not failure.
func tmuxServerGone(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "No such file or directory") ||
		strings.Contains(msg, "error connecting to")
}

func parseTmuxPanes(out string) map[string]LivePane {
	panes := make(map[string]LivePane)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, tmuxSep)
		if len(parts) < 5 {
			continue
		}
		pid, _ := strconv.Atoi(parts[1])
		panes[parts[0]] = LivePane{
			PaneID:  parts[0],
			PID:     pid,
			Command: parts[2],
			Title:   parts[3],
			Workdir: parts[4],
		}
	}
	return panes
}

func (t *tmuxBackend) Capture(paneID string, lines int) (string, error) {
	out, err := t.run("capture-pane", "-p", "-t", paneID, "-S", fmt.Sprintf("-%d", lines))
	if err != nil {
		return "", err
	}
	return StripANSI(out), nil
}

func (t *tmuxBackend) SendText(paneID, text string, enter bool) error {
	if _, err := t.run("send-keys", "-t", paneID, "-l", "--", text); err != nil {
		return err
	}
	if enter {
		if _, err := t.run("send-keys", "-t", paneID, "C-m"); err != nil {
			return err
		}
	}
	return nil
}

func (t *tmuxBackend) SplitPane(paneID, workdir string, percent int, command string) (string, error) {
	return t.run("split-window", "-v", "-t", paneID,
		"-c", workdir, "-p", strconv.Itoa(percent),
		"-P", "-F", "#{pane_id}", command)
}

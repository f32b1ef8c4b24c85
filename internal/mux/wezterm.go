package mux

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// wezTermBackend drives WezTerm through `wezterm cli`. Pane listings come
// back as JSON; the occupant PID and command are resolved through ps on the
// pane's tty, since the CLI listing does not expose process info.
type wezTermBackend struct {
	sealedMarker
	run      func(args ...string) (string, error)
	psForTTY func(tty string) (pid int, command string, err error)
	instance string
}

func newWezTerm() *wezTermBackend {
	return &wezTermBackend{
		run:      runWezTerm,
		psForTTY: psForTTY,
		instance: wezTermInstanceID(),
	}
}

func runWezTerm(args ...string) (string, error) {
	cmd := exec.Command("wezterm", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("wezterm %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

func wezTermInstanceID() string {
	if socket := os.Getenv("WEZTERM_UNIX_SOCKET"); socket != "" {
		if name := filepath.Base(socket); name != "" && name != "." {
			return name
		}
	}
	return "default"
}

// psForTTY asks ps for the session-leader process on a tty. That is the
// pane's shell, mirroring tmux's pane_pid/pane_current_command.
func psForTTY(tty string) (int, string, error) {
	tty = strings.TrimPrefix(tty, "/dev/")
	cmd := exec.Command("ps", "-t", tty, "-o", "pid=,comm=")
	out, err := cmd.Output()
	if err != nil {
		return 0, "", fmt.Errorf("ps -t %s: %w", tty, err)
	}
	return parsePSLine(string(out))
}

func parsePSLine(out string) (int, string, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		return pid, filepath.Base(fields[1]), nil
	}
	return 0, "", fmt.Errorf("no process found")
}

func (w *wezTermBackend) Kind() Kind         { return WezTerm }
func (w *wezTermBackend) InstanceID() string { return w.instance }

func (w *wezTermBackend) CurrentPane() (string, bool) {
	pane := os.Getenv("WEZTERM_PANE")
	return pane, pane != ""
}

// wezTermPane is the subset of `wezterm cli list --format json` we consume.
type wezTermPane struct {
	PaneID  int    `json:"pane_id"`
	Title   string `json:"title"`
	CWD     string `json:"cwd"`
	TTYName string `json:"tty_name"`
}

func (w *wezTermBackend) LivePanes() (map[string]LivePane, error) {
	out, err := w.run("cli", "list", "--format", "json")
	if err != nil {
		// A dead mux server means no panes exist.
		if strings.Contains(err.Error(), "Connection refused") ||
			strings.Contains(err.Error(), "No such file or directory") {
			return map[string]LivePane{}, nil
		}
		return nil, err
	}

	var listed []wezTermPane
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		return nil, fmt.Errorf("parse wezterm pane list: %w", err)
	}

	panes := make(map[string]LivePane, len(listed))
	for _, p := range listed {
		id := strconv.Itoa(p.PaneID)
		pane := LivePane{
			PaneID:  id,
			Title:   p.Title,
			Workdir: parseWezTermCWD(p.CWD),
		}
		if p.TTYName != "" {
			if pid, command, err := w.psForTTY(p.TTYName); err == nil {
				pane.PID = pid
				pane.Command = command
			}
		}
		panes[id] = pane
	}
	return panes, nil
}

// parseWezTermCWD turns the file://host/path URI from the listing into a
// plain path.
func parseWezTermCWD(cwd string) string {
	rest, ok := strings.CutPrefix(cwd, "file://")
	if !ok {
		return cwd
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return rest
}

func (w *wezTermBackend) Capture(paneID string, lines int) (string, error) {
	out, err := w.run("cli", "get-text", "--pane-id", paneID)
	if err != nil {
		return "", err
	}
	return StripANSI(lastLines(out, lines)), nil
}

func lastLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	split := strings.Split(s, "\n")
	if len(split) <= n {
		return s
	}
	return strings.Join(split[len(split)-n:], "\n")
}

func (w *wezTermBackend) SendText(paneID, text string, enter bool) error {
	if _, err := w.run("cli", "send-text", "--pane-id", paneID, "--no-paste", text); err != nil {
		return err
	}
	if enter {
		if _, err := w.run("cli", "send-text", "--pane-id", paneID, "--no-paste", "\r"); err != nil {
			return err
		}
	}
	return nil
}

func (w *wezTermBackend) SplitPane(paneID, workdir string, percent int, command string) (string, error) {
	return w.run("cli", "split-pane", "--pane-id", paneID,
		"--bottom", "--percent", strconv.Itoa(percent),
		"--cwd", workdir, "--", "sh", "-c", command)
}

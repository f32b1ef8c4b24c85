// Package worktree resolves git worktrees by shelling out to git. Creation
// and removal live elsewhere; this package only answers "which worktrees
// exist and which one is called X".
package worktree

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Worktree is one entry from `git worktree list`.
type Worktree struct {
	Path   string
	Branch string
}

// Name is the worktree's handle: the basename of its checkout directory.
func (w Worktree) Name() string {
	return filepath.Base(w.Path)
}

// NotFoundError reports a name that resolved to no known worktree.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Worktree not found: %s", e.Name)
}

// List returns all worktrees of the repository containing dir.
func List(dir string) ([]Worktree, error) {
	cmd := exec.Command("git", "-C", dir, "worktree", "list", "--porcelain")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git worktree list: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parsePorcelain(stdout.String()), nil
}

// parsePorcelain reads `git worktree list --porcelain` output: stanzas
// separated by blank lines, each starting with a "worktree <path>" line.
func parsePorcelain(out string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	flush := func() {
		if current != nil && current.Path != "" {
			worktrees = append(worktrees, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch ") && current != nil:
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "detached" && current != nil:
			current.Branch = "(detached)"
		}
	}
	flush()
	return worktrees
}

// Find resolves a name to a worktree, matching the directory basename first
// and the branch name second.
func Find(dir, name string) (*Worktree, error) {
	worktrees, err := List(dir)
	if err != nil {
		return nil, err
	}
	for i := range worktrees {
		if worktrees[i].Name() == name {
			return &worktrees[i], nil
		}
	}
	for i := range worktrees {
		if worktrees[i].Branch == name {
			return &worktrees[i], nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"workmux/internal/reconcile"
	"workmux/internal/state"
	"workmux/internal/worktree"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{61, "1m"},
		{7200, "2h"},
		{172800, "2d"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.secs); got != tt.want {
			t.Errorf("formatAge(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestBuildAgentRowsJoinsWorktrees(t *testing.T) {
	wt := t.TempDir()
	sub := filepath.Join(wt, "src")

	agents := []reconcile.Agent{
		{State: state.AgentState{
			PaneKey:   state.PaneKey{Backend: state.BackendTmux, Instance: "default", PaneID: "%3"},
			Workdir:   sub,
			Status:    state.StatusWorking,
			UpdatedAt: time.Now().Unix() - 90,
		}},
	}
	worktrees := []worktree.Worktree{
		{Path: wt, Branch: "feature-x"},
	}

	rows := buildAgentRows(agents, worktrees)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Worktree != filepath.Base(wt) {
		t.Errorf("worktree name not joined: %q", rows[0].Worktree)
	}
	if rows[0].Branch != "feature-x" {
		t.Errorf("branch not joined: %q", rows[0].Branch)
	}
	if rows[0].AgeSecs < 89 || rows[0].AgeSecs > 120 {
		t.Errorf("age out of range: %d", rows[0].AgeSecs)
	}
}

func TestBuildAgentRowsFallsBackToBasename(t *testing.T) {
	agents := []reconcile.Agent{
		{State: state.AgentState{Workdir: "/nowhere/feature-y", Status: state.StatusIdle}},
	}
	rows := buildAgentRows(agents, nil)
	if rows[0].Worktree != "feature-y" {
		t.Errorf("expected basename fallback, got %q", rows[0].Worktree)
	}
	if rows[0].Branch != "" {
		t.Errorf("unknown worktree must not invent a branch: %q", rows[0].Branch)
	}
}

func TestRenderStatusTableTruncatesCommand(t *testing.T) {
	long := "node --experimental-agent-harness --verbose"
	rows := []AgentRow{
		{Worktree: "feature-x", Branch: "feature-x", Status: "working", PaneID: "%1", Command: long},
	}

	out := renderStatusTable(rows)
	if !strings.Contains(out, "COMMAND") {
		t.Fatalf("missing COMMAND header:\n%s", out)
	}
	if strings.Contains(out, long) {
		t.Errorf("long command not truncated:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("truncated command should carry an ellipsis:\n%s", out)
	}
}

func TestFilterRows(t *testing.T) {
	rows := []AgentRow{
		{Worktree: "feature-x", Branch: "feature-x"},
		{Worktree: "fix-login", Branch: "bugfix/login"},
		{Worktree: "spike"},
	}

	tests := []struct {
		filter string
		want   int
	}{
		{"feature-x", 1},
		{"login", 1},
		{"i", 2}, // substring: fix-login and spike
		{"nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := filterRows(rows, tt.filter)
			if len(got) != tt.want {
				t.Errorf("filterRows(%q) matched %d rows, want %d", tt.filter, len(got), tt.want)
			}
			if got == nil {
				t.Error("filterRows must return an empty slice, not nil")
			}
		})
	}
}

func TestBuildAgentRowsEmptyIsNotNil(t *testing.T) {
	rows := buildAgentRows(nil, nil)
	if rows == nil {
		t.Error("rows must be an empty slice so JSON renders [] instead of null")
	}
}

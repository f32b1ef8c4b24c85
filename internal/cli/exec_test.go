package cli

import (
	"os"
	"path/filepath"
	"testing"

	"workmux/internal/state"
)

// runExecHelper points the hidden helper at runDir and invokes it the way
// the split pane would.
func runExecHelper(t *testing.T, runDir string) error {
	t.Helper()
	prev := execRunDir
	execRunDir = runDir
	t.Cleanup(func() { execRunDir = prev })
	return execCmd.RunE(execCmd, nil)
}

func createRun(t *testing.T, spec *state.RunSpec) string {
	t.Helper()
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runDir, err := store.CreateRun(state.NewRunID(), spec)
	if err != nil {
		t.Fatal(err)
	}
	return runDir
}

func readArtifact(t *testing.T, runDir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(runDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestExecHelperRecordsExitCodeAndSeparatesStreams(t *testing.T) {
	runDir := createRun(t, &state.RunSpec{
		Command:      []string{"sh", "-c", "echo OUT; echo ERR >&2; exit 42"},
		WorktreePath: t.TempDir(),
	})

	if err := runExecHelper(t, runDir); err != nil {
		t.Fatalf("exec helper: %v", err)
	}

	result, err := state.ReadRunResult(runDir)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.ExitCode != 42 {
		t.Errorf("result = %+v, want exit code 42", result)
	}
	if got := readArtifact(t, runDir, state.RunStdoutFile); got != "OUT\n" {
		t.Errorf("stdout artifact = %q, want %q", got, "OUT\n")
	}
	if got := readArtifact(t, runDir, state.RunStderrFile); got != "ERR\n" {
		t.Errorf("stderr artifact = %q, want %q", got, "ERR\n")
	}
}

func TestExecHelperRunsInWorktree(t *testing.T) {
	worktree := t.TempDir()
	if err := os.WriteFile(filepath.Join(worktree, "marker"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	runDir := createRun(t, &state.RunSpec{
		Command:      []string{"sh", "-c", "test -f marker"},
		WorktreePath: worktree,
	})

	if err := runExecHelper(t, runDir); err != nil {
		t.Fatalf("exec helper: %v", err)
	}
	result, err := state.ReadRunResult(runDir)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.ExitCode != 0 {
		t.Errorf("child did not run in the worktree: %+v", result)
	}
}

func TestExecHelperSpawnFailure(t *testing.T) {
	runDir := createRun(t, &state.RunSpec{
		Command:      []string{"workmux-no-such-binary-xyz"},
		WorktreePath: t.TempDir(),
	})

	if err := runExecHelper(t, runDir); err != nil {
		t.Fatalf("spawn failure must still publish a result, got %v", err)
	}
	result, err := state.ReadRunResult(runDir)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.ExitCode != 127 {
		t.Errorf("spawn failure result = %+v, want exit code 127", result)
	}
}

func TestExecHelperRejectsEmptySpec(t *testing.T) {
	runDir := createRun(t, &state.RunSpec{
		Command:      nil,
		WorktreePath: t.TempDir(),
	})
	if err := runExecHelper(t, runDir); err == nil {
		t.Fatal("expected error for a spec with no command")
	}
}

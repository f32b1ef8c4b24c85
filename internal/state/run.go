package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"workmux/internal/util"
)

// RunSpec describes a command the run coordinator hands to the exec helper.
// Written to spec.json before the helper pane starts.
type RunSpec struct {
	Command      []string `json:"command"`
	WorktreePath string   `json:"worktree_path"`
	TimeoutSecs  int      `json:"timeout_secs,omitempty"`
}

// RunResult is written by the exec helper once the child exits. Its presence
// on disk is the completion signal the coordinator polls for.
type RunResult struct {
	ExitCode int    `json:"exit_code"`
	Signal   string `json:"signal,omitempty"`
}

// Artifact file names inside a run directory.
const (
	runSpecFile   = "spec.json"
	runResultFile = "result.json"
	RunStdoutFile = "stdout"
	RunStderrFile = "stderr"
)

// NewRunID returns a unique run identifier: hex millis plus pid, which is
// collision resistant across concurrent coordinators on one host.
func NewRunID() string {
	return fmt.Sprintf("%x-%d", time.Now().UnixMilli(), os.Getpid())
}

func validRunID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// CreateRun makes <root>/runs/<id>/ with the spec and empty output files,
// returning the absolute run directory.
func (s *Store) CreateRun(id string, spec *RunSpec) (string, error) {
	if !validRunID(id) {
		return "", fmt.Errorf("invalid run id %q", id)
	}
	dir := filepath.Join(s.root, "runs", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run spec: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, runSpecFile), data, 0o644); err != nil {
		return "", fmt.Errorf("write run spec: %w", err)
	}

	// Pre-create outputs so the coordinator can stream them even when the
	// child produced nothing.
	for _, name := range []string{RunStdoutFile, RunStderrFile} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			return "", fmt.Errorf("create %s: %w", name, err)
		}
	}
	return dir, nil
}

// ReadRunSpec loads spec.json from a run directory.
func ReadRunSpec(runDir string) (*RunSpec, error) {
	data, err := os.ReadFile(filepath.Join(runDir, runSpecFile))
	if err != nil {
		return nil, fmt.Errorf("read run spec: %w", err)
	}
	var spec RunSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse run spec: %w", err)
	}
	return &spec, nil
}

// ReadRunResult returns the result if the exec helper has finished, nil
// otherwise.
func ReadRunResult(runDir string) (*RunResult, error) {
	data, err := os.ReadFile(filepath.Join(runDir, runResultFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run result: %w", err)
	}
	var result RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse run result: %w", err)
	}
	return &result, nil
}

// WriteRunResult atomically publishes the result file. The rename is the
// commit point the coordinator's poll loop observes.
func WriteRunResult(runDir string, result *RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run result: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(runDir, runResultFile), data, 0o644); err != nil {
		return fmt.Errorf("write run result: %w", err)
	}
	return nil
}

// CleanupRun removes a run directory and its artifacts.
func CleanupRun(runDir string) error {
	return os.RemoveAll(runDir)
}

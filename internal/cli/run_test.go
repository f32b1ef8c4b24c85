package cli

import (
	"errors"
	"os"
	"testing"
	"time"

	"workmux/internal/state"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"/usr/local/bin/workmux", "/usr/local/bin/workmux"},
		{"a b", "'a b'"},
		{"it's", "'it'\\''s'"},
		{"$HOME", "'$HOME'"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPollRunResultFindsExistingResult(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runDir, err := store.CreateRun(state.NewRunID(), &state.RunSpec{
		Command:      []string{"true"},
		WorktreePath: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := state.WriteRunResult(runDir, &state.RunResult{ExitCode: 7}); err != nil {
		t.Fatal(err)
	}

	result, err := pollRunResult(runDir, time.Second)
	if err != nil {
		t.Fatalf("pollRunResult: %v", err)
	}
	if result == nil || result.ExitCode != 7 {
		t.Errorf("result = %+v", result)
	}
}

func TestFinishRunPropagatesExitCodeAndCleansUp(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runDir, err := store.CreateRun(state.NewRunID(), &state.RunSpec{
		Command:      []string{"false"},
		WorktreePath: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = finishRun(runDir, &state.RunResult{ExitCode: 42}, false)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 42 {
		t.Fatalf("expected exit 42, got %v", err)
	}
	if _, err := os.Stat(runDir); !os.IsNotExist(err) {
		t.Error("artifact directory should be removed without --keep")
	}
}

func TestFinishRunTimeoutCleansUpUnlessKept(t *testing.T) {
	tests := []struct {
		name     string
		keep     bool
		wantKept bool
	}{
		{"default removes artifacts", false, false},
		{"keep retains artifacts", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := state.Open(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			runDir, err := store.CreateRun(state.NewRunID(), &state.RunSpec{
				Command:      []string{"sleep", "60"},
				WorktreePath: t.TempDir(),
			})
			if err != nil {
				t.Fatal(err)
			}

			err = finishRun(runDir, nil, tt.keep)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != 124 || exitErr.Message != "Timeout" {
				t.Fatalf("expected exit 124 with Timeout, got %v", err)
			}
			_, statErr := os.Stat(runDir)
			if tt.wantKept && statErr != nil {
				t.Errorf("artifacts should survive with --keep: %v", statErr)
			}
			if !tt.wantKept && !os.IsNotExist(statErr) {
				t.Error("artifacts should be removed on timeout without --keep")
			}
		})
	}
}

func TestFinishRunZeroExit(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runDir, err := store.CreateRun(state.NewRunID(), &state.RunSpec{
		Command:      []string{"true"},
		WorktreePath: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := finishRun(runDir, &state.RunResult{ExitCode: 0}, false); err != nil {
		t.Errorf("zero exit should return nil, got %v", err)
	}
}

func TestPollRunResultTimesOut(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runDir, err := store.CreateRun(state.NewRunID(), &state.RunSpec{
		Command:      []string{"sleep", "60"},
		WorktreePath: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	result, err := pollRunResult(runDir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("pollRunResult: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on timeout, got %+v", result)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("poll loop overshot the deadline badly")
	}
}

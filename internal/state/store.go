package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"workmux/internal/util"
)

const agentsDirName = "agents"

// Store persists agent records under a single root directory:
//
//	<root>/
//	├── settings.json          dashboard preferences
//	├── agents/                one JSON file per pane
//	│   └── tmux__default__%1-<hash>.json
//	└── runs/                  run command artifacts (see run.go)
//
// The root comes from config.StateDir and is threaded in explicitly so tests
// can isolate themselves with a temp directory.
type Store struct {
	root string
}

// Open creates a Store rooted at dir, creating the directory layout if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("state: empty root directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, agentsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// AgentsDir returns the directory holding per-pane records. The dashboard
// watches it for changes.
func (s *Store) AgentsDir() string {
	return filepath.Join(s.root, agentsDirName)
}

func (s *Store) agentsDir() string {
	return s.AgentsDir()
}

func (s *Store) agentPath(key PaneKey) string {
	return filepath.Join(s.agentsDir(), key.FileName())
}

// Upsert creates or replaces the record for its pane key. The write is
// atomic, so a concurrent List never sees a partial file; concurrent writers
// for the same key resolve to last-write-wins.
func (s *Store) Upsert(rec *AgentState) error {
	if rec.UpdatedAt == 0 {
		rec.UpdatedAt = time.Now().Unix()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode agent state: %w", err)
	}
	if err := util.AtomicWriteFile(s.agentPath(rec.PaneKey), data, 0o644); err != nil {
		return fmt.Errorf("write agent state: %w", err)
	}
	return nil
}

// Get reads the record for key. Returns nil with no error when the record
// does not exist or cannot be parsed.
func (s *Store) Get(key PaneKey) (*AgentState, error) {
	return readAgentFile(s.agentPath(key))
}

// List returns every parseable agent record. Files that fail to parse are
// skipped: a concurrent writer may be mid-write, so a malformed file is
// treated as transiently absent rather than an error.
func (s *Store) List() ([]AgentState, error) {
	entries, err := os.ReadDir(s.agentsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents directory: %w", err)
	}

	var agents []AgentState
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := readAgentFile(filepath.Join(s.agentsDir(), name))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			agents = append(agents, *rec)
		}
	}
	return agents, nil
}

// Delete removes the record for key. No-op if the file is already gone.
func (s *Store) Delete(key PaneKey) error {
	err := os.Remove(s.agentPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete agent state: %w", err)
	}
	return nil
}

// LoadSettings reads dashboard settings, returning defaults when the file is
// missing or corrupt.
func (s *Store) LoadSettings() Settings {
	var settings Settings
	data, err := os.ReadFile(filepath.Join(s.root, "settings.json"))
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("corrupted settings file, using defaults", "error", err)
		return Settings{}
	}
	return settings
}

// SaveSettings persists dashboard settings atomically.
func (s *Store) SaveSettings(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(s.root, "settings.json"), data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func readAgentFile(path string) (*AgentState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agent state: %w", err)
	}
	var rec AgentState
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Debug("skipping unparseable state file", "path", path, "error", err)
		return nil, nil
	}
	return &rec, nil
}

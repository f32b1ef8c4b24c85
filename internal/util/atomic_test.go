package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates file with correct content", func(t *testing.T) {
		path := filepath.Join(tmpDir, "a.json")
		if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0o644); err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading file: %v", err)
		}
		if string(got) != `{"ok":true}` {
			t.Errorf("content mismatch: got %q", string(got))
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "b.json")
		if err := AtomicWriteFile(path, []byte("first"), 0o644); err != nil {
			t.Fatalf("first write: %v", err)
		}
		if err := AtomicWriteFile(path, []byte("second"), 0o644); err != nil {
			t.Fatalf("second write: %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "second" {
			t.Errorf("expected last write to win, got %q", string(got))
		}
	})

	t.Run("handles empty content", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty")
		if err := AtomicWriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("expected empty file, got %d bytes", info.Size())
		}
	})

	t.Run("errors on missing parent directory", func(t *testing.T) {
		path := filepath.Join(tmpDir, "no", "such", "dir", "f")
		if err := AtomicWriteFile(path, []byte("x"), 0o644); err == nil {
			t.Fatal("expected error for nonexistent parent directory")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		path := filepath.Join(tmpDir, "c.json")
		if err := AtomicWriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("AtomicWriteFile failed: %v", err)
		}
		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatalf("reading dir: %v", err)
		}
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), "workmux-atomic-") {
				t.Errorf("temp file left behind: %s", entry.Name())
			}
		}
	})
}

func TestAtomicWriteFileConcurrent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "concurrent.json")

	done := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			content := []byte(strings.Repeat(string(rune('a'+n)), 64))
			if err := AtomicWriteFile(path, content, 0o644); err != nil {
				t.Errorf("concurrent write %d: %v", n, err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if len(content) != 64 {
		t.Fatalf("unexpected length %d, wanted one intact write", len(content))
	}
	for i, b := range content {
		if b != content[0] {
			t.Fatalf("torn write visible at byte %d", i)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short unchanged", "abc", 10, "abc"},
		{"exact unchanged", "abcde", 5, "abcde"},
		{"cut with ellipsis", "abcdefghij", 8, "abcde..."},
		{"zero", "abc", 0, ""},
		{"tiny budget", "abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tmux", "tmux"},
		{"/tmp/sock", "-tmp-sock"},
		{"a b:c", "a_b-c"},
		{"pane|%1", "pane-%1"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, tt.want, got)
		}
	}
}

func TestPathWithin(t *testing.T) {
	if !PathWithin("/a/b/c", "/a/b") {
		t.Error("expected /a/b/c within /a/b")
	}
	if !PathWithin("/a/b", "/a/b") {
		t.Error("expected path within itself")
	}
	if PathWithin("/a/bc", "/a/b") {
		t.Error("sibling with shared prefix must not match")
	}
}

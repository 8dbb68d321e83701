package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	t.Setenv("MEM0_USER_ID", "")
	path := filepath.Join(t.TempDir(), "mem0.json5")
	writeFile(t, path, `{userId: "alice"}`)
	current, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, current)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 20 * time.Millisecond
	got := make(chan *Config, 4)
	w.OnChange(func(cfg *Config) { got <- cfg })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeFile(t, path, `{userId: "bob"}`)
	select {
	case cfg := <-got:
		if cfg.UserID != "bob" {
			t.Errorf("UserID = %q, want bob", cfg.UserID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after change")
	}
}

func TestWatcher_InvalidAndUnchangedAreDropped(t *testing.T) {
	t.Setenv("MEM0_USER_ID", "")
	path := filepath.Join(t.TempDir(), "mem0.json5")
	writeFile(t, path, `{userId: "alice"}`)
	current, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, current)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	w.OnChange(func(*Config) { calls++ })

	writeFile(t, path, `{recallThreshold: 7}`)
	w.reload()
	writeFile(t, path, `{userId: "alice"}`)
	w.reload()
	if calls != 0 {
		t.Errorf("handler called %d times, want 0", calls)
	}

	writeFile(t, path, `{userId: "carol"}`)
	w.reload()
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	w.Stop()
	w.Stop()
}

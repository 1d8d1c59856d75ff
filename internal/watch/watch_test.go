package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "manifest.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "sub/16_art.JSON", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "sub/old.json", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "manifest.yml", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "manifest.yaml", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: ".manifest.yaml.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.ev); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestDueDebounces(t *testing.T) {
	w := New(t.TempDir(), time.Second, func(context.Context) {})
	now := time.Now()

	if w.due(now) {
		t.Fatal("nothing pending should not be due")
	}
	w.mark()
	if w.due(time.Now()) {
		t.Error("change should not be due before the debounce period")
	}
	if !w.due(now.Add(2 * time.Second)) {
		t.Error("change should be due after the debounce period")
	}
	if w.due(now.Add(3 * time.Second)) {
		t.Error("a change fires once")
	}
	if w.Fired() != 1 {
		t.Errorf("Fired: got %d, want 1", w.Fired())
	}
}

func TestRunReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub_categories")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(dir, 50*time.Millisecond, func(context.Context) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	// Give the watcher time to register the directories.
	time.Sleep(100 * time.Millisecond)

	for i := range 3 {
		data := []byte(`{"subcategories": []}` + string(rune('0'+i)))
		if err := os.WriteFile(filepath.Join(sub, "16_art.json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Errorf("onChange calls: got %d, want 1 for a burst of writes", calls.Load())
	}
}

func TestRunMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), 0, func(context.Context) {})
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

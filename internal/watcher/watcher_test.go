package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string) (*Watcher, context.CancelFunc, chan error) {
	t.Helper()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Debounce = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, cancel, done
}

func TestWatcherReportsBackgrounds(t *testing.T) {
	dir := t.TempDir()
	w, _, _ := startWatcher(t, dir)

	path := filepath.Join(dir, "day03_02.png")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Day != 3 || ev.Index != 2 || ev.Path != path {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("writes should be debounced into one event, got extra %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherClosesEventsOnCancel(t *testing.T) {
	w, cancel, done := startWatcher(t, t.TempDir())
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run() error = %v", err)
		}
		done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if _, ok := <-w.Events(); ok {
		t.Fatal("events channel should be closed")
	}
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

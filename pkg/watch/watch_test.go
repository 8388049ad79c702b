package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDebounceBatchesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan string)
	out := Debounce(ctx, in, 30*time.Millisecond, time.Second)

	for _, p := range []string{"b.yaml", "a.yaml", "b.yaml"} {
		in <- p
	}

	select {
	case c := <-out:
		if want := []string{"a.yaml", "b.yaml"}; !reflect.DeepEqual(c.Paths, want) {
			t.Errorf("Paths = %v, want %v", c.Paths, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no batch flushed")
	}
}

func TestDebounceMaxWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan string)
	out := Debounce(ctx, in, time.Hour, 40*time.Millisecond)
	in <- "a.json"

	select {
	case c := <-out:
		if len(c.Paths) != 1 || c.Paths[0] != "a.json" {
			t.Errorf("Paths = %v", c.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("max wait did not force a flush")
	}
}

func TestDebounceFlushesOnClose(t *testing.T) {
	in := make(chan string, 2)
	out := Debounce(context.Background(), in, time.Hour, time.Hour)
	in <- "x.toml"
	close(in)

	c, ok := <-out
	if !ok || len(c.Paths) != 1 {
		t.Fatalf("got %v, %v; want one pending path", c, ok)
	}
	if _, ok := <-out; ok {
		t.Error("output should close after input closes")
	}
}

func TestDebounceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := Debounce(ctx, make(chan string), time.Hour, time.Hour)
	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("unexpected batch after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("output not closed after cancel")
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "openapi.yaml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, Options{Quiet: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Change, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(c Change) { got <- c }) }()

	// Give the watcher goroutine a moment to start reading events.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-got:
		if len(c.Paths) != 1 || c.Paths[0] != target {
			t.Errorf("Paths = %v, want [%s]", c.Paths, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope", "schema.json")}, Options{})
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestCloseWithoutRun(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "schema.yaml")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// Package watch reports debounced changes to a set of schema files.
//
// Editors commonly save by writing a temporary file and renaming it over the
// original, which drops a watch placed on the file itself. The watcher therefore
// subscribes to each file's directory and filters events by name.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Default debounce timings.
const (
	DefaultQuiet   = 150 * time.Millisecond
	DefaultMaxWait = 2 * time.Second
)

// Options tunes a Watcher. Zero durations take the defaults; a nil Logger
// discards output.
type Options struct {
	Quiet   time.Duration
	MaxWait time.Duration
	Logger  *log.Logger
}

// Watcher watches a fixed set of files.
type Watcher struct {
	fsw    *fsnotify.Watcher
	files  map[string]bool
	opts   Options
	logger *log.Logger
}

// New starts watching paths. Every path must resolve to an absolute name;
// the files themselves may not exist yet.
func New(paths []string, opts Options) (*Watcher, error) {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(nopWriter{})
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, files: map[string]bool{}, opts: opts, logger: logger}

	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", "path", dir)
	}
	return w, nil
}

// Close releases the watcher without running it. Closing twice is harmless.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run forwards debounced changes to onChange until ctx is cancelled. Calls to
// onChange are sequential; a slow callback delays, but never overlaps, the
// next batch. Run closes the watcher and returns nil once ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	defer w.fsw.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	raw := make(chan string)
	changes := Debounce(ctx, raw, w.opts.Quiet, w.opts.MaxWait)

	go func() {
		defer close(raw)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !w.relevant(ev) {
					continue
				}
				w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
				select {
				case raw <- ev.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "error", err)
			}
		}
	}()

	for c := range changes {
		onChange(c)
	}
	return nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

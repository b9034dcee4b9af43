// Package inbox books trade files dropped into a directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tradebook/internal/logger"
	"tradebook/internal/trade"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

const (
	defaultSettle = 200 * time.Millisecond
	failedDir     = "failed"
)

// Handler books one file's content. A non-nil error moves the file to the
// failed directory.
type Handler func(ctx context.Context, path string, data []byte) error

type Watcher struct {
	fs        afero.Fs
	dir       string
	processed string
	settle    time.Duration
	handle    Handler
}

type Option func(*Watcher)

// WithSettle sets how long a file must stay quiet before it is read.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New watches dir; handled files move to processedDir (default
// <dir>/processed).
func New(dir, processedDir string, h Handler, opts ...Option) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("inbox: directory is required")
	}
	if h == nil {
		return nil, errors.New("inbox: handler is required")
	}
	if strings.TrimSpace(processedDir) == "" {
		processedDir = filepath.Join(dir, "processed")
	}
	w := &Watcher{fs: afero.NewOsFs(), dir: dir, processed: processedDir, settle: defaultSettle, handle: h}
	for _, opt := range opts {
		opt(w)
	}
	for _, d := range []string{w.dir, w.processed, filepath.Join(w.processed, failedDir)} {
		if err := w.fs.MkdirAll(d, 0o755); err != nil {
			return nil, &trade.IOError{Op: "mkdir", Destination: d, Err: err}
		}
	}
	return w, nil
}

// ProcessExisting books files already waiting in the inbox, in name order.
func (w *Watcher) ProcessExisting(ctx context.Context) int {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		logger.Errorf("inbox: list %s: %v", w.dir, err)
		return 0
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isTradeFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		w.processFile(ctx, filepath.Join(w.dir, name))
	}
	return len(names)
}

// Run drains the inbox, then books new files until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return &trade.IOError{Op: "watch", Destination: w.dir, Err: err}
	}
	if n := w.ProcessExisting(ctx); n > 0 {
		logger.Infof("inbox: booked %d waiting file(s) from %s", n, w.dir)
	}

	pending := make(map[string]*time.Timer)
	ready := make(chan string, 16)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isTradeFile(evt.Name) || !evt.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			if t, ok := pending[evt.Name]; ok {
				t.Reset(w.settle)
				continue
			}
			name := evt.Name
			pending[name] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})
		case name := <-ready:
			delete(pending, name)
			w.processFile(ctx, name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("inbox: watcher error: %v", err)
		}
	}
}

func (w *Watcher) processFile(ctx context.Context, path string) {
	data, err := afero.ReadFile(w.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	log := logger.With("source", path)
	if err != nil {
		log.Error("inbox read failed", "error", err)
		return
	}
	dest := filepath.Join(w.processed, filepath.Base(path))
	if herr := w.handle(ctx, path, data); herr != nil {
		log.Warn("inbox file failed", "error", herr)
		dest = filepath.Join(w.processed, failedDir, filepath.Base(path))
		reason := []byte(herr.Error() + "\n")
		if err := afero.WriteFile(w.fs, dest+".err", reason, 0o644); err != nil {
			log.Error("inbox write reason failed", "error", err)
		}
	}
	if err := w.fs.Rename(path, dest); err != nil {
		log.Error("inbox move failed", "dest", dest, "error", err)
		return
	}
	log.Info("inbox file handled", "dest", dest)
}

func isTradeFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}

// Package watch provides continuous monitoring of a build dataset. It
// watches the CSV file for changes and re-runs the analysis pipeline when
// the content actually changes, debouncing rapid writes.
package watch

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devflowhq/devflow/models"
)

// ResultHandler is called with each fresh analysis result.
type ResultHandler func(ctx context.Context, result *models.BuildAnalysisResult) error

// Analyzer produces an analysis from the watched file.
type Analyzer interface {
	Analyze() (*models.BuildAnalysisResult, error)
}

// Watcher monitors a data file and re-analyzes on change.
type Watcher struct {
	dataPath string
	analyzer Analyzer
	handler  ResultHandler
	watcher  *fsnotify.Watcher
	debounce time.Duration
	hasher   *contentHash

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	timer *time.Timer
}

// Config holds watcher configuration.
type Config struct {
	DataPath string
	Analyzer Analyzer
	Handler  ResultHandler
	Debounce time.Duration
}

// New creates a watcher for the configured data file.
func New(cfg Config) (*Watcher, error) {
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("data path is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		dataPath: cfg.DataPath,
		analyzer: cfg.Analyzer,
		handler:  cfg.Handler,
		watcher:  fw,
		debounce: debounce,
		hasher:   newContentHash(),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. Editors replace files on save, so the parent
// directory is watched and events are filtered to the data file.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.dataPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Seed the hash so an unchanged file does not trigger on startup.
	w.hasher.Changed(w.dataPath)

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop terminates the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "error", err)

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.dataPath) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if !w.hasher.Changed(w.dataPath) {
		slog.Debug("skip re-analysis, content unchanged", "path", w.dataPath)
		return
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reanalyze)
	w.mu.Unlock()
}

func (w *Watcher) reanalyze() {
	if w.ctx.Err() != nil {
		return
	}

	slog.Info("data file changed, re-analyzing", "path", w.dataPath)
	result, err := w.analyzer.Analyze()
	if err != nil {
		slog.Warn("re-analysis failed", "error", err)
		return
	}
	if w.handler != nil {
		if err := w.handler(w.ctx, result); err != nil {
			slog.Warn("result handler failed", "error", err)
		}
	}
}

// contentHash tracks the data file's content hash so rewrite events with
// identical bytes do not trigger re-analysis.
type contentHash struct {
	mu   sync.Mutex
	last string
}

func newContentHash() *contentHash {
	return &contentHash{}
}

// Changed reports whether the file content differs from the last call.
func (c *contentHash) Changed(path string) bool {
	hash, err := hashFile(path)
	if err != nil {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changed := hash != c.last
	c.last = hash
	return changed
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

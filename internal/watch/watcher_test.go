package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devflowhq/devflow/models"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	calls  int
	result *models.BuildAnalysisResult
	err    error
}

func (s *stubAnalyzer) Analyze() (*models.BuildAnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func writeData(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Analyzer: &stubAnalyzer{}}); err == nil {
		t.Error("expected error for missing data path")
	}
	if _, err := New(Config{DataPath: "builds.csv"}); err == nil {
		t.Error("expected error for missing analyzer")
	}

	w, err := New(Config{DataPath: "builds.csv", Analyzer: &stubAnalyzer{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()
	if w.debounce != 500*time.Millisecond {
		t.Errorf("default debounce = %v", w.debounce)
	}
}

func TestContentHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.csv")
	writeData(t, path, "a,b\n1,2\n")

	h := newContentHash()
	if !h.Changed(path) {
		t.Error("first observation should report changed")
	}
	if h.Changed(path) {
		t.Error("unchanged content should not report changed")
	}

	writeData(t, path, "a,b\n1,3\n")
	if !h.Changed(path) {
		t.Error("rewritten content should report changed")
	}

	// An unreadable file is treated as changed rather than silently skipped.
	if !h.Changed(filepath.Join(t.TempDir(), "missing.csv")) {
		t.Error("missing file should report changed")
	}
}

func TestHandleEvent_Filtering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "builds.csv")
	writeData(t, path, "a,b\n1,2\n")

	analyzer := &stubAnalyzer{result: &models.BuildAnalysisResult{NBuilds: 1}}
	var handled sync.WaitGroup
	w, err := New(Config{
		DataPath: path,
		Analyzer: analyzer,
		Debounce: 10 * time.Millisecond,
		Handler: func(context.Context, *models.BuildAnalysisResult) error {
			handled.Done()
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.hasher.Changed(path) // seed

	// Events for other files in the directory are ignored.
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "other.csv"), Op: fsnotify.Write})
	// Chmod-only events are ignored.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	// A write with unchanged content is ignored.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	time.Sleep(50 * time.Millisecond)
	if got := analyzer.callCount(); got != 0 {
		t.Fatalf("analyzer calls = %d, want 0", got)
	}

	// A real content change triggers one debounced re-analysis.
	writeData(t, path, "a,b\n9,9\n")
	handled.Add(1)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	handled.Wait()
	if got := analyzer.callCount(); got != 1 {
		t.Errorf("analyzer calls = %d, want 1", got)
	}
}

func TestHandleEvent_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "builds.csv")
	writeData(t, path, "v1")

	analyzer := &stubAnalyzer{result: &models.BuildAnalysisResult{}}
	handled := make(chan struct{}, 4)
	w, err := New(Config{
		DataPath: path,
		Analyzer: analyzer,
		Debounce: 50 * time.Millisecond,
		Handler: func(context.Context, *models.BuildAnalysisResult) error {
			handled <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// A burst of distinct writes collapses into one re-analysis.
	for _, content := range []string{"v2", "v3", "v4"} {
		writeData(t, path, content)
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	}

	select {
	case <-handled:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for debounced re-analysis")
	}
	time.Sleep(100 * time.Millisecond)
	if got := analyzer.callCount(); got != 1 {
		t.Errorf("analyzer calls = %d, want 1", got)
	}
}

func TestWatcher_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "builds.csv")
	writeData(t, path, "v1")

	analyzer := &stubAnalyzer{result: &models.BuildAnalysisResult{NBuilds: 7}}
	results := make(chan *models.BuildAnalysisResult, 1)
	w, err := New(Config{
		DataPath: path,
		Analyzer: analyzer,
		Debounce: 10 * time.Millisecond,
		Handler: func(_ context.Context, r *models.BuildAnalysisResult) error {
			select {
			case results <- r:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeData(t, path, "v2")

	select {
	case r := <-results:
		if r.NBuilds != 7 {
			t.Errorf("result = %+v", r)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for re-analysis")
	}
}

func TestReanalyze_AnalyzerErrorDoesNotCallHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "builds.csv")
	writeData(t, path, "v1")

	analyzer := &stubAnalyzer{err: errors.New("bad csv")}
	w, err := New(Config{
		DataPath: path,
		Analyzer: analyzer,
		Handler: func(context.Context, *models.BuildAnalysisResult) error {
			t.Error("handler should not run on analyzer error")
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.reanalyze()
	if analyzer.callCount() != 1 {
		t.Errorf("analyzer calls = %d", analyzer.callCount())
	}
}

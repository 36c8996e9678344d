package analyzer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/devflowhq/devflow/models"
)

// timestampLayouts are tried in order when parsing the started-at column.
// TravisTorrent exports use the space-separated form; other CI exports tend
// to use RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Load reads and parses the delimited data file at path. An empty path falls
// back to the analyzer's configured data path; if neither is set it returns
// ErrNoDataPath. Parsed events are kept on the analyzer for Analyze.
func (a *Analyzer) Load(path string) error {
	if path == "" {
		path = a.dataPath
	}
	if path == "" {
		return ErrNoDataPath
	}

	f, err := a.fs.Open(path)
	if err != nil {
		return fmt.Errorf("open data file %s: %w", path, err)
	}
	defer f.Close()

	return a.LoadReader(f)
}

// LoadReader parses CSV data with a header row from r. Malformed numeric and
// timestamp cells coerce to nil rather than aborting the load; data-quality
// problems are never load errors.
func (a *Analyzer) LoadReader(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			a.events = []models.BuildEvent{}
			a.loaded = true
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	a.hasStartedAt = hasColumn(idx, a.columns.StartedAt)
	a.hasLanguage = hasColumn(idx, a.columns.Language)
	a.hasTestsRun = hasColumn(idx, a.columns.TestsRun)
	a.hasTestsFailed = hasColumn(idx, a.columns.TestsFailed)

	var events []models.BuildEvent
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", len(events)+2, err)
		}

		ev := models.BuildEvent{
			BuildID: cell(record, idx, a.columns.BuildID),
			Project: cell(record, idx, a.columns.Project),
			Status:  models.BuildStatus(cell(record, idx, a.columns.Status)),
		}
		ev.DurationSeconds = parseFloat(cell(record, idx, a.columns.Duration))
		ev.StartedAt = parseTimestamp(cell(record, idx, a.columns.StartedAt))
		if lang := cell(record, idx, a.columns.Language); lang != "" {
			ev.Language = &lang
		}
		ev.TestsRun = parseFloat(cell(record, idx, a.columns.TestsRun))
		ev.TestsFailed = parseFloat(cell(record, idx, a.columns.TestsFailed))

		events = append(events, ev)
	}

	a.events = events
	a.loaded = true
	return nil
}

func hasColumn(idx map[string]int, name string) bool {
	_, ok := idx[name]
	return ok
}

// cell returns the trimmed value of the named column, or "" when the column
// or the cell is absent.
func cell(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseFloat coerces a cell to a float, treating empty, NA and malformed
// values as nil.
func parseFloat(s string) *float64 {
	if s == "" || s == "NA" || s == "NaN" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseTimestamp coerces a cell to a time, returning nil for anything that
// does not match a known layout.
func parseTimestamp(s string) *time.Time {
	if s == "" || s == "NA" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

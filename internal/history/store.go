// Package history persists past analysis results in an embedded vector
// store, so the insight agent and CLI can recall and compare earlier runs
// by semantic similarity.
package history

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	chromem "github.com/philippgille/chromem-go"

	"github.com/devflowhq/devflow/models"
)

// CollectionName is the chromem collection holding analysis documents.
const CollectionName = "build_analyses"

// timeNow is a seam for deterministic document IDs in tests.
var timeNow = time.Now

// SearchResult is one similarity hit.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float32
}

// Store wraps a persistent chromem-go collection of analysis documents.
// chromem-go is an embeddable pure-Go vector database; no external service
// is involved, all data lives under the configured directory.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// EmbeddingFuncFromEmbedder adapts an Eino embedder to chromem's embedding
// function signature (Eino returns float64 vectors, chromem wants float32).
func EmbeddingFuncFromEmbedder(embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vectors, err := embedder.EmbedStrings(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		if len(vectors) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		out := make([]float32, len(vectors[0]))
		for i, v := range vectors[0] {
			out[i] = float32(v)
		}
		return out, nil
	}
}

// NewStore opens (or creates) a persistent store under path.
func NewStore(path string, embedFn chromem.EmbeddingFunc) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory %s: %w", path, err)
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return newStore(db, embedFn)
}

// NewMemoryStore creates an ephemeral store, used by tests and one-shot runs.
func NewMemoryStore(embedFn chromem.EmbeddingFunc) (*Store, error) {
	return newStore(chromem.NewDB(), embedFn)
}

func newStore(db *chromem.DB, embedFn chromem.EmbeddingFunc) (*Store, error) {
	collection, err := db.GetOrCreateCollection(CollectionName, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", CollectionName, err)
	}
	return &Store{db: db, collection: collection}, nil
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	return s.collection.Count()
}

// StoreAnalysis embeds and stores one analysis result. The document text is
// the LLM-context rendering; metadata carries the headline numbers so
// History can list runs without re-reading documents. Returns the document ID.
func (s *Store) StoreAnalysis(ctx context.Context, result *models.BuildAnalysisResult, projectName, modelUsed string) (string, error) {
	now := timeNow()
	docID := makeDocID("analysis", projectName, now, "")

	metadata := map[string]string{
		"doc_type":          "analysis",
		"project":           projectName,
		"analysis_date":     now.Format("2006-01-02"),
		"n_builds":          strconv.Itoa(result.NBuilds),
		"n_projects":        strconv.Itoa(result.NProjects),
		"success_rate":      strconv.FormatFloat(result.OverallSuccessRate, 'f', 4, 64),
		"failure_rate":      strconv.FormatFloat(result.OverallFailureRate, 'f', 4, 64),
		"median_duration_s": strconv.FormatFloat(result.MedianDurationSeconds, 'f', 1, 64),
		"model_used":        modelUsed,
	}

	err := s.collection.AddDocuments(ctx, []chromem.Document{{
		ID:       docID,
		Metadata: metadata,
		Content:  result.LLMContext(),
	}}, 1)
	if err != nil {
		return "", fmt.Errorf("store analysis: %w", err)
	}
	return docID, nil
}

// StoreReportSection embeds and stores one generated report section.
func (s *Store) StoreReportSection(ctx context.Context, sectionName, content, projectName, modelUsed string) (string, error) {
	now := timeNow()
	docID := makeDocID("report", projectName, now, sectionName)

	err := s.collection.AddDocuments(ctx, []chromem.Document{{
		ID: docID,
		Metadata: map[string]string{
			"doc_type":      "report_section",
			"section":       sectionName,
			"project":       projectName,
			"analysis_date": now.Format("2006-01-02"),
			"model_used":    modelUsed,
		},
		Content: content,
	}}, 1)
	if err != nil {
		return "", fmt.Errorf("store report section: %w", err)
	}
	return docID, nil
}

// SearchSimilar runs a similarity query. A nil filter defaults to analysis
// documents only.
func (s *Store) SearchSimilar(ctx context.Context, query string, k int, filter map[string]string) ([]SearchResult, error) {
	if filter == nil {
		filter = map[string]string{"doc_type": "analysis"}
	}
	// chromem rejects a k larger than the collection size.
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return []SearchResult{}, nil
	}

	results, err := s.collection.Query(ctx, query, k, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Score:    r.Similarity,
		})
	}
	return out, nil
}

// SearchByProject searches stored analyses for a specific project.
func (s *Store) SearchByProject(ctx context.Context, project string, k int) ([]SearchResult, error) {
	return s.SearchSimilar(ctx, fmt.Sprintf("CI/CD analysis for %s", project), k, map[string]string{
		"doc_type": "analysis",
		"project":  project,
	})
}

// History lists recent analyses, most recent first. chromem has no
// metadata-only scan, so this runs a fixed probe query and orders the hits
// by their stored analysis date.
func (s *Store) History(ctx context.Context, limit int) ([]SearchResult, error) {
	results, err := s.SearchSimilar(ctx, "CI/CD build analysis", limit, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metadata["analysis_date"] > results[j].Metadata["analysis_date"]
	})
	return results, nil
}

// makeDocID creates a deterministic document ID for idempotent re-runs
// within the same second.
func makeDocID(docType, project string, ts time.Time, section string) string {
	stamp := ts.Format("20060102T150405")
	if section != "" {
		return fmt.Sprintf("%s-%s-%s-%s", docType, section, project, stamp)
	}
	return fmt.Sprintf("%s-%s-%s", docType, project, stamp)
}

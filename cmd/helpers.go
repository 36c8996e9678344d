package cmd

import (
	"context"
	"fmt"

	"github.com/devflowhq/devflow/internal/analyzer"
	"github.com/devflowhq/devflow/internal/history"
	"github.com/devflowhq/devflow/internal/llm"
	"github.com/devflowhq/devflow/models"
)

// newAnalyzer builds an analyzer from the configured data path and column
// overrides. The --data flag value takes precedence over config.
func newAnalyzer(dataFlag string) *analyzer.Analyzer {
	cfg := GetConfig()
	path := cfg.Data.Path
	if dataFlag != "" {
		path = dataFlag
	}
	return analyzer.New(path, analyzer.WithColumns(columnsFromConfig(cfg.Data.Columns)))
}

// columnsFromConfig maps the data.columns.* config keys onto the column
// mapping; unset keys fall back to the TravisTorrent defaults.
func columnsFromConfig(columns map[string]string) analyzer.ColumnMap {
	return analyzer.ColumnMap{
		BuildID:     columns["buildId"],
		Project:     columns["project"],
		Status:      columns["status"],
		Duration:    columns["duration"],
		StartedAt:   columns["startedAt"],
		Language:    columns["language"],
		TestsRun:    columns["testsRun"],
		TestsFailed: columns["testsFailed"],
	}
}

// loadAndAnalyze runs the full load + analyze pipeline for a command.
func loadAndAnalyze(dataFlag string) (*analyzer.Analyzer, *models.BuildAnalysisResult, error) {
	a := newAnalyzer(dataFlag)
	if err := a.Load(""); err != nil {
		return nil, nil, fmt.Errorf("load build data: %w", err)
	}
	result, err := a.Analyze()
	if err != nil {
		return nil, nil, fmt.Errorf("analyze build data: %w", err)
	}
	return a, result, nil
}

// llmConfigFromApp builds a client config from the app config, with an
// optional registry key (--model flag) overriding provider and model.
func llmConfigFromApp(modelKey string) (llm.Config, error) {
	if modelKey != "" {
		return llm.ConfigForModelKey(modelKey)
	}

	cfg := GetConfig()
	provider, err := llm.ValidateProvider(cfg.LLM.Provider)
	if err != nil {
		return llm.Config{}, err
	}

	model := cfg.LLM.Model
	if model == "" {
		model = llm.DefaultModelForProvider(provider)
	}
	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = llm.ResolveAPIKey(provider)
	}

	return llm.Config{
		Provider:       provider,
		Model:          model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		APIKey:         apiKey,
		BaseURL:        cfg.LLM.BaseURL,
		Temperature:    float32(cfg.LLM.Temperature),
	}, nil
}

// openHistoryStore opens the configured persistent analysis history store.
// Embeddings use the configured provider; ollama users need no API key.
func openHistoryStore(ctx context.Context) (*history.Store, error) {
	llmCfg, err := llmConfigFromApp("")
	if err != nil {
		return nil, err
	}
	embedder, err := llm.NewEmbedder(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	store, err := history.NewStore(GetConfig().History.Path, history.EmbeddingFuncFromEmbedder(embedder))
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

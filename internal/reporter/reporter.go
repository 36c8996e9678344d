// Package reporter generates multi-section natural-language reports from a
// BuildAnalysisResult using a configured chat model.
package reporter

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/devflowhq/devflow/internal/llm"
	"github.com/devflowhq/devflow/models"
	"github.com/devflowhq/devflow/prompts"
)

// Section is one titled block of the generated report.
type Section struct {
	Title   string
	Content string
}

// Report is the complete CI/CD analysis report.
type Report struct {
	BuildHealth        Section
	BottleneckAnalysis Section
	FailurePatterns    Section
	Recommendations    Section
}

// Markdown assembles the report into one document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# CI/CD Build Analysis Report\n\n")
	for _, s := range []Section{r.BuildHealth, r.BottleneckAnalysis, r.FailurePatterns, r.Recommendations} {
		fmt.Fprintf(&b, "## %s\n%s\n\n", s.Title, s.Content)
	}
	return b.String()
}

// sectionData feeds the prompt templates.
type sectionData struct {
	Metrics  string
	Analysis string
}

// Reporter generates report sections one chat completion at a time. The
// recommendations section additionally receives the three prior sections as
// context, so it is always generated last.
type Reporter struct {
	llmConfig    llm.Config
	templatesDir string

	// modelFactory is a seam for tests; production uses llm.NewChatModel.
	modelFactory func(context.Context, llm.Config) (model.BaseChatModel, error)
}

// New creates a Reporter. templatesDir may be empty to use the built-in
// prompt templates.
func New(cfg llm.Config, templatesDir string) *Reporter {
	return &Reporter{
		llmConfig:    cfg,
		templatesDir: templatesDir,
		modelFactory: llm.NewChatModel,
	}
}

// GenerateReport produces all four sections for the given analysis result.
func (r *Reporter) GenerateReport(ctx context.Context, result *models.BuildAnalysisResult) (*Report, error) {
	chatModel, err := r.modelFactory(ctx, r.llmConfig)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	metrics := result.LLMContext()

	buildHealth, err := r.generateSection(ctx, chatModel, prompts.KeyBuildHealth, metrics, "")
	if err != nil {
		return nil, fmt.Errorf("build health section: %w", err)
	}
	bottlenecks, err := r.generateSection(ctx, chatModel, prompts.KeyBottleneckAnalysis, metrics, "")
	if err != nil {
		return nil, fmt.Errorf("bottleneck section: %w", err)
	}
	failures, err := r.generateSection(ctx, chatModel, prompts.KeyFailurePatterns, metrics, "")
	if err != nil {
		return nil, fmt.Errorf("failure patterns section: %w", err)
	}

	priorAnalysis := fmt.Sprintf(
		"Build Health Summary:\n%s\n\nBottleneck Analysis:\n%s\n\nFailure Patterns:\n%s\n",
		buildHealth, bottlenecks, failures)
	recommendations, err := r.generateSection(ctx, chatModel, prompts.KeyRecommendations, metrics, priorAnalysis)
	if err != nil {
		return nil, fmt.Errorf("recommendations section: %w", err)
	}

	return &Report{
		BuildHealth:        Section{Title: "Build Health Summary", Content: buildHealth},
		BottleneckAnalysis: Section{Title: "Bottleneck Analysis", Content: bottlenecks},
		FailurePatterns:    Section{Title: "Failure Patterns", Content: failures},
		Recommendations:    Section{Title: "Recommendations", Content: recommendations},
	}, nil
}

// GenerateSection produces a single section, mainly for partial generation
// and evaluation runs.
func (r *Reporter) GenerateSection(ctx context.Context, key prompts.PromptKey, result *models.BuildAnalysisResult) (string, error) {
	chatModel, err := r.modelFactory(ctx, r.llmConfig)
	if err != nil {
		return "", fmt.Errorf("create chat model: %w", err)
	}
	return r.generateSection(ctx, chatModel, key, result.LLMContext(), "")
}

func (r *Reporter) generateSection(ctx context.Context, chatModel model.BaseChatModel, key prompts.PromptKey, metrics, analysis string) (string, error) {
	raw, err := prompts.GetPrompt(key, r.templatesDir)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(string(key)).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse prompt template %s: %w", key, err)
	}
	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, sectionData{Metrics: metrics, Analysis: analysis}); err != nil {
		return "", fmt.Errorf("render prompt template %s: %w", key, err)
	}

	resp, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(rendered.String()),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Content, nil
}

package eval

import (
	"context"
	"fmt"
	"math"

	"github.com/devflowhq/devflow/internal/agents"
	"github.com/devflowhq/devflow/internal/llm"
	"github.com/devflowhq/devflow/models"
)

// VariantSummary aggregates the runs of one A/B variant.
type VariantSummary struct {
	Name          string
	NRuns         int
	LatencyMeanMS float64
	LatencyStdMS  float64
	CostMeanUSD   float64
	Rouge1Mean    float64
}

// ABTestResult holds both variants' raw results and summaries.
type ABTestResult struct {
	VariantA string
	VariantB string
	ResultsA []EvaluationResult
	ResultsB []EvaluationResult
}

// Summary computes per-variant aggregate statistics.
func (r *ABTestResult) Summary() (a, b VariantSummary) {
	return summarize(r.VariantA, r.ResultsA), summarize(r.VariantB, r.ResultsB)
}

func summarize(name string, results []EvaluationResult) VariantSummary {
	s := VariantSummary{Name: name, NRuns: len(results)}
	if len(results) == 0 {
		return s
	}
	var latencies, costs, rouge1 []float64
	for i := range results {
		latencies = append(latencies, results[i].LatencyMS)
		costs = append(costs, results[i].CostUSD)
		rouge1 = append(rouge1, results[i].Rouge["rouge1"].F1)
	}
	s.LatencyMeanMS = meanOf(latencies)
	s.LatencyStdMS = stddevOf(latencies)
	s.CostMeanUSD = meanOf(costs)
	s.Rouge1Mean = meanOf(rouge1)
	return s
}

// invokeFunc runs the insight agent for one model key and returns the answer
// with its measured latency. Injected in tests.
type invokeFunc func(ctx context.Context, modelKey string, result *models.BuildAnalysisResult, task string) (string, float64, error)

// ABTest compares two models on the same task over the insight agent,
// logging every run to the tracker.
type ABTest struct {
	tracker      *Tracker
	experiment   string
	variantAName string
	variantBName string

	invoke invokeFunc
}

// NewABTest creates an A/B test logged under "ab-test-<experiment>".
func NewABTest(tracker *Tracker, experiment, variantAName, variantBName string) *ABTest {
	return &ABTest{
		tracker:      tracker,
		experiment:   "ab-test-" + experiment,
		variantAName: variantAName,
		variantBName: variantBName,
		invoke:       invokeAgent,
	}
}

// RunModelComparison runs both models nRuns times each, alternating A and B.
// reference may be empty; when set, outputs are ROUGE-scored against it.
func (t *ABTest) RunModelComparison(ctx context.Context, result *models.BuildAnalysisResult, modelA, modelB, task string, nRuns int, reference string) (*ABTestResult, error) {
	out := &ABTestResult{VariantA: t.variantAName, VariantB: t.variantBName}

	for i := 0; i < nRuns; i++ {
		resA, err := t.runOnce(ctx, result, modelA, task, reference,
			fmt.Sprintf("%s-run-%d", t.variantAName, i+1),
			map[string]string{"variant": "A", "model": modelA})
		if err != nil {
			return nil, fmt.Errorf("variant A run %d: %w", i+1, err)
		}
		out.ResultsA = append(out.ResultsA, *resA)

		resB, err := t.runOnce(ctx, result, modelB, task, reference,
			fmt.Sprintf("%s-run-%d", t.variantBName, i+1),
			map[string]string{"variant": "B", "model": modelB})
		if err != nil {
			return nil, fmt.Errorf("variant B run %d: %w", i+1, err)
		}
		out.ResultsB = append(out.ResultsB, *resB)
	}

	return out, nil
}

func (t *ABTest) runOnce(ctx context.Context, result *models.BuildAnalysisResult, modelKey, task, reference, runName string, tags map[string]string) (*EvaluationResult, error) {
	run, err := t.tracker.StartRun(t.experiment, runName, tags)
	if err != nil {
		return nil, err
	}
	defer func() { _ = run.End() }()

	output, latencyMS, err := t.invoke(ctx, modelKey, result, task)
	if err != nil {
		return nil, err
	}

	res := &EvaluationResult{
		ModelKey:     modelKey,
		LatencyMS:    latencyMS,
		InputTokens:  EstimateTokens(task) + EstimateTokens(result.LLMContext()),
		OutputTokens: EstimateTokens(output),
		OutputText:   output,
	}
	res.CostUSD = llm.CalculateCost(modelKey, res.InputTokens, res.OutputTokens)
	if reference != "" {
		res.Rouge = ComputeRouge(output, reference)
	}

	if err := run.LogEvaluationResult(res); err != nil {
		return nil, err
	}
	return res, nil
}

// invokeAgent is the production invokeFunc: build the agent from the model
// key and time one Investigate call.
func invokeAgent(ctx context.Context, modelKey string, result *models.BuildAnalysisResult, task string) (string, float64, error) {
	cfg, err := llm.ConfigForModelKey(modelKey)
	if err != nil {
		return "", 0, err
	}
	agent := agents.NewInsightAgent(cfg)

	var timer Timer
	timer.Start()
	out, err := agent.Investigate(ctx, result, task)
	timer.Stop()
	if err != nil {
		return "", 0, err
	}
	return out.Answer, timer.ElapsedMS(), nil
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := meanOf(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

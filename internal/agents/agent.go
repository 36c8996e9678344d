package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/devflowhq/devflow/internal/llm"
	"github.com/devflowhq/devflow/models"
	"github.com/devflowhq/devflow/prompts"
)

// defaultMaxIters bounds the tool-calling loop so a confused model cannot
// spin forever against the same four read-only tools.
const defaultMaxIters = 10

// InsightAgent runs a ReAct-style tool-calling loop over the analysis query
// tools to produce natural-language insights about one analysis result.
type InsightAgent struct {
	llmConfig llm.Config
	maxIters  int
	history   HistorySearchFunc

	// modelFactory is a seam for tests; production uses llm.NewChatModel.
	modelFactory func(context.Context, llm.Config) (model.BaseChatModel, error)
}

// Output carries the agent's answer plus run metadata for evaluation.
type Output struct {
	Answer    string
	ToolCalls int
	Duration  time.Duration
}

// NewInsightAgent creates an agent with the given LLM configuration.
func NewInsightAgent(cfg llm.Config) *InsightAgent {
	return &InsightAgent{
		llmConfig:    cfg,
		maxIters:     defaultMaxIters,
		modelFactory: llm.NewChatModel,
	}
}

// SetHistorySearch attaches a history search backend, enabling the
// search_history tool.
func (a *InsightAgent) SetHistorySearch(search HistorySearchFunc) {
	a.history = search
}

// SetMaxIterations sets the maximum number of tool-use iterations.
func (a *InsightAgent) SetMaxIterations(n int) {
	if n > 0 && n <= 20 {
		a.maxIters = n
	}
}

// Analyze runs the comprehensive default task against result.
func (a *InsightAgent) Analyze(ctx context.Context, result *models.BuildAnalysisResult) (Output, error) {
	return a.run(ctx, result, prompts.InsightAgentDefaultTask)
}

// Investigate asks a specific question about result.
func (a *InsightAgent) Investigate(ctx context.Context, result *models.BuildAnalysisResult, question string) (Output, error) {
	return a.run(ctx, result, question)
}

// run executes the ReAct loop: LLM -> (tool call -> tool result -> LLM)* ->
// final answer. The result is bound to a fresh Toolset per run, so two runs
// never share tool state.
func (a *InsightAgent) run(ctx context.Context, result *models.BuildAnalysisResult, task string) (Output, error) {
	var output Output
	start := time.Now()

	chatModel, err := a.modelFactory(ctx, a.llmConfig)
	if err != nil {
		return output, fmt.Errorf("create chat model: %w", err)
	}

	tools := CreateQueryTools(NewToolset(result), a.history)

	baseTools := make([]tool.BaseTool, len(tools))
	for i, t := range tools {
		baseTools[i] = t
	}
	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools: baseTools,
	})
	if err != nil {
		return output, fmt.Errorf("create tools node: %w", err)
	}

	toolInfos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		toolInfos = append(toolInfos, info)
	}

	messages := []*schema.Message{
		schema.SystemMessage(prompts.InsightAgentSystemPrompt),
		schema.UserMessage(task),
	}

	for iter := 0; iter < a.maxIters; iter++ {
		select {
		case <-ctx.Done():
			return output, ctx.Err()
		default:
		}

		resp, err := chatModel.Generate(ctx, messages, model.WithTools(toolInfos))
		if err != nil {
			return output, fmt.Errorf("generate (iter %d): %w", iter+1, err)
		}
		messages = append(messages, resp)

		if len(resp.ToolCalls) == 0 {
			// No tool calls means final answer.
			output.Answer = resp.Content
			break
		}

		for _, tc := range resp.ToolCalls {
			slog.Debug("insight agent tool call", "tool", tc.Function.Name, "iter", iter+1)
		}
		output.ToolCalls += len(resp.ToolCalls)

		toolResults, err := toolsNode.Invoke(ctx, resp)
		if err != nil {
			// Tool errors go back into the conversation instead of
			// aborting the run; the model can recover or conclude.
			toolResults = []*schema.Message{
				schema.ToolMessage(fmt.Sprintf("Error executing tools: %v", err), "error"),
			}
		}
		messages = append(messages, toolResults...)
	}

	if output.Answer == "" {
		slog.Warn("insight agent hit max iterations without final answer", "max_iters", a.maxIters)
		if len(messages) > 0 {
			if last := messages[len(messages)-1]; last.Content != "" {
				output.Answer = last.Content
			}
		}
		if output.Answer == "" {
			output.Answer = "No output generated"
		}
	}

	output.Duration = time.Since(start)
	return output, nil
}

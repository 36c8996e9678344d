package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devflowhq/devflow/internal/agents"
	"github.com/devflowhq/devflow/types"
)

// mcpState holds the server's current analysis. Tools are read-only except
// analyze-builds, which replaces the bound toolset.
type mcpState struct {
	mu      sync.RWMutex
	toolset *agents.Toolset
}

func newMCPState() *mcpState {
	return &mcpState{toolset: agents.NewToolset(nil)}
}

func (s *mcpState) bind(ts *agents.Toolset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolset = ts
}

func (s *mcpState) get() *agents.Toolset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toolset
}

// textResult wraps plain text as a tool result. Failures are reported as
// in-result text with IsError set, never as Go errors, so the calling
// agent's loop keeps going.
func textResult[T any](text string, isErr bool) *mcp.CallToolResultFor[T] {
	return &mcp.CallToolResultFor[T]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: isErr,
	}
}

// analyzeBuildsHandler loads a CSV and binds the result to the server state
func analyzeBuildsHandler(state *mcpState) mcp.ToolHandlerFor[types.AnalyzeBuildsParams, types.AnalyzeBuildsResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AnalyzeBuildsParams]) (*mcp.CallToolResultFor[types.AnalyzeBuildsResponse], error) {
		_, result, err := loadAndAnalyze(params.Arguments.DataPath)
		if err != nil {
			return textResult[types.AnalyzeBuildsResponse](fmt.Sprintf("Error: %v", err), true), nil
		}

		state.bind(agents.NewToolset(result))

		text := fmt.Sprintf("Analyzed %d builds across %d projects (pass rate %.1f%%). Use the query tools for details.",
			result.NBuilds, result.NProjects, result.OverallSuccessRate*100)
		out := textResult[types.AnalyzeBuildsResponse](text, false)
		out.StructuredContent = types.AnalyzeBuildsResponse{
			NBuilds:   result.NBuilds,
			NProjects: result.NProjects,
			PassRate:  result.OverallSuccessRate,
			Summary:   result.LLMContext(),
		}
		return out, nil
	}
}

func summaryStatsHandler(state *mcpState) mcp.ToolHandlerFor[types.SummaryStatsParams, any] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SummaryStatsParams]) (*mcp.CallToolResultFor[any], error) {
		text := state.get().SummaryStats()
		return textResult[any](text, text == agents.NoAnalysisMessage), nil
	}
}

func analyzeBottlenecksHandler(state *mcpState) mcp.ToolHandlerFor[types.AnalyzeBottlenecksParams, any] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AnalyzeBottlenecksParams]) (*mcp.CallToolResultFor[any], error) {
		text := state.get().AnalyzeBottlenecks()
		return textResult[any](text, text == agents.NoAnalysisMessage), nil
	}
}

func analyzeFailuresHandler(state *mcpState) mcp.ToolHandlerFor[types.AnalyzeFailuresParams, any] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AnalyzeFailuresParams]) (*mcp.CallToolResultFor[any], error) {
		text := state.get().AnalyzeFailures()
		return textResult[any](text, text == agents.NoAnalysisMessage), nil
	}
}

func compareProjectsHandler(state *mcpState) mcp.ToolHandlerFor[types.CompareProjectsParams, any] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CompareProjectsParams]) (*mcp.CallToolResultFor[any], error) {
		text := state.get().CompareProjects()
		return textResult[any](text, text == agents.NoAnalysisMessage), nil
	}
}

func searchHistoryHandler(state *mcpState) mcp.ToolHandlerFor[types.SearchHistoryParams, any] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SearchHistoryParams]) (*mcp.CallToolResultFor[any], error) {
		query := params.Arguments.Query
		if query == "" {
			return textResult[any]("Error: query is required", true), nil
		}
		limit := params.Arguments.Limit
		if limit <= 0 {
			limit = 3
		}

		store, err := openHistoryStore(ctx)
		if err != nil {
			return textResult[any](fmt.Sprintf("Error: history store unavailable: %v", err), true), nil
		}
		hits, err := store.SearchSimilar(ctx, query, limit, nil)
		if err != nil {
			return textResult[any](fmt.Sprintf("Error: search failed: %v", err), true), nil
		}
		return textResult[any](formatSearchResults(hits), false), nil
	}
}

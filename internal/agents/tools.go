package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// queryTool adapts one no-argument Toolset query to the Eino tool interface
// so the ReAct loop can call it.
type queryTool struct {
	name string
	desc string
	run  func() string
}

func (t *queryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        t.name,
		Desc:        t.desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *queryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return t.run(), nil
}

var _ tool.InvokableTool = (*queryTool)(nil)

// HistorySearchFunc answers a natural-language query against stored past
// analyses. Wired in from the history store when one is configured.
type HistorySearchFunc func(ctx context.Context, query string) (string, error)

// historySearchTool exposes a HistorySearchFunc as a single-argument tool.
type historySearchTool struct {
	search HistorySearchFunc
}

func (t *historySearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "search_history",
		Desc: `Search past CI/CD analyses for similar findings.
Use this to compare the current analysis against historical runs,
e.g. search_history(query="projects with high failure rates").`,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     "string",
				Desc:     "Natural language description of what to look for",
				Required: true,
			},
		}),
	}, nil
}

type historySearchArgs struct {
	Query string `json:"query"`
}

func (t *historySearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args historySearchArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("query argument is required")
	}
	out, err := t.search(ctx, args.Query)
	if err != nil {
		// Report the failure as tool output so the agent loop continues.
		return fmt.Sprintf("History search failed: %v", err), nil
	}
	return out, nil
}

var _ tool.InvokableTool = (*historySearchTool)(nil)

// CreateQueryTools wraps the Toolset queries as Eino tools. When search is
// non-nil, a search_history tool is appended.
func CreateQueryTools(ts *Toolset, search HistorySearchFunc) []tool.InvokableTool {
	tools := []tool.InvokableTool{
		&queryTool{
			name: "get_summary_stats",
			desc: `Get high-level summary statistics of the CI/CD data.
Returns key metrics like total builds, date range, overall success rate,
and duration statistics.`,
			run: ts.SummaryStats,
		},
		&queryTool{
			name: "analyze_bottlenecks",
			desc: `Analyze build bottlenecks and slow projects in detail.
Returns detailed information about projects with slow builds, including
duration statistics and comparisons to baseline.`,
			run: ts.AnalyzeBottlenecks,
		},
		&queryTool{
			name: "analyze_failures",
			desc: `Analyze failure patterns across projects.
Returns information about projects with high failure rates, failure vs
error distribution, and projects at risk.`,
			run: ts.AnalyzeFailures,
		},
		&queryTool{
			name: "compare_projects",
			desc: `Compare metrics across all projects.
Returns a comparison table of all projects with their success rates,
durations, and build counts.`,
			run: ts.CompareProjects,
		},
	}
	if search != nil {
		tools = append(tools, &historySearchTool{search: search})
	}
	return tools
}

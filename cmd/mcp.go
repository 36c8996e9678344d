package cmd

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so AI assistants can query
the build analysis directly.

The MCP server runs over stdin/stdout and provides tools for:
- Analyzing a build history CSV
- Summary statistics of the current analysis
- Bottleneck and failure-pattern reports
- Project comparison tables
- Searching stored past analyses

The server will run until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	impl := &mcp.Implementation{
		Name:    "devflow",
		Version: version,
	}
	server := mcp.NewServer(impl, &mcp.ServerOptions{})

	state := newMCPState()
	if err := registerMCPTools(server, state); err != nil {
		return fmt.Errorf("failed to register MCP tools: %w", err)
	}

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func registerMCPTools(server *mcp.Server, state *mcpState) error {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze-builds",
		Description: "Load and analyze a build history CSV. Must be called before the query tools. Returns build and project counts plus the summary.",
	}, analyzeBuildsHandler(state))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get-summary-stats",
		Description: "Summary statistics of the current analysis: counts, rates, duration percentiles, bottlenecks, and risk lists.",
	}, summaryStatsHandler(state))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze-bottlenecks",
		Description: "Detailed report of slow projects: average wait, frequency, and ratio to the overall median duration.",
	}, analyzeBottlenecksHandler(state))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze-failures",
		Description: "Failure-pattern report: overall rates, status distribution, top failing projects, and projects at risk.",
	}, analyzeFailuresHandler(state))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare-projects",
		Description: "Markdown table comparing per-project build counts, rates, and durations, sorted by failure rate.",
	}, compareProjectsHandler(state))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search-history",
		Description: "Semantic search over stored past analyses. Useful for comparing the current state against earlier runs.",
	}, searchHistoryHandler(state))

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/agents"
	"github.com/devflowhq/devflow/internal/history"
	"github.com/devflowhq/devflow/internal/logger"
)

var (
	askDataPath string
	askModelKey string
)

// askCmd answers one ad-hoc question via the insight agent.
var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask the insight agent a question about the build data",
	Long: `Ask analyzes the build history, binds it to the insight agent's query
tools, and lets the model investigate the question by calling them. When
the history store is reachable, the agent can also search past analyses.

Example:
  devflow ask --data builds.csv "Which projects should we stabilize first?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		logger.SetLastQuestion(question)

		_, result, err := loadAndAnalyze(askDataPath)
		if err != nil {
			return err
		}

		llmCfg, err := llmConfigFromApp(askModelKey)
		if err != nil {
			return err
		}

		agent := agents.NewInsightAgent(llmCfg)
		attachHistorySearch(cmd, agent)

		out, err := agent.Investigate(cmd.Context(), result, question)
		if err != nil {
			return fmt.Errorf("investigate: %w", err)
		}

		fmt.Println(out.Answer)
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "(%d tool calls, %.1fs)\n", out.ToolCalls, out.Duration.Seconds())
		}
		return nil
	},
}

// attachHistorySearch wires the history store into the agent when it opens
// cleanly; a missing store just disables the search_history tool.
func attachHistorySearch(cmd *cobra.Command, agent *agents.InsightAgent) {
	store, err := openHistoryStore(cmd.Context())
	if err != nil {
		return
	}
	agent.SetHistorySearch(func(ctx context.Context, query string) (string, error) {
		hits, err := store.SearchSimilar(ctx, query, 3, nil)
		if err != nil {
			return "", err
		}
		return formatSearchResults(hits), nil
	})
}

func formatSearchResults(hits []history.SearchResult) string {
	if len(hits) == 0 {
		return "No similar past analyses found."
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "Result %d (similarity %.2f, %s):\n%s\n\n", i+1, h.Score, h.Metadata["analysis_date"], h.Content)
	}
	return strings.TrimSpace(b.String())
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askDataPath, "data", "", "path to build history CSV (overrides config)")
	askCmd.Flags().StringVar(&askModelKey, "model", "", "model registry key (see 'devflow models')")
}

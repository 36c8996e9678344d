package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/agents"
)

var (
	insightsDataPath string
	insightsModelKey string
)

// insightsCmd runs the agent's comprehensive default investigation.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Run a comprehensive agent investigation of the build data",
	Long: `Insights analyzes the build history and runs the insight agent's full
investigation: overall health, bottlenecks, failure patterns, and project
comparison, synthesized into prioritized findings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := loadAndAnalyze(insightsDataPath)
		if err != nil {
			return err
		}

		llmCfg, err := llmConfigFromApp(insightsModelKey)
		if err != nil {
			return err
		}

		agent := agents.NewInsightAgent(llmCfg)
		attachHistorySearch(cmd, agent)

		out, err := agent.Analyze(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("run insight agent: %w", err)
		}

		fmt.Println(out.Answer)
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "(%d tool calls, %.1fs)\n", out.ToolCalls, out.Duration.Seconds())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().StringVar(&insightsDataPath, "data", "", "path to build history CSV (overrides config)")
	insightsCmd.Flags().StringVar(&insightsModelKey, "model", "", "model registry key (see 'devflow models')")
}

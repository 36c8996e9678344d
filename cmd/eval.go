package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/eval"
)

var (
	evalDataPath   string
	evalConfigPath string
	evalModelA     string
	evalModelB     string
	evalRuns       int
)

// evalCmd runs the A/B evaluation harness over the insight agent.
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "A/B compare two models on evaluation tasks",
	Long: `Eval loads tasks from a YAML config, runs each task against two model
variants through the insight agent, and logs latency, token estimates,
cost, and ROUGE scores (when a reference answer is given) to the local
experiment tracker.

Example tasks file:
  version: 1
  project: backend-builds
  tasks:
    - id: health
      title: Overall health
      prompt: Summarize the overall health of our CI pipeline.
      reference: ...optional gold answer...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := eval.LoadConfig(evalConfigPath)
		if err != nil {
			return err
		}

		_, result, err := loadAndAnalyze(evalDataPath)
		if err != nil {
			return err
		}

		tracker, err := eval.NewTracker(GetConfig().Eval.TrackingPath)
		if err != nil {
			return fmt.Errorf("open experiment tracker: %w", err)
		}
		defer func() { _ = tracker.Close() }()

		for _, task := range cfg.Tasks {
			fmt.Printf("== Task %s: %s\n", task.ID, task.Title)

			test := eval.NewABTest(tracker, cfg.Project+"-"+task.ID, evalModelA, evalModelB)
			res, err := test.RunModelComparison(cmd.Context(), result, evalModelA, evalModelB, task.Prompt, evalRuns, task.Reference)
			if err != nil {
				return fmt.Errorf("task %s: %w", task.ID, err)
			}

			a, b := res.Summary()
			printVariant(a)
			printVariant(b)
		}
		return nil
	},
}

func printVariant(v eval.VariantSummary) {
	fmt.Printf("  %-16s runs=%d latency=%.0fms (±%.0f) cost=$%.4f rouge1=%.3f\n",
		v.Name, v.NRuns, v.LatencyMeanMS, v.LatencyStdMS, v.CostMeanUSD, v.Rouge1Mean)
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalDataPath, "data", "", "path to build history CSV (overrides config)")
	evalCmd.Flags().StringVar(&evalConfigPath, "tasks", "eval.yaml", "path to the evaluation tasks YAML")
	evalCmd.Flags().StringVar(&evalModelA, "model-a", "gpt-4o-mini", "model registry key for variant A")
	evalCmd.Flags().StringVar(&evalModelB, "model-b", "claude-haiku", "model registry key for variant B")
	evalCmd.Flags().IntVar(&evalRuns, "runs", 1, "runs per variant per task")
}

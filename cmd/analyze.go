package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	analyzeDataPath string
	analyzeJSON     bool
	analyzeSave     bool
	analyzeProject  string
)

// analyzeCmd loads the build dataset and prints the computed metrics.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Load a build history CSV and print the computed metrics",
	Long: `Analyze loads the configured build history CSV, computes descriptive
statistics, bottleneck and risk indicators, and prints them as a readable
summary (or JSON with --json). With --save the result is stored in the
analysis history for later semantic search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := loadAndAnalyze(analyzeDataPath)
		if err != nil {
			return err
		}

		if analyzeJSON {
			out, err := result.ToJSON()
			if err != nil {
				return fmt.Errorf("serialize result: %w", err)
			}
			fmt.Println(out)
		} else {
			fmt.Println(result.LLMContext())
		}

		if analyzeSave {
			store, err := openHistoryStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := store.StoreAnalysis(cmd.Context(), result, analyzeProject, GetConfig().LLM.Model)
			if err != nil {
				return fmt.Errorf("store analysis: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Stored analysis %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeDataPath, "data", "", "path to build history CSV (overrides config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "store the analysis in the history store")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "all", "project label for the stored analysis")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/reporter"
)

var (
	reportDataPath string
	reportModelKey string
	reportOutPath  string
	reportSave     bool
	reportProject  string
)

// reportCmd generates the full four-section LLM report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a full LLM-written analysis report",
	Long: `Report analyzes the build history and asks the configured model to write
a four-section report: build health summary, bottleneck analysis, failure
patterns, and recommendations. Prompt templates can be overridden per
section by dropping files into the configured templates directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := loadAndAnalyze(reportDataPath)
		if err != nil {
			return err
		}

		llmCfg, err := llmConfigFromApp(reportModelKey)
		if err != nil {
			return err
		}

		rep := reporter.New(llmCfg, GetConfig().Data.TemplatesDir)
		report, err := rep.GenerateReport(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		if reportSave {
			store, err := openHistoryStore(cmd.Context())
			if err != nil {
				return err
			}
			modelUsed := llmCfg.Model
			for _, s := range []reporter.Section{
				report.BuildHealth, report.BottleneckAnalysis,
				report.FailurePatterns, report.Recommendations,
			} {
				if _, err := store.StoreReportSection(cmd.Context(), s.Title, s.Content, reportProject, modelUsed); err != nil {
					return fmt.Errorf("store report section %q: %w", s.Title, err)
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Stored report sections in history")
		}

		doc := report.Markdown()
		if reportOutPath != "" {
			if err := os.WriteFile(reportOutPath, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", reportOutPath)
			return nil
		}
		fmt.Println(doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportDataPath, "data", "", "path to build history CSV (overrides config)")
	reportCmd.Flags().StringVar(&reportModelKey, "model", "", "model registry key (see 'devflow models')")
	reportCmd.Flags().StringVar(&reportOutPath, "out", "", "write the report to this file instead of stdout")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "store the report sections in the history store")
	reportCmd.Flags().StringVar(&reportProject, "project", "all", "project label for the stored sections")
}

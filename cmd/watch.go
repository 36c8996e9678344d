package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/watch"
	"github.com/devflowhq/devflow/models"
)

var watchDataPath string

// reloadingAnalyzer re-reads the file on every Analyze call so the watcher
// always sees fresh data.
type reloadingAnalyzer struct {
	path string
}

func (r reloadingAnalyzer) Analyze() (*models.BuildAnalysisResult, error) {
	a := newAnalyzer(r.path)
	if err := a.Load(""); err != nil {
		return nil, err
	}
	return a.Analyze()
}

// watchCmd re-analyzes the dataset whenever the file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data file and re-analyze on change",
	Long: `Watch monitors the build history CSV and reruns the analysis whenever
its content changes, printing the fresh summary. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, result, err := loadAndAnalyze(watchDataPath)
		if err != nil {
			return err
		}
		fmt.Println(result.LLMContext())

		dataPath := watchDataPath
		if dataPath == "" {
			dataPath = GetConfig().Data.Path
		}

		w, err := watch.New(watch.Config{
			DataPath: dataPath,
			Analyzer: reloadingAnalyzer{path: dataPath},
			Handler: func(ctx context.Context, r *models.BuildAnalysisResult) error {
				fmt.Printf("\n--- %s ---\n%s\n", time.Now().Format(time.RFC3339), r.LLMContext())
				return nil
			},
		})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", dataPath)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDataPath, "data", "", "path to build history CSV (overrides config)")
}

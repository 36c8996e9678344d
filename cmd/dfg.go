package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/dfg"
)

var (
	dfgDataPath string
	dfgOutPath  string
)

// dfgCmd renders the directly-follows graph of build statuses.
var dfgCmd = &cobra.Command{
	Use:   "dfg",
	Short: "Render a directly-follows graph of build status transitions",
	Long: `Dfg orders each project's builds by start time and renders the
status-to-status transition graph. Rendering to an image requires the
graphviz dot binary; without it the DOT source is written instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newAnalyzer(dfgDataPath)
		if err := a.Load(""); err != nil {
			return fmt.Errorf("load build data: %w", err)
		}

		graph := dfg.Discover(a.Events())
		path, err := graph.Render(dfgOutPath)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dfgCmd)
	dfgCmd.Flags().StringVar(&dfgDataPath, "data", "", "path to build history CSV (overrides config)")
	dfgCmd.Flags().StringVar(&dfgOutPath, "out", "dfg.png", "output path (.png, .svg, or .dot)")
}

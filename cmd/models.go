package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflowhq/devflow/internal/llm"
)

// modelsCmd lists the model registry with provider availability.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models with pricing and availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		checked := map[llm.Provider]string{}

		fmt.Printf("%-16s %-22s %-10s %-18s %s\n", "KEY", "MODEL", "PROVIDER", "COST ($/1M in/out)", "STATUS")
		for _, key := range llm.AvailableModels() {
			spec, err := llm.GetModelSpec(key)
			if err != nil {
				continue
			}

			status, seen := checked[spec.Provider]
			if !seen {
				if ok, reason := llm.CheckProvider(spec.Provider); ok {
					status = "available"
				} else {
					status = reason
				}
				checked[spec.Provider] = status
			}

			fmt.Printf("%-16s %-22s %-10s $%.2f / $%-8.2f %s\n",
				spec.Key, spec.DisplayName, spec.Provider, spec.InputPer1M, spec.OutputPer1M, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

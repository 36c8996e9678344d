package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historySearch  string
	historyProject string
	historyLimit   int
)

// historyCmd lists or searches stored past analyses.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or search stored past analyses",
	Long: `History queries the local analysis store. Without flags it lists the
most recent analyses; --search runs a semantic similarity query and
--project restricts results to one project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore(cmd.Context())
		if err != nil {
			return err
		}

		switch {
		case historySearch != "":
			hits, err := store.SearchSimilar(cmd.Context(), historySearch, historyLimit, nil)
			if err != nil {
				return fmt.Errorf("search history: %w", err)
			}
			fmt.Println(formatSearchResults(hits))
		case historyProject != "":
			hits, err := store.SearchByProject(cmd.Context(), historyProject, historyLimit)
			if err != nil {
				return fmt.Errorf("search history by project: %w", err)
			}
			fmt.Println(formatSearchResults(hits))
		default:
			entries, err := store.History(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No stored analyses yet. Run 'devflow analyze --save' first.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %s  project=%s builds=%s\n",
					e.Metadata["analysis_date"], e.ID, e.Metadata["project"], e.Metadata["n_builds"])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historySearch, "search", "", "semantic search query over past analyses")
	historyCmd.Flags().StringVar(&historyProject, "project", "", "restrict to analyses of one project")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 5, "maximum number of results")
}

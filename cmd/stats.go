package cmd

import (
	"context"
	"fmt"

	"github.com/example/vocabmaster/internal/app"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			st, err := a.Coordinator.Stats(ctx)
			if err != nil {
				return err
			}
			words, err := a.Coordinator.ListWords(ctx)
			if err != nil {
				return err
			}
			due, err := a.Coordinator.DueCount(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words:          %d\n", len(words))
			fmt.Fprintf(out, "Due now:        %d\n", due)
			fmt.Fprintf(out, "Reviewed today: %d\n", st.TodayReviewed)
			fmt.Fprintf(out, "Reviewed total: %d\n", st.TotalReviewed)
			if st.LastReviewDate != nil {
				fmt.Fprintf(out, "Last review:    %s\n", st.LastReviewDate)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

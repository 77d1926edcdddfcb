package cmd

import (
	"context"
	"fmt"

	"github.com/example/vocabmaster/internal/app"
	"github.com/spf13/cobra"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Google Sheets activity log",
}

var sheetsListCmd = &cobra.Command{
	Use:   "list [sheet-url]",
	Short: "List the tabs of the configured (or given) spreadsheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			client, err := a.SheetsClient()
			if err != nil {
				return err
			}
			sheetURL := ""
			if len(args) == 1 {
				sheetURL = args[0]
			} else {
				s, err := a.Coordinator.Settings(ctx)
				if err != nil {
					return err
				}
				sheetURL = s.SheetURL
			}
			if sheetURL == "" {
				return fmt.Errorf("no sheet URL configured; run `vocabmaster settings set --sheet-url ...`")
			}

			titles, err := client.FetchSheets(ctx, sheetURL)
			if err != nil {
				return err
			}
			for _, t := range titles {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		})
	},
}

func init() {
	sheetsCmd.AddCommand(sheetsListCmd)
	rootCmd.AddCommand(sheetsCmd)
}

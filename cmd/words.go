package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/vocabmaster/internal/app"
	"github.com/example/vocabmaster/internal/excel"
	"github.com/example/vocabmaster/internal/spaced_repetition"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/spf13/cobra"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List and manage highlighted words",
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List highlighted words",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		asJSON, _ := cmd.Flags().GetBool("json")
		dueOnly, _ := cmd.Flags().GetBool("due")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			words, err := a.Coordinator.ListWords(ctx)
			if err != nil {
				return err
			}
			now := time.Now()
			filtered := words[:0]
			for _, w := range words {
				if url != "" && w.SourceURL != url {
					continue
				}
				if dueOnly && !spaced_repetition.IsDue(w, now) {
					continue
				}
				filtered = append(filtered, w)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(filtered)
			}
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No highlighted words yet")
				return nil
			}
			for _, w := range filtered {
				fmt.Fprintf(out, "%-30s %-4d %-12s %s\n", w.Word, w.OccurrenceCount, nextReview(w, now), meaningOrPlaceholder(w))
			}
			return nil
		})
	},
}

func nextReview(w models.WordRecord, now time.Time) string {
	if spaced_repetition.IsDue(w, now) {
		return "due"
	}
	return w.ReviewState.NextReviewAt.Local().Format("2006-01-02")
}

func meaningOrPlaceholder(w models.WordRecord) string {
	if w.Meaning == "" {
		return "(no meaning yet)"
	}
	return w.Meaning
}

var wordsDeleteCmd = &cobra.Command{
	Use:   "delete <word>",
	Short: "Delete a word",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		word := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			removed, err := a.Coordinator.DeleteWord(ctx, word)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q was not highlighted\n", word)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", word)
			return nil
		})
	},
}

var wordsDeleteAllCmd = &cobra.Command{
	Use:   "delete-all --url <page>",
	Short: "Delete every word first highlighted on a page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			return fmt.Errorf("--url is required")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Coordinator.DeleteAllFor(ctx, url)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d words, %d remaining\n", res.Deleted, res.Remaining)
			return nil
		})
	},
}

var wordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all words",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to delete every word without --yes")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Coordinator.DeleteAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d words\n", n)
			return nil
		})
	},
}

var wordsMeaningCmd = &cobra.Command{
	Use:   "meaning <word> <meaning...>",
	Short: "Set the meaning of a word",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			rec, err := a.Coordinator.UpdateMeaning(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", rec.Word, rec.Meaning)
			return nil
		})
	},
}

var wordsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import words from a spreadsheet or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		startRow, _ := cmd.Flags().GetInt("start-row")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			cfg := excel.DefaultImportConfig()
			cfg.FilePath = args[0]
			cfg.SheetName = sheet
			cfg.StartRow = startRow
			res, err := excel.ImportWords(ctx, a.Coordinator, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d rows: %d created, %d updated, %d skipped\n",
				res.TotalProcessed, res.Created, res.Updated, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(out, "  "+e)
			}
			return nil
		})
	},
}

var wordsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx|file.csv>",
	Short: "Export words to a spreadsheet or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			words, err := a.Coordinator.ListWords(ctx)
			if err != nil {
				return err
			}
			if err := excel.ExportWords(args[0], words); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d words to %s\n", len(words), args[0])
			return nil
		})
	},
}

func init() {
	wordsListCmd.Flags().String("url", "", "only words first seen on this page")
	wordsListCmd.Flags().Bool("json", false, "print JSON")
	wordsListCmd.Flags().Bool("due", false, "only words due for review")
	wordsDeleteAllCmd.Flags().String("url", "", "page URL")
	wordsClearCmd.Flags().Bool("yes", false, "confirm deleting every word")
	wordsImportCmd.Flags().String("sheet", "Sheet1", "sheet to read from an .xlsx file")
	wordsImportCmd.Flags().Int("start-row", 2, "first data row (1-based)")

	wordsCmd.AddCommand(wordsListCmd, wordsDeleteCmd, wordsDeleteAllCmd, wordsClearCmd,
		wordsMeaningCmd, wordsImportCmd, wordsExportCmd)
	rootCmd.AddCommand(wordsCmd)
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/vocabmaster/internal/app"
	"github.com/example/vocabmaster/internal/review"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a batch of words",
	Long:  "Presents a batch of words, due ones first. Answer y if you knew the word, n if not, q to stop.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			batch, err := a.Coordinator.ReviewBatch(ctx, count)
			if err != nil {
				return err
			}
			session := review.NewSession(a.Coordinator)
			a.Log.Debug("review session started", "session", session.ID, "words", len(batch))
			return runSession(ctx, session, batch, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

func init() {
	reviewCmd.Flags().IntP("count", "n", 0, "number of words, 1-20 (default from settings)")
	rootCmd.AddCommand(reviewCmd)
}

func runSession(ctx context.Context, session *review.Session, batch []models.WordRecord, in io.Reader, out io.Writer) error {
	if session.Start(batch) == review.NoWordsAvailable {
		fmt.Fprintln(out, "No words to review yet. Highlight some words first.")
		return nil
	}

	scanner := bufio.NewScanner(in)
	for session.State() == review.Presenting {
		word, _ := session.Current()
		fmt.Fprintf(out, "[%d/%d] %s\n", session.Index()+1, session.Len(), word.Word)
		fmt.Fprint(out, "Did you know it? [y/n/q] ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		var knewIt bool
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			knewIt = true
		case "n", "no":
			knewIt = false
		case "q", "quit":
			fmt.Fprintf(out, "Stopped after %d of %d words\n", session.Index(), session.Len())
			return nil
		default:
			fmt.Fprintln(out, "Please answer y, n or q")
			continue
		}

		res, err := session.Respond(ctx, knewIt)
		if err != nil {
			fmt.Fprintf(out, "Could not save the answer: %v\n", err)
			continue
		}
		if word.Meaning != "" {
			fmt.Fprintf(out, "      %s\n", word.Meaning)
		}
		fmt.Fprintf(out, "      next review in %d day(s)\n", res.State.IntervalDays)
	}

	if session.State() == review.Completed {
		known := 0
		for _, r := range session.Results() {
			if r.KnewIt {
				known++
			}
		}
		fmt.Fprintf(out, "Review complete: knew %d of %d words\n", known, session.Len())
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/vocabmaster/internal/app"
	"github.com/example/vocabmaster/internal/highlight"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/spf13/cobra"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight <text>",
	Short: "Record a highlighted word or phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return runHighlight(ctx, cmd, a, strings.Join(args, " "))
		})
	},
}

func init() {
	f := highlightCmd.Flags()
	f.String("url", "", "page URL the word was found on")
	f.String("title", "", "page title")
	f.String("color", "", "highlight color (default from settings)")
	f.String("dom-path", "", "DOM path of the selected text node")
	f.Int("start", 0, "start offset of the selection")
	f.Int("end", 0, "end offset of the selection")
	f.String("keys", "", "pressed shortcut, e.g. alt+h; must match the configured one")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(ctx context.Context, cmd *cobra.Command, a *app.App, text string) error {
	f := cmd.Flags()
	url, _ := f.GetString("url")
	title, _ := f.GetString("title")
	color, _ := f.GetString("color")
	domPath, _ := f.GetString("dom-path")
	start, _ := f.GetInt("start")
	end, _ := f.GetInt("end")
	keys, _ := f.GetString("keys")

	s, err := a.Coordinator.Settings(ctx)
	if err != nil {
		return err
	}
	if keys != "" {
		modifier, key, _ := strings.Cut(keys, "+")
		if !highlight.Matches(modifier, key, s) {
			return fmt.Errorf("%s is not the highlight shortcut (%s+%s)", keys, s.ShortcutModifier, s.ShortcutKey)
		}
	}
	if color == "" {
		color = s.HighlightColor
	}

	page := highlight.NewPage(url, title, color)
	var loc *models.Location
	if domPath != "" {
		loc = &models.Location{DOMPath: domPath, StartOffset: start, EndOffset: end}
	}
	if !page.Select(text, loc) {
		return fmt.Errorf("nothing to highlight: %q is empty or too long", text)
	}

	rec, _, err := page.Commit(ctx, a.Coordinator)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Highlighted %q (seen %d times)\n", rec.Word, rec.OccurrenceCount)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/vocabmaster/internal/app"
	"github.com/example/vocabmaster/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show, change, export and import settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(cmd, "")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			s, err := a.Coordinator.Settings(ctx)
			if err != nil {
				return err
			}
			return settings.Export(cmd.OutOrStdout(), s, format, time.Now())
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change individual settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			s, err := a.Coordinator.Settings(ctx)
			if err != nil {
				return err
			}
			if f.Changed("modifier") {
				s.ShortcutModifier, _ = f.GetString("modifier")
			}
			if f.Changed("key") {
				s.ShortcutKey, _ = f.GetString("key")
			}
			if f.Changed("color") {
				s.HighlightColor, _ = f.GetString("color")
			}
			if f.Changed("batch-size") {
				s.ReviewBatchSize, _ = f.GetInt("batch-size")
			}
			if f.Changed("sheet-url") {
				s.SheetURL, _ = f.GetString("sheet-url")
			}
			if f.Changed("sheet-name") {
				s.SheetName, _ = f.GetString("sheet-name")
			}
			saved, err := a.Coordinator.UpdateSettings(ctx, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved")
			return settings.Export(cmd.OutOrStdout(), saved, settings.FormatYAML, time.Now())
		})
	},
}

var settingsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the settings to a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(cmd, args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			s, err := a.Coordinator.Settings(ctx)
			if err != nil {
				return err
			}
			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer file.Close()
			if err := settings.Export(file, s, format, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings exported to %s\n", args[0])
			return nil
		})
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load settings from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(cmd, args[0])
		if err != nil {
			return err
		}
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()
		imported, err := settings.Import(file, format)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if _, err := a.Coordinator.UpdateSettings(ctx, imported); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings imported")
			return nil
		})
	},
}

// formatFlag reads --format, falling back to the extension of path
func formatFlag(cmd *cobra.Command, path string) (settings.Format, error) {
	value, _ := cmd.Flags().GetString("format")
	if value == "" && path != "" {
		value = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	return settings.ParseFormat(value)
}

func init() {
	for _, c := range []*cobra.Command{settingsShowCmd, settingsExportCmd, settingsImportCmd} {
		c.Flags().String("format", "", "json or yaml (default from file extension, else json)")
	}
	f := settingsSetCmd.Flags()
	f.String("modifier", "", "shortcut modifier: alt, ctrl, shift or meta")
	f.String("key", "", "shortcut key")
	f.String("color", "", "highlight color, e.g. #FFEB3B")
	f.Int("batch-size", 0, "words per review batch (1-20)")
	f.String("sheet-url", "", "Google Sheets URL for activity logging, empty to disable")
	f.String("sheet-name", "", "tab of the sheet to append to")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsExportCmd, settingsImportCmd)
	rootCmd.AddCommand(settingsCmd)
}

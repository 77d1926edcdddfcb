package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/vocabmaster/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run in the background and send review reminders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !a.Config.Reminder.Enabled {
				a.Log.Warn("reminders are disabled; set reminder.enabled to get notified about due words")
			} else {
				sched, err := a.Scheduler()
				if err != nil {
					return err
				}
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer sched.Stop()
				a.Log.Info("reminder scheduler started", "interval", a.Config.Reminder.Interval)
			}

			a.Log.Info("vocabmaster running, press Ctrl+C to stop")
			<-ctx.Done()
			a.Log.Info("shutting down")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/vocabmaster/internal/app"
	"github.com/example/vocabmaster/internal/config"
	"github.com/example/vocabmaster/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "vocabmaster",
	Short:         "Collect highlighted words and review them with spaced repetition",
	Long:          "vocabmaster stores the words you highlight while reading, optionally logs them to a Google Sheet, and schedules them for review at doubling intervals.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initErr error

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .vocabmaster.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	initErr = config.Init(cfgFile)
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	log := logging.New(lc)
	slog.SetDefault(log)
	return log, nil
}

// withApp loads the configuration, starts an App for the duration of fn and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	if initErr != nil {
		return initErr
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close", "error", err)
		}
	}()
	if err := a.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

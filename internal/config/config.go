// Package config loads runtime configuration from a .env file, an optional
// config file, VOCABMASTER_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VOCABMASTER_LOG_LEVEL
const EnvPrefix = "VOCABMASTER"

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SheetsConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
}

type ReminderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	StartHour int           `mapstructure:"start_hour"`
	EndHour   int           `mapstructure:"end_hour"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// Config holds all runtime configuration
type Config struct {
	Database    DatabaseConfig `mapstructure:"database"`
	Log         LogConfig      `mapstructure:"log"`
	MergePolicy string         `mapstructure:"merge_policy"`
	Timezone    string         `mapstructure:"timezone"`
	CallTimeout time.Duration  `mapstructure:"call_timeout"`
	Sheets      SheetsConfig   `mapstructure:"sheets"`
	Reminder    ReminderConfig `mapstructure:"reminder"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
}

// Init points viper at the config file and the environment.
// A missing .env or config file is not an error.
func Init(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".vocabmaster")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// names used by earlier deployments
	_ = viper.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = viper.BindEnv("database.driver", EnvPrefix+"_DATABASE_DRIVER", "DB_TYPE")
	_ = viper.BindEnv("reminder.start_hour", EnvPrefix+"_REMINDER_START_HOUR", "NOTIFICATION_START_HOUR")
	_ = viper.BindEnv("reminder.end_hour", EnvPrefix+"_REMINDER_END_HOUR", "NOTIFICATION_END_HOUR")

	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("merge_policy", "word")
	viper.SetDefault("timezone", "Local")
	viper.SetDefault("call_timeout", 10*time.Second)
	viper.SetDefault("sheets.credentials_file", "")
	viper.SetDefault("sheets.timeout", 15*time.Second)
	viper.SetDefault("sheets.workers", 2)
	viper.SetDefault("sheets.queue_size", 64)
	viper.SetDefault("reminder.enabled", false)
	viper.SetDefault("reminder.interval", time.Hour)
	viper.SetDefault("reminder.start_hour", 8)
	viper.SetDefault("reminder.end_hour", 22)
	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.chat_id", 0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Reminder.StartHour < 0 || c.Reminder.StartHour > 23 {
		return fmt.Errorf("reminder.start_hour must be 0-23, got %d", c.Reminder.StartHour)
	}
	if c.Reminder.EndHour < 0 || c.Reminder.EndHour > 23 {
		return fmt.Errorf("reminder.end_hour must be 0-23, got %d", c.Reminder.EndHour)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive, got %s", c.CallTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for day boundaries and reminder hours
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

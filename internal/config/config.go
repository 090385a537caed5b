package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	v       *viper.Viper
	Logger  *log.Logger
	logFile *lumberjack.Logger
}

// NewConfig loads the configuration from various sources using viper
func NewConfig() (*Config, error) {
	// A .env file is optional and never overrides variables already in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("error reading .env file: %v", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	// Try to read config file (don't error if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		l := log.New(os.Stderr)
		l.Warnf("error reading config file: %v\nContinuing with envs...", err)
	}

	if err := bindEnvs(v); err != nil {
		return nil, fmt.Errorf("error binding environment variables: %w", err)
	}

	logFile, err := newLogFile(v.GetString("log_dir"), v.GetInt("log_max_age_days"))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	// Log both to a file and to stderr
	w := io.MultiWriter(os.Stderr, logFile)

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "ditto",
	})
	if lvl, err := log.ParseLevel(v.GetString("log_level")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("unknown log_level %q, using info", v.GetString("log_level"))
	}

	return &Config{
		v:       v,
		Logger:  logger,
		logFile: logFile,
	}, nil
}

// newLogFile opens a size/age rotated log file inside dir
func newLogFile(dir string, maxAgeDays int) (*lumberjack.Logger, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory is not set")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename: filepath.Join(dir, "ditto.log"),
		MaxSize:  50, // megabytes
		MaxAge:   maxAgeDays,
		Compress: true,
	}, nil
}

// RotateLogs starts a new log file; lumberjack prunes files past log_max_age_days.
func (c *Config) RotateLogs() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Rotate()
}

// NewMockConfig creates a mock configuration for testing
func NewMockConfig(kv map[string]interface{}) *Config {
	v := viper.New()
	setDefaults(v)
	for k, val := range kv {
		v.Set(k, val)
	}
	return &Config{
		v:      v,
		Logger: log.New(io.Discard),
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_age_days", 7)
	v.SetDefault("database_path", "./ditto.db")

	v.SetDefault("emoji.leave_free", 1)
	v.SetDefault("emoji.not_found", "❓")
	v.SetDefault("emoji.sweep_orphans", false)
	v.SetDefault("emoji.create_rate_per_minute", 10)
	v.SetDefault("emoji.sweep_schedule", "@hourly")
}

// bindEnvs binds environment variables to viper keys
func bindEnvs(v *viper.Viper) error {
	bindings := []struct {
		key string
		env string
	}{
		{"bot_token", "DITTO_BOT_TOKEN"},
		{"log_dir", "DITTO_LOG_DIR"},
		{"log_level", "DITTO_LOG_LEVEL"},
		{"database_path", "DITTO_DATABASE_PATH"},
		{"log_channel_id", "DITTO_LOG_CHANNEL_ID"},
		{"emoji.leave_free", "DITTO_EMOJI_LEAVE_FREE"},
		{"emoji.not_found", "DITTO_EMOJI_NOT_FOUND"},
		{"emoji.sweep_orphans", "DITTO_EMOJI_SWEEP_ORPHANS"},
	}

	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return fmt.Errorf("error binding %s environment variable: %w", binding.key, err)
		}
	}
	return nil
}

// Validate checks the fields needed to connect to Discord
func (c *Config) Validate() error {
	if c.v.GetString("bot_token") == "" {
		return fmt.Errorf("bot_token is required (set DITTO_BOT_TOKEN environment variable)")
	}

	guilds, err := c.GetEmojiGuilds()
	if err != nil {
		return err
	}
	if len(guilds) == 0 {
		c.Logger.Warn("emoji.guilds is empty; avatar emoji will not be available")
	}

	if c.GetEmojiLeaveFree() < 0 {
		return fmt.Errorf("emoji.leave_free must not be negative")
	}

	return nil
}

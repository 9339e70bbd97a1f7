// Package config loads stream runtime configuration from a TOML file and environment variables, exposing typed structs for all sections.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// HomeEnv names the environment variable overriding the home directory.
const HomeEnv = "STREAM_HOME"

// Config is the runtime configuration loaded from defaults, config.toml, and env vars.
type Config struct {
	// HomeDir is runtime-resolved from STREAM_HOME and not read from config.
	HomeDir  string         `mapstructure:"-"`
	Log      LogConfig      `mapstructure:"log"`
	Stream   StreamConfig   `mapstructure:"stream"`
	REPL     REPLConfig     `mapstructure:"repl"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Stress   StressConfig   `mapstructure:"stress"`
}

// LogConfig selects the process log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StreamConfig configures the default registry.
type StreamConfig struct {
	Debug bool `mapstructure:"debug"`
}

// REPLConfig configures the interactive console.
type REPLConfig struct {
	// HistoryFile is relative to HomeDir unless absolute. Empty disables history.
	HistoryFile  string `mapstructure:"history_file"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// ScheduleConfig configures the cron tick broadcaster.
type ScheduleConfig struct {
	Spec string `mapstructure:"spec"`
	// Tag is the Ticker proxy tag; empty means untagged.
	Tag string `mapstructure:"tag"`
}

// StressConfig configures the concurrent dispatch exerciser.
type StressConfig struct {
	Workers   int           `mapstructure:"workers"`
	Calls     int           `mapstructure:"calls"`
	Listeners int           `mapstructure:"listeners"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

var defaultConfig = Config{
	Log: LogConfig{
		Level:  "info",
		Format: "console",
	},
	REPL: REPLConfig{
		HistoryFile:  HistoryFilePath,
		HistoryLimit: 500,
	},
	Schedule: ScheduleConfig{
		Spec: "@every 1s",
	},
	Stress: StressConfig{
		Workers:   8,
		Calls:     1000,
		Listeners: 16,
		Timeout:   30 * time.Second,
	},
}

// homeDir returns the stream home directory.
// Uses STREAM_HOME env var if set, otherwise defaults to ~/.stream.
func homeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return defaultHomePath(home), nil
}

// HomeDir returns the resolved home directory without loading the config.
func HomeDir() (string, error) {
	return homeDir()
}

// Load merges hardcoded defaults and config file values in that order.
// Config is always at $STREAM_HOME/config.toml; $STREAM_HOME/.env, when
// present, seeds environment variables that are not already set.
func Load() (*Config, error) {
	homeDir, err := homeDir()
	if err != nil {
		return nil, err
	}
	if err := loadEnvFile(homeEnvPath(homeDir)); err != nil {
		return nil, err
	}

	v, err := read(homeDir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = homeDir

	return &cfg, nil
}

// Write writes the merged configuration (defaults overlaid by user
// config) to w in TOML format.
func Write(w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	homeDir, err := homeDir()
	if err != nil {
		return err
	}
	v, err := read(homeDir)
	if err != nil {
		return err
	}

	// Keep duration fields human-readable in generated TOML.
	v.Set("stress.timeout", v.GetDuration("stress.timeout").String())

	if err := v.WriteConfigTo(w); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultUserConfigTOML renders the bootstrap user config as TOML.
func DefaultUserConfigTOML() (string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.Set("log.level", defaultConfig.Log.Level)
	v.Set("log.format", defaultConfig.Log.Format)
	v.Set("stream.debug", defaultConfig.Stream.Debug)
	v.Set("repl.history_file", defaultConfig.REPL.HistoryFile)
	v.Set("schedule.spec", defaultConfig.Schedule.Spec)
	v.Set("schedule.tag", defaultConfig.Schedule.Tag)

	var out bytes.Buffer
	if err := v.WriteConfigTo(&out); err != nil {
		return "", fmt.Errorf("write default user config: %w", err)
	}
	return out.String(), nil
}

func read(homeDir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", defaultConfig.Log.Level)
	v.SetDefault("log.format", defaultConfig.Log.Format)

	v.SetDefault("stream.debug", defaultConfig.Stream.Debug)

	v.SetDefault("repl.history_file", defaultConfig.REPL.HistoryFile)
	v.SetDefault("repl.history_limit", defaultConfig.REPL.HistoryLimit)

	v.SetDefault("schedule.spec", defaultConfig.Schedule.Spec)
	v.SetDefault("schedule.tag", defaultConfig.Schedule.Tag)

	v.SetDefault("stress.workers", defaultConfig.Stress.Workers)
	v.SetDefault("stress.calls", defaultConfig.Stress.Calls)
	v.SetDefault("stress.listeners", defaultConfig.Stress.Listeners)
	v.SetDefault("stress.timeout", defaultConfig.Stress.Timeout)
}

func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Validatable = LogConfig{}
	_ Validatable = StreamConfig{}
	_ Validatable = REPLConfig{}
	_ Validatable = ScheduleConfig{}
	_ Validatable = StressConfig{}
)

func validConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Sections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }, want: "log: unsupported log level"},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log: invalid format"},
		{name: "history limit", mutate: func(c *Config) { c.REPL.HistoryLimit = -1 }, want: "repl: history_limit"},
		{name: "empty spec", mutate: func(c *Config) { c.Schedule.Spec = "" }, want: "schedule: spec is required"},
		{name: "bad spec", mutate: func(c *Config) { c.Schedule.Spec = "every tuesday" }, want: "schedule: invalid spec"},
		{name: "workers", mutate: func(c *Config) { c.Stress.Workers = 0 }, want: "stress: workers must be > 0"},
		{name: "timeout", mutate: func(c *Config) { c.Stress.Timeout = -time.Second }, want: "stress: timeout must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Format = "xml"
	cfg.Stress.Calls = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log: invalid format")
	assert.Contains(t, err.Error(), "stress: calls must be > 0")
}

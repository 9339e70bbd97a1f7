package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/neoclaw-ai/stream/internal/logging"
)

// Validatable is implemented by config sections that can self-validate.
type Validatable interface {
	Validate() error
}

// Validate checks the log level and format names.
func (c LogConfig) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Format) {
	case logging.FormatConsole, logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid format %q (allowed: %q, %q, %q)", c.Format, logging.FormatConsole, logging.FormatText, logging.FormatJSON))
	}
	return errors.Join(errs...)
}

func (c StreamConfig) Validate() error {
	return nil
}

// Validate checks the history limit.
func (c REPLConfig) Validate() error {
	if c.HistoryLimit < 0 {
		return errors.New("history_limit must be >= 0")
	}
	return nil
}

// Validate checks that spec parses as a cron schedule.
func (c ScheduleConfig) Validate() error {
	if c.Spec == "" {
		return errors.New("spec is required")
	}
	if _, err := cron.ParseStandard(c.Spec); err != nil {
		return fmt.Errorf("invalid spec %q: %w", c.Spec, err)
	}
	return nil
}

// Validate checks the stress run sizes.
func (c StressConfig) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be > 0"))
	}
	if c.Calls <= 0 {
		errs = append(errs, errors.New("calls must be > 0"))
	}
	if c.Listeners < 0 {
		errs = append(errs, errors.New("listeners must be >= 0"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be > 0"))
	}
	return errors.Join(errs...)
}

// Validate validates every section and joins their errors.
func (cfg *Config) Validate() error {
	sections := []struct {
		name string
		v    Validatable
	}{
		{"log", cfg.Log},
		{"stream", cfg.Stream},
		{"repl", cfg.REPL},
		{"schedule", cfg.Schedule},
		{"stress", cfg.Stress},
	}

	var errs []error
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

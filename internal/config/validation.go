package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Booking.validate(); err != nil {
		return err
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store is enabled")
	}
	if c.Queue.Enabled && strings.TrimSpace(c.Queue.Addr) == "" {
		return fmt.Errorf("queue.addr is required when queue is enabled")
	}
	if c.Queue.DB < 0 {
		return fmt.Errorf("queue.db must be >= 0")
	}
	if c.Queue.BreakerThreshold < 0 {
		return fmt.Errorf("queue.breaker_threshold must be >= 0")
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required when http is enabled")
	}
	if c.Inbox.Enabled && strings.TrimSpace(c.Inbox.Dir) == "" {
		return fmt.Errorf("inbox.dir is required when inbox is enabled")
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug|info|warn|error, got %q", a.LogLevel)
	}
	switch a.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (b *BookingConfig) validate() error {
	switch b.ClassificationMode {
	case "pricing", "pair":
	default:
		return fmt.Errorf("booking.classification_mode must be pricing or pair, got %q", b.ClassificationMode)
	}
	if b.Workers <= 0 {
		return fmt.Errorf("booking.workers must be > 0")
	}
	if len(b.PlaceholderPeriods) == 0 {
		return nil
	}
	if len(b.PlaceholderPeriods) != 2 {
		return fmt.Errorf("booking.placeholder_periods needs exactly 2 periods, got %d", len(b.PlaceholderPeriods))
	}
	for i, p := range b.PlaceholderPeriods {
		start, err := time.Parse(time.DateOnly, strings.TrimSpace(p.Effective))
		if err != nil {
			return fmt.Errorf("booking.placeholder_periods[%d].effective: %w", i, err)
		}
		end, err := time.Parse(time.DateOnly, strings.TrimSpace(p.Termination))
		if err != nil {
			return fmt.Errorf("booking.placeholder_periods[%d].termination: %w", i, err)
		}
		if !end.After(start) {
			return fmt.Errorf("booking.placeholder_periods[%d] ends before it starts", i)
		}
	}
	return nil
}

func (o *OutputConfig) validate() error {
	if !o.Enabled {
		return nil
	}
	if strings.TrimSpace(o.Dir) == "" {
		return fmt.Errorf("output.dir is required when output is enabled")
	}
	if !strings.Contains(o.FilePattern, "{unit}") {
		return fmt.Errorf("output.file_pattern must contain {unit}, got %q", o.FilePattern)
	}
	if filepath.IsAbs(o.FilePattern) {
		return fmt.Errorf("output.file_pattern must be relative to output.dir")
	}
	return nil
}

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	HTTPPort    int           `envconfig:"HTTP_PORT" default:"5000"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"./downloads"`

	// RetentionTTL is how long an untouched entry survives in DownloadDir.
	RetentionTTL  time.Duration `envconfig:"RETENTION_TTL" default:"4h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	// TaskRetention is how long a finished task record stays pollable.
	TaskRetention time.Duration `envconfig:"TASK_RETENTION" default:"4h"`

	// MaxConcurrentTasks caps running engine calls; 0 means unbounded.
	MaxConcurrentTasks int  `envconfig:"MAX_CONCURRENT_TASKS" default:"0"`
	InstallEngine      bool `envconfig:"INSTALL_ENGINE" default:"false"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	if c.RetentionTTL <= 0 {
		return fmt.Errorf("retention TTL must be positive: %s", c.RetentionTTL)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive: %s", c.SweepInterval)
	}

	if c.TaskRetention <= 0 {
		return fmt.Errorf("task retention must be positive: %s", c.TaskRetention)
	}

	if c.MaxConcurrentTasks < 0 {
		return fmt.Errorf("max concurrent tasks cannot be negative: %d", c.MaxConcurrentTasks)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	t.Setenv("MD_DOWNLOAD_DIR", dir)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, 4*time.Hour, cfg.RetentionTTL)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 0, cfg.MaxConcurrentTasks)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_EnvFile(t *testing.T) {
	tmp := t.TempDir()
	envFile := filepath.Join(tmp, "test.env")
	content := "MD_HTTP_PORT=9090\nMD_MAX_CONCURRENT_TASKS=3\nMD_DOWNLOAD_DIR=" + filepath.Join(tmp, "dl") + "\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	t.Cleanup(func() {
		os.Unsetenv("MD_HTTP_PORT")
		os.Unsetenv("MD_MAX_CONCURRENT_TASKS")
		os.Unsetenv("MD_DOWNLOAD_DIR")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3, cfg.MaxConcurrentTasks)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTPPort:      8080,
			DownloadDir:   "./downloads",
			RetentionTTL:  time.Hour,
			SweepInterval: time.Minute,
			TaskRetention: time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 70000 }, wantErr: true},
		{name: "empty dir", mutate: func(c *Config) { c.DownloadDir = "" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.RetentionTTL = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: true},
		{name: "negative cap", mutate: func(c *Config) { c.MaxConcurrentTasks = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

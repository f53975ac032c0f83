package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COHORTPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "cohort-metrics", cfg.Store.Bucket)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"usc.edu", "med.usc.edu"}, cfg.Auth.AllowedDomains)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxSize)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
store:
  enabled: true
  endpoint: https://store.example.org
  bucket: study-data
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("COHORTPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "study-data", cfg.Store.Bucket)
	assert.Equal(t, "https://store.example.org/study-data", cfg.StoreURL())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("COHORTPULSE_CONFIG", path)
	t.Setenv("COHORTPULSE_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name: "endpoint without scheme",
			mutate: func(c *Config) {
				c.Store.Enabled = true
				c.Store.Endpoint = "store.example.org"
			},
			wantErr: "must be an http(s) URL",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Minute },
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDefaultIsSampleOnly(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Store.Enabled)
	assert.False(t, cfg.Auth.Enabled)
	assert.NoError(t, cfg.validate())
}

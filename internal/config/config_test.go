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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, time.Second, cfg.Practice.TickInterval)
	assert.Equal(t, 10, cfg.Practice.MaxRequeuesPerCard)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STUDYAID_PORT", "9090")
	t.Setenv("STUDYAID_DB_HOST", "db.internal")
	t.Setenv("STUDYAID_PRACTICE_MAX_REQUEUES_PER_CARD", "0")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 0, cfg.Practice.MaxRequeuesPerCard)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyaid.yaml")
	content := "port: 7070\npractice:\n  tick_interval: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Practice.TickInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Port:      8080,
			Token:     TokenConfig{Secret: "s", TTL: time.Hour},
			RateLimit: RateLimitConfig{RPS: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"empty secret", func(c *Config) { c.Token.Secret = "" }, true},
		{"negative requeue cap", func(c *Config) { c.Practice.MaxRequeuesPerCard = -1 }, true},
		{"negative tick", func(c *Config) { c.Practice.TickInterval = -time.Second }, true},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", c.DSN())
}

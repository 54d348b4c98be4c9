package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a Go 1.21 stand-in for testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "postgres://localhost/tutors")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "reservations", cfg.RabbitMQExchange)
	assert.Equal(t, 3, cfg.QuickLimit)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.TracingEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "postgres://localhost/tutors")
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("QUICK_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.QuickLimit)
}

func TestLoadRequiresDSN(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "http without secret", cfg: Config{DBDSN: "dsn", HTTPAddr: ":8080"}, wantErr: true},
		{name: "nothing enabled", cfg: Config{DBDSN: "dsn"}, wantErr: true},
		{name: "negative quick limit", cfg: Config{DBDSN: "dsn", TelegramToken: "x", QuickLimit: -1}, wantErr: true},
		{name: "bot only", cfg: Config{DBDSN: "dsn", TelegramToken: "x"}},
		{name: "missing dsn", cfg: Config{TelegramToken: "x"}, wantErr: true},
		{name: "http only", cfg: Config{DBDSN: "dsn", HTTPAddr: ":8080", JWTSecret: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

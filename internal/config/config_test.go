package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "DATABASE_DRIVER=sqlite\n" +
		"DATABASE_URL=file:test.db\n" +
		"DB_MAX_OPEN_CONNS=1\n" +
		"SESSION_HOLD_DELAY=2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, 1, cfg.MaxOpenConns)
	assert.Equal(t, 2*time.Second, cfg.SessionHoldDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.SessionPoll)
	assert.Equal(t, 20, cfg.SessionPollAttempt)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:env.db")
	t.Setenv("SESSION_POLL_ATTEMPTS", "3")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "file:env.db", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.SessionPollAttempt)
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseDriver:     DriverPostgres,
		DatabaseURL:        "postgres://localhost/gamevault",
		MaxOpenConns:       1,
		SessionPoll:        time.Millisecond,
		SessionPollAttempt: 1,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.DatabaseDriver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.DatabaseURL = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.SessionPollAttempt = 0
	assert.Error(t, bad.Validate())
}

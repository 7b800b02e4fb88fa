package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  address: 127.0.0.1:9090
db:
  conn_string: postgres://localhost/freelancehub
jwt:
  secret: file-secret
engagement:
  allow_close_from_open: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	// shield the test from ambient environment
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("POSTGRES_CONN", "")
	t.Setenv("MIGRATIONS_DIR", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Address)
	require.Equal(t, "postgres://localhost/freelancehub", cfg.DB.ConnString)
	require.Equal(t, "./migrations", cfg.DB.MigrationsDir)
	require.True(t, cfg.Engagement.AllowCloseFromOpen)
	require.False(t, cfg.Engagement.AllowMilestonesBeforeAward)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:3000")
	t.Setenv("POSTGRES_CONN", "postgres://env/db")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:3000", cfg.Server.Address)
	require.Equal(t, "postgres://env/db", cfg.DB.ConnString)
	require.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("POSTGRES_CONN", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
}

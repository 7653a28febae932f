package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_ROLE", "SUPERADMIN")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "SUPERADMIN", cfg.AdminRole)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, "marketplace:events", cfg.RedisChannel)
	assert.Contains(t, cfg.DSN(), "port=5433")
}

func TestDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://u:p@db:5432/x", PostgresHost: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

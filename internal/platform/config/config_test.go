package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("development defaults", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "development")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("INSPECTION_STORE", "")
		t.Setenv("JWT_SIGNING_KEY", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, StoreMemory, cfg.InspectionStore)
		assert.Equal(t, devSigningKey, cfg.JWTSigningKey)
		assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	})

	t.Run("database URL selects postgres store", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "development")
		t.Setenv("DATABASE_URL", "postgres://localhost/lettings")
		t.Setenv("INSPECTION_STORE", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, StorePostgres, cfg.InspectionStore)
	})

	t.Run("redis store requires URL", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "development")
		t.Setenv("INSPECTION_STORE", "redis")
		t.Setenv("REDIS_URL", "")

		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("production requires signing key", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "production")
		t.Setenv("JWT_SIGNING_KEY", "")
		t.Setenv("INSPECTION_STORE", "memory")

		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("parses trusted proxies and durations", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "development")
		t.Setenv("INSPECTION_STORE", "memory")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.0/16, 10.0.0.0/8,")
		t.Setenv("TX_TIMEOUT", "250ms")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Len(t, cfg.TrustedProxies, 2)
		assert.Equal(t, 250*time.Millisecond, cfg.TxTimeout)
	})

	t.Run("rejects bad proxy prefix", func(t *testing.T) {
		t.Setenv("LETTINGS_ENV", "development")
		t.Setenv("INSPECTION_STORE", "memory")
		t.Setenv("TRUSTED_PROXIES", "not-a-cidr")

		_, err := FromEnv()
		require.Error(t, err)
	})
}

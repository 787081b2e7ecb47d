package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("missing store URL aborts", func(t *testing.T) {
		t.Setenv("PHONEBOOK_STORE_URL", "")
		t.Setenv("MONGODB_URI", "")
		_, err := Load(newViper(t))
		require.ErrorIs(t, err, ErrMissingStoreURL)
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("PHONEBOOK_STORE_URL", "memory://")
		t.Setenv("PORT", "8080")
		t.Setenv("PHONEBOOK_LOG_LEVEL", "debug")
		t.Setenv("PHONEBOOK_CORS_ORIGINS", "http://localhost:5173, https://example.com")
		t.Setenv("PHONEBOOK_SEED", "true")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, []string{"http://localhost:5173", "https://example.com"}, cfg.Server.CORSOrigins)
		assert.True(t, cfg.Seed)
		assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	})

	t.Run("falls back to MONGODB_URI", func(t *testing.T) {
		t.Setenv("PHONEBOOK_STORE_URL", "")
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		backend, err := cfg.Backend()
		require.NoError(t, err)
		assert.Equal(t, BackendMongo, backend)
	})

	t.Run("rejects unknown scheme", func(t *testing.T) {
		t.Setenv("PHONEBOOK_STORE_URL", "mysql://localhost/phonebook")
		_, err := Load(newViper(t))
		require.Error(t, err)
	})
}

func TestBackend(t *testing.T) {
	tests := map[string]Backend{
		"memory://":                          BackendMemory,
		"postgres://user:pw@localhost/db":    BackendPostgres,
		"postgresql://localhost/db":          BackendPostgres,
		"mongodb+srv://cluster0.example.net": BackendMongo,
		"redis://localhost:6379/0":           BackendRedis,
		"rediss://localhost:6380":            BackendRedis,
	}
	for raw, want := range tests {
		got, err := Config{StoreURL: raw}.Backend()
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

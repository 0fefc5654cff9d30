package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFresh(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	// No config file on the test path; defaults apply.
	cfg := loadFresh(t)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.False(t, cfg.Scheduling.IgnoreCancelled)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	os.Setenv("CLINIC_DB_PASSWORD", "env-secret")
	os.Setenv("CLINIC_JWT_SECRET", "env-jwt")
	t.Cleanup(func() {
		os.Unsetenv("CLINIC_DB_PASSWORD")
		os.Unsetenv("CLINIC_JWT_SECRET")
	})

	cfg := loadFresh(t)

	assert.Equal(t, "env-secret", cfg.Database.Password)
	assert.Equal(t, "env-jwt", cfg.JWT.Secret)
}

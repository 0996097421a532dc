package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gocart.db", cfg.DatabaseURL)
	assert.Equal(t, 24*60*60, cfg.JWTExpiration)
	assert.True(t, cfg.EnableMetrics)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("ALLOW_ALL_ORIGINS", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.Environment = "staging"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

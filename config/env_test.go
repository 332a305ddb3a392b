package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvVars(t *testing.T) {
	require.NoError(t, os.Setenv("GMWEB_TEST_VAR", "resolved"))
	defer os.Unsetenv("GMWEB_TEST_VAR")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"resolved var", "value is ${GMWEB_TEST_VAR}", "value is resolved"},
		{"default used", "value is ${GMWEB_MISSING_VAR:fallback}", "value is fallback"},
		{"missing no default", "value is ${GMWEB_MISSING_VAR}", "value is "},
		{"no template", "plain string", "plain string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SubstituteEnvVars(tt.input))
		})
	}
}

func TestSubstituteEnvVarsInConfig(t *testing.T) {
	require.NoError(t, os.Setenv("GMWEB_PROXY_TEST", "http://resolved.invalid"))
	defer os.Unsetenv("GMWEB_PROXY_TEST")

	cfg := &Config{}
	cfg.Transport.ProxyURL = "${GMWEB_PROXY_TEST}"
	SubstituteEnvVarsInConfig(cfg)
	assert.Equal(t, "http://resolved.invalid", cfg.Transport.ProxyURL)

	SubstituteEnvVarsInConfig(nil) // must not panic
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	require.NoError(t, os.Setenv("GMWEB_LOG_LEVEL", "debug"))
	require.NoError(t, os.Setenv("GMWEB_METRICS_ENABLED", "true"))
	require.NoError(t, os.Setenv("GMWEB_PERSISTENCE_BACKEND", "postgres"))
	defer func() {
		os.Unsetenv("GMWEB_LOG_LEVEL")
		os.Unsetenv("GMWEB_METRICS_ENABLED")
		os.Unsetenv("GMWEB_PERSISTENCE_BACKEND")
	}()

	cfg := &Config{}
	setDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "postgres", cfg.Persistence.Backend)
}

func TestGetEnvironment(t *testing.T) {
	os.Unsetenv("GMWEB_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())

	require.NoError(t, os.Setenv("GMWEB_ENV", "Production"))
	defer os.Unsetenv("GMWEB_ENV")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gitstats/internal/provider"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "data/gitstats.db", cfg.DBPath)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIBaseURL)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL)
	assert.Equal(t, CredentialModeToken, cfg.CredentialMode)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, provider.FailuresAsEmpty, cfg.Policy())
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.UsePostgres())
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"PORT":                    "9090",
		"LOG_LEVEL":               "debug",
		"DATABASE_URL":            "postgres://localhost/gitstats",
		"JWT_SECRET":              "0123456789abcdef0123456789abcdef",
		"GITHUB_CLIENT_ID":        "id",
		"GITHUB_CLIENT_SECRET":    "secret",
		"GITHUB_CALLBACK_URL":     "https://stats.example.com/auth/github/callback",
		"GITHUB_CREDENTIAL_MODE":  "app",
		"PROVIDER_TIMEOUT":        "5s",
		"PROVIDER_FAILURE_POLICY": "error",
	})

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.UsePostgres())
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "https://stats.example.com/auth/github/callback", cfg.GitHubCallbackURL)
	assert.Equal(t, CredentialModeApp, cfg.CredentialMode)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, provider.FailuresAsErrors, cfg.Policy())
}

func TestFromMap_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port not a number":  {"PORT": "eighty"},
		"port out of range":  {"PORT": "70000"},
		"credential mode":    {"GITHUB_CREDENTIAL_MODE": "basic"},
		"failure policy":     {"PROVIDER_FAILURE_POLICY": "retry"},
		"bad duration":       {"SESSION_TTL": "a week"},
		"non-positive fetch": {"PROVIDER_TIMEOUT": "0s"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromMap(vars)
			assert.Error(t, err)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	require.NoError(t, cfg.ResolvePaths())
	assert.True(t, len(cfg.TemplateDir) > 0 && cfg.TemplateDir[0] == '/')
	assert.True(t, len(cfg.StaticDir) > 0 && cfg.StaticDir[0] == '/')
}

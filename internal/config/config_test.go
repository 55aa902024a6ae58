package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	KeyHTTPPort, KeyAllowedOrigins, KeyShutdownTimeout, KeyDatabaseURL, KeyTenantID,
	KeyAPIClientID, KeyAuthorityHost, KeyRequiredScope, KeyOpenAIEndpoint, KeyOpenAIAPIKey,
	KeyOpenAIDeployment, KeyOpenAIModel, KeyOpenAIAPIVersion, KeySystemPrompt, KeyMode,
	KeyLogLevel, KeyLogFormat,
}

// clearEnv blanks every recognized key so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://login.microsoftonline.com", cfg.AuthorityHost)
	assert.Equal(t, "access_as_user", cfg.RequiredScope)
	assert.Equal(t, "2023-05-15", cfg.OpenAIAPIVersion)
	assert.Equal(t, "You are a helpful assistant.", cfg.SystemPrompt)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8000", cfg.Address())
}

func TestLoadFromEnvFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=sqlite:///./file.db\nAZURE_TENANT_ID=file-tenant\nALLOWED_ORIGINS=http://a.example, http://b.example\nHTTP_PORT=9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(KeyTenantID, "env-tenant")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///./file.db", cfg.DatabaseURL)
	assert.Equal(t, "env-tenant", cfg.TenantID)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 9000, cfg.HTTPPort)
}

func TestValidateAuthVariantRequiresIdentityKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyDatabaseURL, "sqlite://")
	t.Setenv(KeyMode, "MOCK")

	_, err := LoadAndValidate(missingFile(t), true)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasError(KeyTenantID))
	assert.True(t, ve.HasError(KeyAPIClientID))
	assert.False(t, ve.HasError(KeyOpenAIEndpoint))
	assert.True(t, IsConfigurationError(err))

	cfg, err := LoadAndValidate(missingFile(t), false)
	require.NoError(t, err)
	assert.True(t, cfg.MockMode())
}

func TestValidateRequiresCompletionProviderOutsideMockMode(t *testing.T) {
	cfg := &Config{HTTPPort: 8000, DatabaseURL: "sqlite://", LogLevel: "info", LogFormat: "json"}

	err := cfg.Validate(false)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors, 3)
	assert.True(t, ve.HasError(KeyOpenAIEndpoint))
	assert.True(t, ve.HasError(KeyOpenAIAPIKey))
	assert.True(t, ve.HasError(KeyOpenAIDeployment))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{HTTPPort: 0, DatabaseURL: "", LogLevel: "loud", LogFormat: "xml", Mode: "MOCK"}

	err := cfg.Validate(false)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasError(KeyHTTPPort))
	assert.True(t, ve.HasError(KeyDatabaseURL))
	assert.True(t, ve.HasError(KeyLogLevel))
	assert.True(t, ve.HasError(KeyLogFormat))
	assert.Contains(t, err.Error(), "4 errors")
}

func TestLoadUnreadableEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(dir)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "read", ce.Op)
}

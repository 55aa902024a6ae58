package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Recognized configuration keys. Each is read from the process environment,
// falling back to the .env file.
const (
	KeyHTTPPort         = "HTTP_PORT"
	KeyAllowedOrigins   = "ALLOWED_ORIGINS"
	KeyShutdownTimeout  = "SHUTDOWN_TIMEOUT_SECONDS"
	KeyDatabaseURL      = "DATABASE_URL"
	KeyTenantID         = "AZURE_TENANT_ID"
	KeyAPIClientID      = "AZURE_API_CLIENT_ID"
	KeyAuthorityHost    = "AZURE_AUTHORITY_HOST"
	KeyRequiredScope    = "REQUIRED_SCOPE"
	KeyOpenAIEndpoint   = "AZURE_OPENAI_ENDPOINT"
	KeyOpenAIAPIKey     = "AZURE_OPENAI_API_KEY"
	KeyOpenAIDeployment = "AZURE_OPENAI_DEPLOYMENT_NAME"
	KeyOpenAIModel      = "AZURE_OPENAI_MODEL"
	KeyOpenAIAPIVersion = "AZURE_OPENAI_API_VERSION"
	KeySystemPrompt     = "SYSTEM_PROMPT"
	KeyMode             = "AUDREY_MODE"
	KeyLogLevel         = "LOG_LEVEL"
	KeyLogFormat        = "LOG_FORMAT"
)

// DefaultEnvFile is the dotenv file read when no path is given.
const DefaultEnvFile = ".env"

// Load reads configuration from envFile (optional) and the environment.
// Environment variables take priority over the file. The result is not validated.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile == "" {
		envFile = DefaultEnvFile
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Op: "read", Err: err}
		}
	}

	cfg := &Config{
		HTTPPort:         v.GetInt(KeyHTTPPort),
		AllowedOrigins:   splitList(v.GetString(KeyAllowedOrigins)),
		ShutdownTimeout:  time.Duration(v.GetInt(KeyShutdownTimeout)) * time.Second,
		DatabaseURL:      v.GetString(KeyDatabaseURL),
		TenantID:         v.GetString(KeyTenantID),
		APIClientID:      v.GetString(KeyAPIClientID),
		AuthorityHost:    v.GetString(KeyAuthorityHost),
		RequiredScope:    v.GetString(KeyRequiredScope),
		OpenAIEndpoint:   v.GetString(KeyOpenAIEndpoint),
		OpenAIAPIKey:     v.GetString(KeyOpenAIAPIKey),
		OpenAIDeployment: v.GetString(KeyOpenAIDeployment),
		OpenAIModel:      v.GetString(KeyOpenAIModel),
		OpenAIAPIVersion: v.GetString(KeyOpenAIAPIVersion),
		SystemPrompt:     v.GetString(KeySystemPrompt),
		Mode:             v.GetString(KeyMode),
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:        strings.ToLower(v.GetString(KeyLogFormat)),
	}
	return cfg, nil
}

// LoadAndValidate loads configuration and validates it for the selected variant.
func LoadAndValidate(envFile string, requireAuth bool) (*Config, error) {
	cfg, err := Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(requireAuth); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPPort, 8000)
	v.SetDefault(KeyAllowedOrigins, "*")
	v.SetDefault(KeyShutdownTimeout, 10)
	v.SetDefault(KeyAuthorityHost, "https://login.microsoftonline.com")
	v.SetDefault(KeyRequiredScope, "access_as_user")
	v.SetDefault(KeyOpenAIModel, "gpt-35-turbo")
	v.SetDefault(KeyOpenAIAPIVersion, "2023-05-15")
	v.SetDefault(KeySystemPrompt, "You are a helpful assistant.")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

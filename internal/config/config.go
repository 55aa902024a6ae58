// Package config provides configuration for the chat backend.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort        int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string

	// Identity provider
	TenantID      string
	APIClientID   string
	AuthorityHost string
	RequiredScope string

	// Completion provider
	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIDeployment string
	OpenAIModel      string
	OpenAIAPIVersion string
	SystemPrompt     string
	Mode             string

	// Logging
	LogLevel  string
	LogFormat string
}

// MockMode reports whether the mock completion client is selected.
func (c *Config) MockMode() bool {
	return strings.EqualFold(c.Mode, "MOCK")
}

// Validate checks that every value required by the selected variant is present.
func (c *Config) Validate(requireAuth bool) error {
	var errs []string

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be between 1 and 65535")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, (&MissingKeyError{Key: KeyDatabaseURL}).Error())
	}

	if requireAuth {
		if c.TenantID == "" {
			errs = append(errs, (&MissingKeyError{Key: KeyTenantID}).Error())
		}
		if c.APIClientID == "" {
			errs = append(errs, (&MissingKeyError{Key: KeyAPIClientID}).Error())
		}
	}

	if !c.MockMode() {
		for key, val := range map[string]string{
			KeyOpenAIEndpoint:   c.OpenAIEndpoint,
			KeyOpenAIAPIKey:     c.OpenAIAPIKey,
			KeyOpenAIDeployment: c.OpenAIDeployment,
		} {
			if val == "" {
				errs = append(errs, (&MissingKeyError{Key: key}).Error())
			}
		}
	}

	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, (&InvalidValueError{Key: KeyLogLevel, Value: c.LogLevel, AllowedValues: []string{"debug", "info", "warn", "error"}}).Error())
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, (&InvalidValueError{Key: KeyLogFormat, Value: c.LogFormat, AllowedValues: []string{"json", "text"}}).Error())
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

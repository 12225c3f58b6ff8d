// env.go - Environment variable configuration and validation for projtrack
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Storage selection
		{"storage.mode", "PROJTRACK_STORAGE_MODE", validateEnvMode},
		{"storage.engine", "PROJTRACK_STORAGE_ENGINE", validateEnvEngine},

		// SQLite backend
		{"storage.sqlite.path", "PROJTRACK_SQLITE_PATH", nil},

		// MySQL backend
		{"storage.mysql.host", "PROJTRACK_MYSQL_HOST", nil},
		{"storage.mysql.port", "PROJTRACK_MYSQL_PORT", validateEnvPort},
		{"storage.mysql.username", "PROJTRACK_MYSQL_USERNAME", nil},
		{"storage.mysql.password", "PROJTRACK_MYSQL_PASSWORD", nil},
		{"storage.mysql.database", "PROJTRACK_MYSQL_DATABASE", nil},

		// Remote mode
		{"storage.remote.url", "PROJTRACK_REMOTE_URL", validateEnvURL},
		{"storage.remote.timeout", "PROJTRACK_REMOTE_TIMEOUT", validateEnvSeconds},

		// Web server
		{"webserver.enabled", "PROJTRACK_WEBSERVER_ENABLED", validateEnvBool},
		{"webserver.port", "PROJTRACK_WEBSERVER_PORT", validateEnvPort},

		// Telemetry
		{"sentry.enabled", "PROJTRACK_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "PROJTRACK_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		// Bind the environment variable to the config key
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvMode(value string) error {
	switch value {
	case ModeDirect, ModeRemote:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s", ModeDirect, ModeRemote)
}

func validateEnvEngine(value string) error {
	switch value {
	case EngineSQLite, EngineMySQL:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s", EngineSQLite, EngineMySQL)
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvSeconds(value string) error {
	secs, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if secs < 0 {
		return fmt.Errorf("timeout must be non-negative, got %d", secs)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host, got '%s'", value)
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	// Set up key replacer for nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables with validation
	// Return any errors to the caller for centralized handling
	return bindEnvVars()
}

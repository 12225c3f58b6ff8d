// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	// Validate Storage settings
	if err := validateStorageSettings(&settings.Storage); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate WebServer settings
	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Dashboard settings
	if err := validateDashboardSettings(&settings.WebServer.Dashboard); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateStorageSettings checks mode and engine selection and that the
// selected backend has what it needs to connect. The datastore factory
// repeats these checks so a bad configuration fails before first use
// whichever path constructs the store.
func validateStorageSettings(settings *StorageSettings) error {
	var errs []string

	switch settings.Mode {
	case ModeDirect, ModeRemote:
	default:
		errs = append(errs, fmt.Sprintf("storage mode must be '%s' or '%s', got '%s'", ModeDirect, ModeRemote, settings.Mode))
	}

	if settings.Mode == ModeRemote {
		if settings.Remote.URL == "" {
			errs = append(errs, "remote URL is required when storage mode is 'remote'")
		} else if err := validateEnvURL(settings.Remote.URL); err != nil {
			errs = append(errs, fmt.Sprintf("remote URL is invalid: %v", err))
		}
		if settings.Remote.Timeout < 0 {
			errs = append(errs, "remote timeout must be non-negative")
		}
	}

	// The engine is validated regardless of mode, the server side of a remote
	// setup opens the same configured engine.
	switch settings.Engine {
	case EngineSQLite:
		if settings.SQLite.Path == "" {
			errs = append(errs, "sqlite path must not be empty")
		}
	case EngineMySQL:
		if settings.MySQL.Username == "" {
			errs = append(errs, "mysql backend requires a username")
		}
		if settings.MySQL.Password == "" {
			errs = append(errs, "mysql backend requires a password")
		}
		if settings.MySQL.Host == "" {
			errs = append(errs, "mysql host must not be empty")
		}
		if settings.MySQL.Database == "" {
			errs = append(errs, "mysql database name must not be empty")
		}
		if settings.MySQL.Port != "" {
			if err := validateEnvPort(settings.MySQL.Port); err != nil {
				errs = append(errs, fmt.Sprintf("mysql port is invalid: %v", err))
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("storage engine must be '%s' or '%s', got '%s'", EngineSQLite, EngineMySQL, settings.Engine))
	}

	if len(errs) > 0 {
		return fmt.Errorf("storage settings errors: %v", errs)
	}

	return nil
}

// validateWebServerSettings validates the WebServer-specific settings
func validateWebServerSettings(settings *WebServerSettings) error {
	if settings.Enabled {
		// Check if port is provided when enabled
		if settings.Port == "" {
			return errors.New("WebServer port is required when enabled")
		}
		if port, err := strconv.Atoi(settings.Port); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("WebServer port must be a number between 1 and 65535, got '%s'", settings.Port)
		}
	}
	return nil
}

// validateDashboardSettings validates the dashboard-specific settings
func validateDashboardSettings(settings *DashboardSettings) error {
	var errs []string

	if settings.RecentLimit < 1 || settings.RecentLimit > 100 {
		errs = append(errs, fmt.Sprintf("dashboard recent limit must be between 1 and 100, got %d", settings.RecentLimit))
	}

	if settings.SummaryTTL < 0 {
		errs = append(errs, fmt.Sprintf("dashboard summary TTL must be non-negative, got %d", settings.SummaryTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("dashboard settings errors: %v", errs)
	}

	return nil
}

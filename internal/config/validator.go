package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduler.settle_delay_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// socketNameRegex validates tmux socket names: alphanumeric plus hyphen
// and underscore, starting with a letter.
var socketNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all
// validation errors found. The service table itself is validated by
// registry.Load; this covers everything around it.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateScheduler()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateEnv()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateScheduler validates the SchedulerConfig
func (c *Config) validateScheduler() []ValidationError {
	var errors []ValidationError

	if c.Scheduler.SettleDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.settle_delay_seconds",
			Value:   c.Scheduler.SettleDelaySeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateSession validates the SessionConfig
func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if !socketNameRegex.MatchString(c.Session.Socket) {
		errors = append(errors, ValidationError{
			Field:   "session.socket",
			Value:   c.Session.Socket,
			Message: "must start with a letter and contain only letters, digits, hyphens, underscores",
		})
	}
	if c.Session.Width <= 0 {
		errors = append(errors, ValidationError{
			Field:   "session.width",
			Value:   c.Session.Width,
			Message: "must be positive",
		})
	}
	if c.Session.Height <= 0 {
		errors = append(errors, ValidationError{
			Field:   "session.height",
			Value:   c.Session.Height,
			Message: "must be positive",
		})
	}
	if c.Session.HistoryLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.history_limit",
			Value:   c.Session.HistoryLimit,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateEnv validates the EnvConfig
func (c *Config) validateEnv() []ValidationError {
	var errors []ValidationError

	if c.Env.Prefix == "" {
		errors = append(errors, ValidationError{
			Field:   "env.prefix",
			Value:   c.Env.Prefix,
			Message: "must not be empty; an empty prefix would leak the whole host environment into every session",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/memodesk/memodesk/internal/errors"
)

var (
	validDrivers = map[string]bool{
		"sqlite3": true,
		"sqlite":  true,
		"memory":  true,
	}
	validLevels = map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	validFormats = map[string]bool{
		"text": true,
		"json": true,
	}
	validHookTypes = map[string]bool{
		"shell":   true,
		"webhook": true,
		"log":     true,
	}
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	var errors []string

	if !validDrivers[cfg.Storage.Driver] {
		errors = append(errors, fmt.Sprintf("invalid storage driver: %s", cfg.Storage.Driver))
	}
	if strings.ContainsAny(cfg.Storage.File, `/\`) {
		errors = append(errors, fmt.Sprintf("storage file must be a bare file name: %s", cfg.Storage.File))
	}
	if !validLevels[cfg.Logging.Level] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s", cfg.Logging.Level))
	}
	if !validFormats[cfg.Logging.Format] {
		errors = append(errors, fmt.Sprintf("invalid log format: %s", cfg.Logging.Format))
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server port out of range: %d", cfg.Server.Port))
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errors = append(errors, "metrics.path is required when metrics are enabled")
	}
	if cfg.Metrics.MaxBytes < 0 {
		errors = append(errors, fmt.Sprintf("metrics.max_bytes must not be negative: %d", cfg.Metrics.MaxBytes))
	}

	seen := make(map[string]bool)
	for i, h := range cfg.Hooks.Hooks {
		label := h.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errors = append(errors, fmt.Sprintf("hook %s: name is required", label))
		} else if seen[h.Name] {
			errors = append(errors, fmt.Sprintf("hook %s: duplicate name", label))
		}
		seen[h.Name] = true

		if !validHookTypes[h.Type] {
			errors = append(errors, fmt.Sprintf("hook %s: invalid type: %s", label, h.Type))
			continue
		}
		if h.Timeout != "" {
			if d, err := time.ParseDuration(h.Timeout); err != nil || d <= 0 {
				errors = append(errors, fmt.Sprintf("hook %s: invalid timeout: %s", label, h.Timeout))
			}
		}
		if h.Retries < 0 || h.Retries > 10 {
			errors = append(errors, fmt.Sprintf("hook %s: retries must be between 0 and 10: %d", label, h.Retries))
		}
		switch h.Type {
		case "shell":
			if h.Command == "" {
				errors = append(errors, fmt.Sprintf("hook %s: command is required for shell hooks", label))
			}
		case "webhook":
			if h.URL == "" {
				errors = append(errors, fmt.Sprintf("hook %s: url is required for webhook hooks", label))
			}
		case "log":
			if h.Blocking {
				errors = append(errors, fmt.Sprintf("hook %s: log hooks cannot be blocking", label))
			}
			if h.Level != "debug" && h.Level != "info" && h.Level != "warn" {
				errors = append(errors, fmt.Sprintf("hook %s: invalid log level: %s", label, h.Level))
			}
		}
	}

	if len(errors) > 0 {
		return apperrors.New(apperrors.CodeConfigInvalid,
			"config validation failed: "+strings.Join(errors, "; ")).
			WithSuggestion("Run 'memodesk config validate' and fix the listed fields")
	}
	return nil
}

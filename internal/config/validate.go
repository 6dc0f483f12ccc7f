package config

import (
	"fmt"
	"strings"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	seen := make(map[string]bool, len(config.Connections))
	for i := range config.Connections {
		conn := &config.Connections[i]
		if err := validateConnectionConfig(conn); err != nil {
			return fmt.Errorf("connection %q validation failed: %w", conn.ID, err)
		}
		if seen[conn.ID] {
			return fmt.Errorf("duplicate connection id: %s", conn.ID)
		}
		seen[conn.ID] = true
	}

	if config.DefaultConnection != "" && !seen[config.DefaultConnection] {
		return fmt.Errorf("default_connection %q does not name a configured connection", config.DefaultConnection)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateGeneralConfig(&config.General); err != nil {
		return fmt.Errorf("general config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	return nil
}

// validateConnectionConfig validates a single connection
func validateConnectionConfig(config *ConnectionConfig) error {
	if strings.TrimSpace(config.ID) == "" {
		return fmt.Errorf("id is required")
	}

	switch config.Provider {
	case storage.ProviderS3, storage.ProviderR2, storage.ProviderMinIO, storage.ProviderCustom:
	default:
		return fmt.Errorf("invalid provider: %s (valid: s3, r2, minio, custom)", config.Provider)
	}

	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.SecretAccessKey) == "" {
		return fmt.Errorf("secret_access_key is required")
	}

	switch config.Provider {
	case storage.ProviderR2:
		if strings.TrimSpace(config.AccountID) == "" && strings.TrimSpace(config.Endpoint) == "" {
			return fmt.Errorf("account_id or endpoint is required for r2")
		}
	case storage.ProviderMinIO, storage.ProviderCustom:
		if strings.TrimSpace(config.Endpoint) == "" {
			return fmt.Errorf("endpoint is required for %s", config.Provider)
		}
	}

	if config.DefaultBucket != "" && !isValidBucketName(config.DefaultBucket) {
		return fmt.Errorf("invalid default_bucket format: %s", config.DefaultBucket)
	}

	for bucket := range config.CustomDomains {
		if !isValidBucketName(bucket) {
			return fmt.Errorf("invalid bucket name in custom_domains: %s", bucket)
		}
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateGeneralConfig validates general configuration
func validateGeneralConfig(config *GeneralConfig) error {
	if config.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive, got: %d", config.DefaultTimeout)
	}
	return nil
}

func validateUIConfig(config *UIConfig) error {
	if config.PreviewColumns <= 0 || config.PreviewRows <= 0 {
		return fmt.Errorf("preview size must be positive, got: %dx%d", config.PreviewColumns, config.PreviewRows)
	}
	switch config.ImageProtocol {
	case "", "ansi", "auto", "kitty", "iterm", "sixel":
	default:
		return fmt.Errorf("invalid image_protocol: %s (valid: ansi, auto, kitty, iterm, sixel)", config.ImageProtocol)
	}
	return nil
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i := 0; i < len(name); i++ {
		char := name[i]
		if !isAlphaNum(char) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

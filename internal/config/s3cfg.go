package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// ErrS3CfgNotFound is returned when no .s3cfg exists in the search paths
var ErrS3CfgNotFound = errors.New(".s3cfg file not found in any of the standard locations")

// FindS3Cfg returns the first existing s3cmd configuration file
func FindS3Cfg() (string, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		".s3cfg",
		filepath.Join(home, ".s3cfg"),
		"/etc/s3cfg",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrS3CfgNotFound
}

// ImportS3Cfg converts the [default] section of an s3cmd file into a connection
func ImportS3Cfg(path, id string) (*ConnectionConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	section := file.Section("default")
	conn := &ConnectionConfig{
		ID:              id,
		Label:           id,
		AccessKeyID:     section.Key("access_key").String(),
		SecretAccessKey: section.Key("secret_key").String(),
		Region:          section.Key("bucket_location").MustString("us-east-1"),
	}
	if conn.AccessKeyID == "" || conn.SecretAccessKey == "" {
		return nil, fmt.Errorf("access_key and secret_key must be specified in %s", path)
	}

	host := section.Key("host_base").MustString("s3.amazonaws.com")
	scheme := "https"
	if !section.Key("use_https").MustBool(true) {
		scheme = "http"
	}

	switch {
	case strings.HasSuffix(host, "amazonaws.com"):
		conn.Provider = storage.ProviderS3
	case strings.HasSuffix(host, "r2.cloudflarestorage.com"):
		conn.Provider = storage.ProviderR2
		conn.AccountID = strings.TrimSuffix(host, ".r2.cloudflarestorage.com")
		conn.Endpoint = scheme + "://" + host
	default:
		conn.Provider = storage.ProviderCustom
		conn.Endpoint = scheme + "://" + host
		conn.ForcePathStyle = !strings.Contains(section.Key("host_bucket").String(), "%(bucket)s.")
	}
	conn.UseSSL = scheme == "https"
	conn.applyDefaults()

	if err := validateConnectionConfig(conn); err != nil {
		return nil, fmt.Errorf("imported connection is invalid: %w", err)
	}
	return conn, nil
}

// AppendConnection adds conn to the TOML file at path, creating it if needed
func AppendConnection(path string, conn *ConnectionConfig) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var existing []ConnectionConfig
	if err := v.UnmarshalKey("connections", &existing); err != nil {
		return fmt.Errorf("failed to read existing connections: %w", err)
	}

	entries := make([]map[string]any, 0, len(existing)+1)
	for i := range existing {
		if existing[i].ID == conn.ID {
			return fmt.Errorf("connection %q already exists", conn.ID)
		}
		entries = append(entries, connectionEntry(&existing[i]))
	}
	entries = append(entries, connectionEntry(conn))
	v.Set("connections", entries)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return v.WriteConfigAs(path)
}

func connectionEntry(c *ConnectionConfig) map[string]any {
	entry := map[string]any{
		"id":                c.ID,
		"label":             c.Label,
		"provider":          string(c.Provider),
		"access_key_id":     c.AccessKeyID,
		"secret_access_key": c.SecretAccessKey,
		"region":            c.Region,
	}
	if c.AccountID != "" {
		entry["account_id"] = c.AccountID
	}
	if c.Endpoint != "" {
		entry["endpoint"] = c.Endpoint
	}
	if c.ForcePathStyle {
		entry["force_path_style"] = true
	}
	if c.UseSSL {
		entry["use_ssl"] = true
	}
	if c.DefaultBucket != "" {
		entry["default_bucket"] = c.DefaultBucket
	}
	if len(c.CustomDomains) > 0 {
		entry["custom_domains"] = c.CustomDomains
	}
	if c.PresignURLs {
		entry["presign_urls"] = true
		entry["presign_expiry"] = c.PresignExpiry.String()
	}
	return entry
}

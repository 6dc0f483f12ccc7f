package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

const appDirName = ".r2s3-browser"

// envConnectionID names the connection synthesised from environment variables
const envConnectionID = "env"

// Config holds the complete application configuration
type Config struct {
	DefaultConnection string             `mapstructure:"default_connection"`
	Connections       []ConnectionConfig `mapstructure:"connections"`
	Env               ConnectionConfig   `mapstructure:"env"`
	Log               LogConfig          `mapstructure:"log"`
	General           GeneralConfig      `mapstructure:"general"`
	Download          DownloadConfig     `mapstructure:"download"`
	UI                UIConfig           `mapstructure:"ui"`
}

// ConnectionConfig describes one S3-compatible account
type ConnectionConfig struct {
	ID              string            `mapstructure:"id"`
	Label           string            `mapstructure:"label"`
	Provider        storage.Provider  `mapstructure:"provider"`
	AccountID       string            `mapstructure:"account_id"`
	AccessKeyID     string            `mapstructure:"access_key_id"`
	SecretAccessKey string            `mapstructure:"secret_access_key"`
	Endpoint        string            `mapstructure:"endpoint"`
	Region          string            `mapstructure:"region"`
	UseSSL          bool              `mapstructure:"use_ssl"`
	ForcePathStyle  bool              `mapstructure:"force_path_style"`
	DefaultBucket   string            `mapstructure:"default_bucket"`
	CustomDomains   map[string]string `mapstructure:"custom_domains"`
	PresignURLs     bool              `mapstructure:"presign_urls"`
	PresignExpiry   time.Duration     `mapstructure:"presign_expiry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// GeneralConfig holds general application configuration
type GeneralConfig struct {
	DefaultTimeout int    `mapstructure:"default_timeout"`
	ConfigPath     string `mapstructure:"config_path"`
}

// DownloadConfig holds download defaults
type DownloadConfig struct {
	Directory string `mapstructure:"directory"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	ImagePreview   bool   `mapstructure:"image_preview"`
	ImageProtocol  string `mapstructure:"image_protocol"`
	PreviewColumns int    `mapstructure:"preview_columns"`
	PreviewRows    int    `mapstructure:"preview_rows"`
}

// ErrNoConnections is returned when neither the file nor the environment defines a connection
var ErrNoConnections = errors.New("no connections configured")

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("R2SB")
	v.AutomaticEnv()

	v.BindEnv("default_connection", "R2SB_CONNECTION")
	v.BindEnv("env.provider", "R2SB_PROVIDER")
	v.BindEnv("env.account_id", "R2SB_ACCOUNT_ID")
	v.BindEnv("env.access_key_id", "R2SB_ACCESS_KEY_ID")
	v.BindEnv("env.secret_access_key", "R2SB_SECRET_ACCESS_KEY")
	v.BindEnv("env.endpoint", "R2SB_ENDPOINT")
	v.BindEnv("env.region", "R2SB_REGION")
	v.BindEnv("env.default_bucket", "R2SB_BUCKET")
	v.BindEnv("log.level", "R2SB_LOG_LEVEL")
	v.BindEnv("log.format", "R2SB_LOG_FORMAT")
	v.BindEnv("download.directory", "R2SB_DOWNLOAD_DIR")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/" + appDirName)
		v.AddConfigPath("/etc/r2s3-browser/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.General.ConfigPath = v.ConfigFileUsed()

	if config.Env.AccessKeyID != "" {
		env := config.Env
		env.ID = envConnectionID
		if env.Label == "" {
			env.Label = "environment"
		}
		config.Connections = append(config.Connections, env)
	}
	for i := range config.Connections {
		config.Connections[i].applyDefaults()
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("env.provider", string(storage.ProviderR2))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "r2s3-browser", "app.log"))

	v.SetDefault("general.default_timeout", 30)

	v.SetDefault("download.directory", "")

	v.SetDefault("ui.image_preview", true)
	v.SetDefault("ui.image_protocol", "ansi")
	v.SetDefault("ui.preview_columns", 40)
	v.SetDefault("ui.preview_rows", 12)
}

// applyDefaults fills provider specific values left empty in the file
func (c *ConnectionConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = storage.ProviderS3
	}
	if c.Label == "" {
		c.Label = c.ID
	}
	if c.Region == "" {
		switch c.Provider {
		case storage.ProviderR2:
			c.Region = "auto"
		default:
			c.Region = "us-east-1"
		}
	}
	if c.PresignExpiry <= 0 {
		c.PresignExpiry = time.Hour
	}
}

// EndpointURL returns the service endpoint for the connection. An empty
// result means the SDK resolves the endpoint from the region.
func (c *ConnectionConfig) EndpointURL() string {
	switch c.Provider {
	case storage.ProviderR2:
		if c.Endpoint != "" {
			return c.Endpoint
		}
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
	case storage.ProviderS3:
		return c.Endpoint
	default:
		return c.Endpoint
	}
}

// GetCustomDomain returns the custom domain configured for bucket, if any
func (c *ConnectionConfig) GetCustomDomain(bucket string) string {
	if c.CustomDomains == nil {
		return ""
	}
	return c.CustomDomains[bucket]
}

// Timeout returns the per-operation timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.General.DefaultTimeout) * time.Second
}

// GetConnection looks a connection up by id
func (c *Config) GetConnection(id string) (*ConnectionConfig, error) {
	for i := range c.Connections {
		if c.Connections[i].ID == id {
			return &c.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("connection %q not found", id)
}

// GetEffectiveConnection picks the connection to open at startup: the
// explicit id, then the last used one, then the configured default, then the first.
func (c *Config) GetEffectiveConnection(explicit string, userData *UserData) (*ConnectionConfig, error) {
	if len(c.Connections) == 0 {
		return nil, ErrNoConnections
	}
	candidates := []string{explicit}
	if userData != nil {
		candidates = append(candidates, userData.LastConnection)
	}
	candidates = append(candidates, c.DefaultConnection)
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if conn, err := c.GetConnection(id); err == nil {
			return conn, nil
		} else if id == explicit {
			return nil, err
		}
	}
	return &c.Connections[0], nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(homeDir, appDirName, "config.toml")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	configPath := GetDefaultConfigPath()
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0700)
}

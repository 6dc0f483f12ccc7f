package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
	"github.com/HaiFongPan/r2s3-browser/internal/storage/miniostore"
	"github.com/HaiFongPan/r2s3-browser/internal/storage/s3store"
	"github.com/HaiFongPan/r2s3-browser/internal/tui"
)

var (
	cfgFile      string
	connectionID string
	bucketFlag   string
	verbose      bool
	quiet        bool
	globalConfig *config.Config
	userData     *config.UserData
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "r2s3-browser",
	Short: "Browse S3-compatible object stores from the terminal",
	Long: `r2s3-browser is a terminal browser for Cloudflare R2, AWS S3, MinIO and
other S3-compatible stores. Connections are configured in a TOML file,
through environment variables or imported from an s3cmd configuration.

Example usage:
  r2s3-browser                       # Interactive browser
  r2s3-browser -C work -b photos     # Open a bucket on another connection
  r2s3-browser list photos/
  r2s3-browser download photos/cat.jpg ~/Downloads
  r2s3-browser config import-s3cfg`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["skipConfig"] == "true" {
			return nil
		}
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.r2s3-browser/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&connectionID, "connection", "C", "", "connection id (overrides the last used one)")
	rootCmd.PersistentFlags().StringVarP(&bucketFlag, "bucket", "b", "", "bucket name (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging()

	userData, err = config.LoadUserData()
	if err != nil {
		return fmt.Errorf("failed to load user data: %w", err)
	}
	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// the terminal belongs to the UI, so logs go to a file
	if logFile := globalConfig.Log.File; logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			logrus.Warnf("Failed to create log directory for %s: %v", logFile, err)
		} else if file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// openBackend connects to conn with the driver matching its provider
func openBackend(ctx context.Context, conn *config.ConnectionConfig) (storage.Backend, error) {
	logrus.WithFields(logrus.Fields{
		"connection": conn.ID,
		"provider":   conn.Provider,
	}).Debug("opening backend")

	if conn.Provider == storage.ProviderMinIO {
		return miniostore.New(ctx, conn)
	}
	return s3store.New(ctx, conn)
}

// connect resolves the effective connection and opens its backend
func connect(ctx context.Context) (*config.ConnectionConfig, storage.Backend, error) {
	conn, err := globalConfig.GetEffectiveConnection(connectionID, userData)
	if err != nil {
		return nil, nil, err
	}
	backend, err := openBackend(ctx, conn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", conn.ID, err)
	}
	return conn, backend, nil
}

// effectiveBucket picks the --bucket flag, then the last opened bucket, then
// the connection default
func effectiveBucket(conn *config.ConnectionConfig) string {
	if bucketFlag != "" {
		return bucketFlag
	}
	if userData != nil {
		if last := userData.LastBucket(conn.ID); last != "" {
			return last
		}
	}
	return conn.DefaultBucket
}

// requireBucket is effectiveBucket for commands that cannot run without one
func requireBucket(conn *config.ConnectionConfig) (string, error) {
	bucket := effectiveBucket(conn)
	if bucket == "" {
		return "", fmt.Errorf("no bucket given: use --bucket or set default_bucket on connection %q", conn.ID)
	}
	return bucket, nil
}

// commandContext bounds one CLI command by the configured timeout
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout := globalConfig.Timeout(); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// runInteractive opens the terminal browser on the effective connection
func runInteractive(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, backend, err := connect(ctx)
	if err != nil {
		return err
	}

	userData.LastConnection = conn.ID
	if err := userData.Save(); err != nil {
		logrus.WithError(err).Warn("failed to save user data")
	}

	return tui.Run(tui.Options{
		Backend:       backend,
		ConnectionID:  conn.ID,
		UserData:      userData,
		UI:            globalConfig.UI,
		Timeout:       globalConfig.Timeout(),
		DownloadDir:   globalConfig.Download.Directory,
		InitialBucket: effectiveBucket(conn),
	})
}

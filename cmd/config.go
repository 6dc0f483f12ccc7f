package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
)

var (
	importPath   string
	importID     string
	importTarget string
)

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and extend the configuration",
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List configured connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tPROVIDER\tREGION\tENDPOINT")
		for _, c := range globalConfig.Connections {
			mark := ""
			if c.ID == userData.LastConnection {
				mark = "*"
			}
			endpoint := c.EndpointURL()
			if endpoint == "" {
				endpoint = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, c.ID, c.Provider.DisplayName(), c.Region, endpoint)
		}
		return w.Flush()
	},
}

var importS3CfgCmd = &cobra.Command{
	Use:   "import-s3cfg",
	Short: "Import the credentials of an s3cmd configuration as a connection",
	Long: `Read the [default] section of an s3cmd configuration (.s3cfg) and append it
to the config file as a new connection.

Examples:
  r2s3-browser config import-s3cfg
  r2s3-browser config import-s3cfg --file ~/work.s3cfg --id work`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"skipConfig": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := importPath
		if path == "" {
			found, err := config.FindS3Cfg()
			if err != nil {
				return err
			}
			path = found
		}

		conn, err := config.ImportS3Cfg(path, importID)
		if err != nil {
			return err
		}

		target := importTarget
		if target == "" {
			target = cfgFile
		}
		if target == "" {
			target = config.GetDefaultConfigPath()
		}
		if err := config.AppendConnection(target, conn); err != nil {
			return fmt.Errorf("failed to save connection: %w", err)
		}

		fmt.Printf("Imported %s into %s as %q (%s)\n",
			path, target, conn.ID, conn.Provider.DisplayName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(connectionsCmd, importS3CfgCmd)

	importS3CfgCmd.Flags().StringVar(&importPath, "file", "", "s3cmd configuration to read (default: search .s3cfg, ~/.s3cfg, /etc/s3cfg)")
	importS3CfgCmd.Flags().StringVar(&importID, "id", "s3cmd", "id of the new connection")
	importS3CfgCmd.Flags().StringVar(&importTarget, "to", "", "config file to append to (default is --config or ~/.r2s3-browser/config.toml)")
}

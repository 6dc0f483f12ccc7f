package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// bucketsCmd represents the buckets command
var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List the buckets of a connection",
	Long: `List every bucket visible to the effective connection. The bucket the
interactive browser opens on start is marked with '*'.

Examples:
  r2s3-browser buckets
  r2s3-browser buckets -C minio-local`,
	Args: cobra.NoArgs,
	RunE: listBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func listBuckets(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	conn, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	buckets, err := backend.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list buckets: %w", err)
	}

	last := userData.LastBucket(conn.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tREGION\tCREATED")
	for _, b := range buckets {
		mark := ""
		if b.Name == last {
			mark = "*"
		}
		created := "-"
		if b.CreationDate != nil {
			created = humanize.Time(*b.CreationDate)
		}
		region := b.Region
		if region == "" {
			region = conn.Region
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, b.Name, region, created)
	}
	return w.Flush()
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

var (
	showSize  bool
	showDate  bool
	showClass bool
	listHuman bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List the folders and files under a prefix",
	Long: `List the direct children of a prefix in a bucket: folders first, then files.

Examples:
  r2s3-browser list                    # List the bucket root
  r2s3-browser list photos/            # List the 'photos/' folder
  r2s3-browser list -b backups --class # Show storage classes
  r2s3-browser list --size=false       # Names and dates only`,
	Args: cobra.MaximumNArgs(1),
	RunE: listFiles,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&showSize, "size", true, "show file sizes")
	listCmd.Flags().BoolVar(&showDate, "date", true, "show modification dates")
	listCmd.Flags().BoolVar(&showClass, "class", false, "show storage classes")
	listCmd.Flags().BoolVarP(&listHuman, "human", "H", true, "human readable sizes and dates")
}

func listFiles(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	conn, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	bucket, err := requireBucket(conn)
	if err != nil {
		return err
	}

	var prefix string
	if len(args) > 0 {
		prefix = storage.FolderPrefix(args[0])
	}

	logrus.Debugf("Listing objects in bucket %s with prefix %s", bucket, prefix)
	objects, err := backend.ListObjects(ctx, bucket, conn.Region, prefix)
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}

	return outputTable(os.Stdout, browser.NewEntries(objects, prefix))
}

func outputTable(out io.Writer, entries []browser.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "NAME"
	if showSize {
		header += "\tSIZE"
	}
	if showClass {
		header += "\tCLASS"
	}
	if showDate {
		header += "\tMODIFIED"
	}
	fmt.Fprintln(w, header)

	for _, e := range entries {
		line := e.Label
		if e.IsFolder {
			line += "/"
		}
		if showSize {
			line += "\t" + formatSize(e.Size)
		}
		if showClass {
			line += "\t" + storage.StorageClassName(e.StorageClass)
		}
		if showDate {
			line += "\t" + formatTime(e.LastModified)
		}
		fmt.Fprintln(w, line)
	}

	return w.Flush()
}

func formatSize(size *int64) string {
	if size == nil {
		return "-"
	}
	if listHuman {
		return humanize.IBytes(uint64(*size))
	}
	return fmt.Sprintf("%d", *size)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	if listHuman {
		return humanize.Time(*t)
	}
	return t.Format(time.RFC3339)
}

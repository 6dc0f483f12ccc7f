package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

var (
	deleteForce     bool
	deleteRecursive bool
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <remote-path>...",
	Short: "Delete files or folders from a bucket",
	Long: `Delete objects from a bucket. Folders are removed with everything under them
and require --recursive.

Examples:
  r2s3-browser delete image.jpg                  # Delete a single file
  r2s3-browser delete a.jpg b.jpg                # Delete several files at once
  r2s3-browser delete photos/ --recursive        # Delete a folder
  r2s3-browser delete image.jpg --force          # Delete without confirmation`,
	Args: cobra.MinimumNArgs(1),
	RunE: deleteFiles,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "force delete without confirmation")
	deleteCmd.Flags().BoolVarP(&deleteRecursive, "recursive", "r", false, "delete a folder and everything in it")
}

func deleteFiles(cmd *cobra.Command, args []string) error {
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

	at := browser.ListingKey{ConnectionID: conn.ID, Bucket: bucket, Region: conn.Region}
	orch := browser.NewOrchestrator(backend, nil, nil)
	in := bufio.NewReader(os.Stdin)

	if deleteRecursive {
		if len(args) != 1 {
			return fmt.Errorf("--recursive takes exactly one folder")
		}
		prefix := storage.FolderPrefix(args[0])
		keys, err := storage.FolderFiles(ctx, backend, bucket, conn.Region, prefix)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		fmt.Printf("The following %d files will be deleted:\n", len(keys))
		for _, key := range keys {
			fmt.Printf("  - %s\n", key)
		}
		if !deleteForce && !confirm(in, os.Stdout, "\nAre you sure you want to delete this folder? This cannot be undone! (y/N): ") {
			fmt.Println("Delete cancelled.")
			return nil
		}
		return report(orch.DeleteFolder(ctx, at, prefix))
	}

	for _, key := range args {
		if browser.IsFolderKey(key) {
			return fmt.Errorf("%s is a folder (use --recursive)", key)
		}
	}
	if !deleteForce && !confirm(in, os.Stdout, fmt.Sprintf("Are you sure you want to delete %s? (y/N): ", strings.Join(args, ", "))) {
		fmt.Println("Delete cancelled.")
		return nil
	}
	return report(orch.DeleteObjects(ctx, at, args))
}

// confirm asks question on out and reads a yes/no answer from in
func confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	response, _ := in.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// report prints the notice of a finished operation or returns its error
func report(out browser.Outcome) error {
	if activeBar != nil {
		activeBar.finish()
	}
	if out.Err != nil {
		logrus.WithError(out.Err).Errorf("%s failed", out.Op)
		return out.Err
	}
	logrus.Info(out.Notice)
	if !quiet && out.Notice != "" {
		fmt.Println(out.Notice)
	}
	return nil
}

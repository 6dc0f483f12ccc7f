package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <remote-path>...",
	Short: "Download files or a folder from a bucket",
	Long: `Download objects into a local directory. Existing local files are never
overwritten: a free name such as "report(1).pdf" is chosen instead. A folder
(a path ending in '/') is saved as a zip archive.

The directory defaults to download.directory from the config file, then to
the directory remembered by the interactive browser.

Examples:
  r2s3-browser download photos/cat.jpg -d ~/Pictures
  r2s3-browser download a.txt b.txt
  r2s3-browser download photos/ -d ~/backups   # Saves photos.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: downloadFiles,
}

var downloadDir string

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", "", "local directory to save into")
	downloadCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

func downloadFiles(cmd *cobra.Command, args []string) error {
	dir := downloadDir
	if dir == "" {
		dir = defaultDownloadDir()
	}
	target, err := browser.PickDirectory(dir)
	if err != nil {
		return err
	}

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
	orch := transferOrchestrator(backend)

	var files []string
	for _, key := range args {
		if !browser.IsFolderKey(key) {
			files = append(files, key)
			continue
		}
		if err := report(orch.DownloadFolder(ctx, at, key, target)); err != nil {
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
	}

	switch len(files) {
	case 0:
		return nil
	case 1:
		return report(orch.Download(ctx, at, files[0], target))
	default:
		return report(orch.DownloadMany(ctx, at, files, target))
	}
}

func defaultDownloadDir() string {
	if dir := globalConfig.Download.Directory; dir != "" {
		return dir
	}
	if userData != nil && userData.DownloadDir != "" {
		return userData.DownloadDir
	}
	return "."
}

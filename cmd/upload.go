package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/webp"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

var (
	uploadPrefix   string
	uploadCompress string
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <file-path>...",
	Short: "Upload files into a folder of a bucket",
	Long: `Upload local files into a bucket. Each file keeps its base name; an existing
object with the same key is replaced.

Examples:
  r2s3-browser upload image.jpg                     # Upload to the bucket root
  r2s3-browser upload image.jpg --prefix photos/    # Upload into a folder
  r2s3-browser upload *.jpg -p photos/ -z normal    # Recompress images first
  r2s3-browser upload big.iso --no-progress         # Upload without progress bar`,
	Args: cobra.MinimumNArgs(1),
	RunE: uploadFiles,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&uploadPrefix, "prefix", "p", "", "destination folder")
	uploadCmd.Flags().StringVarP(&uploadCompress, "compress", "z", "", "image compression level (high, fine, normal, low)")
	uploadCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

func uploadFiles(cmd *cobra.Command, args []string) error {
	if uploadCompress != "" {
		if _, err := jpegQuality(uploadCompress); err != nil {
			return err
		}
	}

	paths, err := browser.PickFiles(strings.Join(args, ","))
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

	if uploadCompress != "" {
		staging, err := os.MkdirTemp("", "r2s3-browser-upload-")
		if err != nil {
			return fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer os.RemoveAll(staging)

		for i, path := range paths {
			if !isImageFile(path) {
				continue
			}
			staged, err := compressInto(staging, path, uploadCompress)
			if err != nil {
				return err
			}
			paths[i] = staged
		}
	}

	prefix := ""
	if strings.Trim(uploadPrefix, "/") != "" {
		prefix = storage.FolderPrefix(strings.TrimPrefix(uploadPrefix, "/"))
	}

	at := browser.ListingKey{ConnectionID: conn.ID, Bucket: bucket, Region: conn.Region, Prefix: prefix}
	logrus.Infof("Uploading %d file(s) to %s/%s", len(paths), bucket, prefix)
	return report(transferOrchestrator(backend).Upload(ctx, at, paths))
}

// isImageFile checks if the file is a raster image the encoder can recompress
func isImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp":
		return true
	}
	return false
}

func jpegQuality(level string) (int, error) {
	switch level {
	case "high":
		return 95, nil
	case "fine":
		return 85, nil
	case "normal":
		return 75, nil
	case "low":
		return 60, nil
	default:
		return 0, fmt.Errorf("invalid compression level: %s (use: high, fine, normal, low)", level)
	}
}

// compressInto re-encodes the image at path as JPEG into dir, keeping its
// base name so the object key is unchanged
func compressInto(dir, path, level string) (string, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	data, err := compressImage(original, level)
	if err != nil {
		return "", fmt.Errorf("failed to compress %s: %w", path, err)
	}

	staged := filepath.Join(dir, filepath.Base(path))
	if err := os.WriteFile(staged, data, 0600); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", path, err)
	}
	logrus.Infof("Compressed %s from %s to %s", filepath.Base(path),
		humanize.IBytes(uint64(len(original))), humanize.IBytes(uint64(len(data))))
	return staged, nil
}

// compressImage compresses an image based on the specified quality level
func compressImage(original []byte, level string) ([]byte, error) {
	quality, err := jpegQuality(level)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		// JPEG has no alpha channel
		flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White.C)
		flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
		err = jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality})
	default:
		resized := imaging.Fit(img, 1920, 1920, imaging.Lanczos)
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode compressed image: %w", err)
	}
	return buf.Bytes(), nil
}

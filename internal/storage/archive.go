package storage

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// BuildArchive writes objects into a deflated zip. Entry names are the keys
// with the folder prefix stripped.
func BuildArchive(prefix string, objects []DownloadedObject) ([]byte, error) {
	root := FolderPrefix(prefix)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, root)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		}
		header.SetMode(0o755)

		entry, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := entry.Write(obj.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName is the local file name of a downloaded folder archive
func ArchiveName(prefix string) string {
	return BaseName(strings.TrimSuffix(prefix, "/")) + ".zip"
}

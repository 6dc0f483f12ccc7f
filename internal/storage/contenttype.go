package storage

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// commonTypes covers extensions the platform mime table often lacks
var commonTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".ts":   "application/typescript",
	".json": "application/json",
	".xml":  "application/xml",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// DetectContentType resolves the MIME type of a file from its name, then
// from the first 512 bytes of reader when the name is not conclusive.
func DetectContentType(name string, reader io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if contentType, ok := commonTypes[ext]; ok {
		return contentType, nil
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType, nil
	}

	if reader != nil {
		buffer := make([]byte, 512)
		n, err := reader.Read(buffer)
		if err != nil && err != io.EOF {
			return "", err
		}
		if contentType := http.DetectContentType(buffer[:n]); contentType != "application/octet-stream" {
			return contentType, nil
		}
	}

	return "application/octet-stream", nil
}

// FileCategory returns a coarse category for a key, used for colouring rows
func FileCategory(key string) string {
	contentType, _ := DetectContentType(key, nil)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case strings.HasPrefix(contentType, "text/"):
		return "text"
	case strings.Contains(contentType, "json"), strings.Contains(contentType, "xml"):
		return "data"
	case strings.Contains(contentType, "javascript"), strings.Contains(contentType, "typescript"):
		return "code"
	case strings.Contains(contentType, "pdf"):
		return "document"
	case strings.Contains(contentType, "zip"), strings.Contains(contentType, "tar"), strings.Contains(contentType, "gzip"):
		return "archive"
	default:
		return "other"
	}
}

package browser

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	// CharLimit is the most characters a text preview shows
	CharLimit = 10000

	// NumLines is the most lines a text preview shows
	NumLines = 8

	// TruncatedMarker is appended to a cut text preview
	TruncatedMarker = "\n...\n(File truncated)"

	// textWindow is the byte window decoded for a text preview
	textWindow = CharLimit * 4
)

// PreviewKind is the classification of an object for preview
type PreviewKind int

const (
	PreviewGeneric PreviewKind = iota
	PreviewImage
	PreviewText
)

func (k PreviewKind) String() string {
	switch k {
	case PreviewImage:
		return "image"
	case PreviewText:
		return "text"
	default:
		return "generic"
	}
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
	".xml":  true,
	".html": true,
	".css":  true,
	".js":   true,
	".ts":   true,
	".jsx":  true,
	".tsx":  true,
}

func extensionOf(key string) string {
	_, ext := SplitExtension(BaseOf(key))
	return strings.ToLower(ext)
}

// BaseOf returns the last path segment of key
func BaseOf(key string) string {
	key = strings.TrimSuffix(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Classify decides how key is previewed. Matching is case-insensitive on
// the extension.
func Classify(key string) PreviewKind {
	ext := extensionOf(key)
	if _, ok := imageTypes[ext]; ok {
		return PreviewImage
	}
	if textExtensions[ext] {
		return PreviewText
	}
	return PreviewGeneric
}

// MimeType returns the image mime type for key, "image/*" when unknown
func MimeType(key string) string {
	if mt, ok := imageTypes[extensionOf(key)]; ok {
		return mt
	}
	return "image/*"
}

// BuildText renders the text preview of data. data may be the whole object
// or any prefix of it longer than the decode window.
func BuildText(data []byte) string {
	window := data
	if len(window) > textWindow {
		window = window[:textWindow]
	}
	text := strings.ToValidUTF8(string(window), string(utf8.RuneError))

	if utf8.RuneCountInString(text) > CharLimit {
		text = string([]rune(text)[:CharLimit])
	}

	lines := strings.Split(text, "\n")
	truncated := len(data) > textWindow || len(lines) > NumLines
	if len(lines) > NumLines {
		lines = lines[:NumLines]
	}

	content := strings.Join(lines, "\n")
	if truncated {
		content += TruncatedMarker
	}
	return content
}

// Preview is the outcome of loading a preview. URL is set for images,
// Text for text; a generic preview carries only the key.
type Preview struct {
	Kind     PreviewKind
	Key      string
	URL      string
	MimeType string
	Path     string
	Text     string
}

// ObjectReader is what a preview needs from the backend
type ObjectReader interface {
	DownloadObject(ctx context.Context, bucket, key string) ([]byte, error)
	ReadObjectHead(ctx context.Context, bucket, key string, n int64) ([]byte, error)
}

// LoadPreview fetches and classifies key. Images are written to blobs and
// exposed by URL; text reads only the decode window plus one byte so an
// overflow can be detected; generic objects are not fetched.
func LoadPreview(ctx context.Context, reader ObjectReader, blobs *BlobStore, bucket, key string) (Preview, error) {
	p := Preview{Kind: Classify(key), Key: key}

	switch p.Kind {
	case PreviewImage:
		data, err := reader.DownloadObject(ctx, bucket, key)
		if err != nil {
			return Preview{}, &BackendError{Op: "preview", Err: err}
		}
		p.MimeType = MimeType(key)
		blob, err := blobs.Put(key, data)
		if err != nil {
			return Preview{}, err
		}
		p.URL = blob.URL
		p.Path = blob.Path
	case PreviewText:
		data, err := reader.ReadObjectHead(ctx, bucket, key, textWindow+1)
		if err != nil {
			return Preview{}, &BackendError{Op: "preview", Err: err}
		}
		p.Text = BuildText(data)
	}
	return p, nil
}

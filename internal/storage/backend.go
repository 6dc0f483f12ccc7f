// Package storage defines the connection-bound object store surface used by
// the browser, plus helpers shared by the concrete backends.
package storage

import (
	"context"
	"path/filepath"
	"strings"
)

const (
	// DeleteBatchSize is the maximum number of keys per multi-object delete
	DeleteBatchSize = 1000

	// MaxFolderObjects bounds a recursive folder walk
	MaxFolderObjects = 100_000

	// maxFolderDepth bounds the number of prefixes visited in one walk
	maxFolderDepth = 1000

	// transferConcurrency caps parallel per-key requests within one operation
	transferConcurrency = 8
)

// Backend is a connection-bound object store. Every method issues one logical
// operation and returns either its result or an *Error.
type Backend interface {
	Provider() Provider

	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// ListObjects lists the direct children of prefix: folders from common
	// prefixes first, then files. Folder marker objects are not returned as files.
	ListObjects(ctx context.Context, bucket, region, prefix string) ([]ObjectInfo, error)

	DownloadObject(ctx context.Context, bucket, key string) ([]byte, error)

	// ReadObjectHead returns at most n leading bytes of the object
	ReadObjectHead(ctx context.Context, bucket, key string, n int64) ([]byte, error)

	DownloadObjects(ctx context.Context, bucket string, keys []string) ([]DownloadedObject, error)

	// DownloadFolder returns a zip archive of every object under prefix, with
	// entry names relative to prefix.
	DownloadFolder(ctx context.Context, bucket, region, prefix string) ([]byte, error)

	// UploadObjects stores each local file under prefix using its base name
	UploadObjects(ctx context.Context, bucket, prefix string, localPaths []string) error

	CreateFolder(ctx context.Context, bucket, folderKey string) error
	DeleteObjects(ctx context.Context, bucket string, keys []string) error

	// DeleteFolder removes every object under prefix including the marker
	DeleteFolder(ctx context.Context, bucket, region, prefix string) error

	// MoveObjects copies each key to destinationPrefix+basename and deletes the source
	MoveObjects(ctx context.Context, bucket string, keys []string, destinationPrefix string) error

	ObjectURL(ctx context.Context, bucket, region, key string) (string, error)
}

// FolderPrefix normalises prefix to end with exactly one trailing slash
func FolderPrefix(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// JoinKey appends name to prefix, inserting a separator when prefix lacks one
func JoinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return FolderPrefix(prefix) + name
}

// BaseName returns the segment after the last slash of key
func BaseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// MoveDestination is the key a moved object lands on
func MoveDestination(destinationPrefix, key string) string {
	return JoinKey(destinationPrefix, BaseName(key))
}

// UploadKey is the key a local file is stored under
func UploadKey(prefix, localPath string) string {
	return JoinKey(prefix, filepath.Base(localPath))
}

// BucketEndpoint returns the public base URL of a bucket
func BucketEndpoint(provider Provider, endpoint, region, bucket string) string {
	base := strings.TrimSuffix(endpoint, "/")
	if provider == ProviderS3 {
		if region == "" {
			region = "us-east-1"
		}
		base = "https://s3." + region + ".amazonaws.com"
	}
	return base + "/" + bucket
}

// ObjectURL builds the direct URL of an object. Unreserved characters and
// slashes are kept, everything else is percent-encoded byte by byte.
func ObjectURL(provider Provider, endpoint, region, bucket, key string) string {
	return BucketEndpoint(provider, endpoint, region, bucket) + "/" + EscapeKey(key)
}

// EscapeKey percent-encodes an object key for use in a URL path
func EscapeKey(key string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0F])
		}
	}
	return b.String()
}

// CustomDomainURL builds an object URL on a bucket's custom domain
func CustomDomainURL(domain, key string) string {
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	return "https://" + domain + "/" + EscapeKey(key)
}

// Chunk splits keys into batches of at most size
func Chunk(keys []string, size int) [][]string {
	var batches [][]string
	for len(keys) > size {
		batches = append(batches, keys[:size:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		batches = append(batches, keys)
	}
	return batches
}

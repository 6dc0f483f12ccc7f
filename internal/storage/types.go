package storage

import (
	"time"
)

// Provider identifies the flavour of S3-compatible service behind a connection
type Provider string

const (
	ProviderS3     Provider = "s3"
	ProviderR2     Provider = "r2"
	ProviderMinIO  Provider = "minio"
	ProviderCustom Provider = "custom"
)

// DisplayName returns the provider label used in the bucket list
func (p Provider) DisplayName() string {
	switch p {
	case ProviderS3:
		return "S3"
	case ProviderR2:
		return "R2"
	case ProviderMinIO:
		return "MinIO"
	default:
		return "Custom"
	}
}

// BucketInfo describes a bucket reachable through a connection
type BucketInfo struct {
	Provider     Provider   `json:"provider"`
	Name         string     `json:"name"`
	CreationDate *time.Time `json:"creation_date,omitempty"`
	Region       string     `json:"region,omitempty"`
	EndpointURL  string     `json:"endpoint_url"`
}

// ObjectInfo is a single listing row. Folders come from common prefixes and
// carry neither size nor modification time.
type ObjectInfo struct {
	Key          string     `json:"key"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	StorageClass string     `json:"storage_class,omitempty"`
	IsFolder     bool       `json:"is_folder"`
	URL          string     `json:"url,omitempty"`
}

// DownloadedObject pairs a key with its full content
type DownloadedObject struct {
	Key  string
	Data []byte
}

// storageClassNames maps wire storage classes to human labels
var storageClassNames = map[string]string{
	"STANDARD":            "S3 Standard",
	"REDUCED_REDUNDANCY":  "Reduced Redundancy",
	"STANDARD_IA":         "S3 Standard-IA",
	"ONEZONE_IA":          "S3 One Zone-IA",
	"INTELLIGENT_TIERING": "S3 Intelligent-Tiering",
	"GLACIER":             "S3 Glacier Flexible Retrieval",
	"DEEP_ARCHIVE":        "S3 Glacier Deep Archive",
	"GLACIER_IR":          "S3 Glacier Instant Retrieval",
	"OUTPOSTS":            "S3 Outposts",
	"EXPRESS_ONEZONE":     "S3 Express One Zone",
	"SNOW":                "Snow",
}

// StorageClassName returns a readable storage class label, falling back to
// the raw value for classes we don't know about.
func StorageClassName(class string) string {
	if class == "" {
		return "-"
	}
	if name, ok := storageClassNames[class]; ok {
		return name
	}
	return class
}

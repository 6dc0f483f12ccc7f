// Package s3store implements storage.Backend on aws-sdk-go-v2. It serves
// AWS S3, Cloudflare R2 and any other endpoint speaking the S3 protocol.
package s3store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// S3API is the subset of *s3.Client used by the backend, kept narrow for mocking
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// PresignAPI is the subset of *s3.PresignClient used for share links
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client is a storage.Backend bound to one connection
type Client struct {
	api       S3API
	presigner PresignAPI
	conn      *config.ConnectionConfig
}

var _ storage.Backend = (*Client)(nil)

// New creates a client from a connection configuration
func New(ctx context.Context, conn *config.ConnectionConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conn.AccessKeyID,
			conn.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(conn.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := conn.EndpointURL()
	pathStyle := conn.ForcePathStyle || conn.Provider == storage.ProviderCustom || conn.Provider == storage.ProviderMinIO
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
	})

	return NewWithAPI(s3Client, s3.NewPresignClient(s3Client), conn), nil
}

// NewWithAPI wires a client around existing SDK handles
func NewWithAPI(api S3API, presigner PresignAPI, conn *config.ConnectionConfig) *Client {
	return &Client{
		api:       api,
		presigner: presigner,
		conn:      conn,
	}
}

// Provider returns the provider of the bound connection
func (c *Client) Provider() storage.Provider {
	return c.conn.Provider
}

func (c *Client) bucketEndpoint(bucket, region string) string {
	if region == "" {
		region = c.conn.Region
	}
	return storage.BucketEndpoint(c.conn.Provider, c.conn.EndpointURL(), region, bucket)
}

package s3store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// ObjectURL returns the link shared for key. A custom domain configured for
// the bucket wins, then a presigned link when enabled, then the plain
// endpoint URL.
func (c *Client) ObjectURL(ctx context.Context, bucket, region, key string) (string, error) {
	if domain := c.conn.GetCustomDomain(bucket); domain != "" {
		logrus.Tracef("ObjectURL: bucket=%s, domain=%s", bucket, domain)
		return storage.CustomDomainURL(domain, key), nil
	}

	if c.conn.PresignURLs && c.presigner != nil {
		return c.presignedURL(ctx, bucket, key)
	}

	return c.plainURL(bucket, region, key), nil
}

func (c *Client) presignedURL(ctx context.Context, bucket, key string) (string, error) {
	request, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.conn.PresignExpiry
	})
	if err != nil {
		return "", mapError("presign object", key, err)
	}
	return request.URL, nil
}

func (c *Client) plainURL(bucket, region, key string) string {
	return c.bucketEndpoint(bucket, region) + "/" + storage.EscapeKey(key)
}

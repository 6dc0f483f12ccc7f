// Package miniostore implements storage.Backend with minio-go.
//
// Usage:
//
//	backend, err := miniostore.New(ctx, conn)
//	if err != nil { ... }
//	buckets, err := backend.ListBuckets(ctx)
package miniostore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

const maxParallelRequests = 8

// minioAPI is the subset of *miniogo.Client used by the driver
type minioAPI interface {
	ListBuckets(ctx context.Context) ([]miniogo.BucketInfo, error)
	ListObjects(ctx context.Context, bucket string, opts miniogo.ListObjectsOptions) <-chan miniogo.ObjectInfo
	GetObject(ctx context.Context, bucket, key string, opts miniogo.GetObjectOptions) (*miniogo.Object, error)
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	CopyObject(ctx context.Context, dst miniogo.CopyDestOptions, src miniogo.CopySrcOptions) (miniogo.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts miniogo.RemoveObjectOptions) error
	RemoveObjects(ctx context.Context, bucket string, objectsCh <-chan miniogo.ObjectInfo, opts miniogo.RemoveObjectsOptions) <-chan miniogo.RemoveObjectError
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)
}

// Driver is a MinIO implementation of storage.Backend.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client minioAPI
	conn   *config.ConnectionConfig
}

var _ storage.Backend = (*Driver)(nil)

// New connects to the endpoint of conn
func New(ctx context.Context, conn *config.ConnectionConfig) (*Driver, error) {
	host, secure, err := splitEndpoint(conn.Endpoint, conn.UseSSL)
	if err != nil {
		return nil, storage.Wrap(storage.ErrKindInvalidInput, "parse endpoint", conn.Endpoint, err)
	}

	client, err := miniogo.New(host, &miniogo.Options{
		Creds:  credentials.NewStaticV4(conn.AccessKeyID, conn.SecretAccessKey, ""),
		Secure: secure,
		Region: conn.Region,
	})
	if err != nil {
		return nil, storage.Wrap(storage.ErrKindConnectionFailed, "create minio client", conn.Endpoint, err)
	}

	return &Driver{client: client, conn: conn}, nil
}

// splitEndpoint turns "http://host:9000" into ("host:9000", false). A bare
// host keeps the configured TLS setting.
func splitEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// Provider returns the provider of the bound connection
func (d *Driver) Provider() storage.Provider {
	return d.conn.Provider
}

// ListBuckets returns all buckets accessible with the configured credentials
func (d *Driver) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	raw, err := d.client.ListBuckets(ctx)
	if err != nil {
		return nil, mapError("list buckets", "", err)
	}

	buckets := make([]storage.BucketInfo, len(raw))
	for i, b := range raw {
		created := b.CreationDate
		buckets[i] = storage.BucketInfo{
			Provider:     d.conn.Provider,
			Name:         b.Name,
			CreationDate: &created,
			Region:       d.conn.Region,
			EndpointURL:  storage.BucketEndpoint(d.conn.Provider, d.conn.Endpoint, d.conn.Region, b.Name),
		}
	}
	return buckets, nil
}

// ListObjects lists the direct children of prefix
func (d *Driver) ListObjects(ctx context.Context, bucket, region, prefix string) ([]storage.ObjectInfo, error) {
	opts := miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}

	var folders, files []storage.ObjectInfo
	for obj := range d.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapError("list objects", prefix, obj.Err)
		}

		if strings.HasSuffix(obj.Key, "/") {
			// the marker of the listed folder itself
			if obj.Key == prefix {
				continue
			}
			folders = append(folders, storage.ObjectInfo{
				Key:      obj.Key,
				IsFolder: true,
				URL:      d.plainURL(bucket, region, obj.Key),
			})
			continue
		}

		size := obj.Size
		modified := obj.LastModified
		files = append(files, storage.ObjectInfo{
			Key:          obj.Key,
			Size:         &size,
			LastModified: &modified,
			StorageClass: obj.StorageClass,
			URL:          d.plainURL(bucket, region, obj.Key),
		})
	}

	return append(folders, files...), nil
}

// DownloadObject reads the whole object into memory
func (d *Driver) DownloadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError("download object", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(storage.TrackProgress(ctx, obj, key, 0))
	if err != nil {
		return nil, mapError("read object body", key, err)
	}
	return data, nil
}

// ReadObjectHead fetches at most n leading bytes with a range request. An
// empty object cannot satisfy any range and reads as no bytes.
func (d *Driver) ReadObjectHead(ctx context.Context, bucket, key string, n int64) ([]byte, error) {
	opts := miniogo.GetObjectOptions{}
	if err := opts.SetRange(0, n-1); err != nil {
		return nil, storage.Wrap(storage.ErrKindInvalidInput, "read object head", key, err)
	}

	obj, err := d.client.GetObject(ctx, bucket, key, opts)
	if isInvalidRange(err) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, mapError("read object head", key, err)
	}
	defer obj.Close()

	// the request is lazy, so a range error may only show on read
	data, err := io.ReadAll(io.LimitReader(obj, n))
	if isInvalidRange(err) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, mapError("read object body", key, err)
	}
	return data, nil
}

// DownloadObjects fetches several objects concurrently
func (d *Driver) DownloadObjects(ctx context.Context, bucket string, keys []string) ([]storage.DownloadedObject, error) {
	return storage.FetchAll(ctx, d, bucket, keys)
}

// DownloadFolder zips every file under prefix
func (d *Driver) DownloadFolder(ctx context.Context, bucket, region, prefix string) ([]byte, error) {
	keys, err := storage.FolderFiles(ctx, d, bucket, region, prefix)
	if err != nil {
		return nil, err
	}
	objects, err := storage.FetchAll(ctx, d, bucket, keys)
	if err != nil {
		return nil, err
	}
	archive, err := storage.BuildArchive(prefix, objects)
	if err != nil {
		return nil, storage.Wrap(storage.ErrKindCommandFailed, "archive folder", prefix, err)
	}
	return archive, nil
}

// UploadObjects puts each local file under prefix
func (d *Driver) UploadObjects(ctx context.Context, bucket, prefix string, localPaths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)
	for _, localPath := range localPaths {
		g.Go(func() error {
			return d.uploadFile(gctx, bucket, storage.UploadKey(prefix, localPath), localPath)
		})
	}
	return g.Wait()
}

func (d *Driver) uploadFile(ctx context.Context, bucket, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return storage.Wrap(storage.ErrKindInvalidInput, "open file", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return storage.Wrap(storage.ErrKindInvalidInput, "stat file", localPath, err)
	}

	contentType, _ := storage.DetectContentType(localPath, file)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return storage.Wrap(storage.ErrKindInvalidInput, "seek file", localPath, err)
	}

	body := storage.TrackProgress(ctx, file, key, info.Size())
	_, err = d.client.PutObject(ctx, bucket, key, body, info.Size(), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapError("upload object", key, err)
	}

	logrus.Infof("Uploaded %s to %s", localPath, key)
	return nil
}

// CreateFolder writes an empty marker object at folderKey
func (d *Driver) CreateFolder(ctx context.Context, bucket, folderKey string) error {
	_, err := d.client.PutObject(ctx, bucket, folderKey, strings.NewReader(""), 0, miniogo.PutObjectOptions{})
	return mapError("create folder", folderKey, err)
}

// DeleteObjects removes keys in batches of storage.DeleteBatchSize
func (d *Driver) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	for _, batch := range storage.Chunk(keys, storage.DeleteBatchSize) {
		objectsCh := make(chan miniogo.ObjectInfo, len(batch))
		for _, key := range batch {
			objectsCh <- miniogo.ObjectInfo{Key: key}
		}
		close(objectsCh)

		var failed []miniogo.RemoveObjectError
		for rerr := range d.client.RemoveObjects(ctx, bucket, objectsCh, miniogo.RemoveObjectsOptions{}) {
			failed = append(failed, rerr)
		}
		if len(failed) > 0 {
			return mapError("delete objects", failed[0].ObjectName,
				fmt.Errorf("%d keys not deleted: %w", len(failed), failed[0].Err))
		}
	}
	return nil
}

// DeleteFolder removes every object under prefix, marker included
func (d *Driver) DeleteFolder(ctx context.Context, bucket, region, prefix string) error {
	keys, err := storage.CollectFolderKeys(ctx, d, bucket, region, prefix)
	if err != nil {
		return err
	}
	return d.DeleteObjects(ctx, bucket, keys)
}

// MoveObjects copies each key below destinationPrefix and deletes the source
func (d *Driver) MoveObjects(ctx context.Context, bucket string, keys []string, destinationPrefix string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)
	for _, key := range keys {
		g.Go(func() error {
			destination := storage.MoveDestination(destinationPrefix, key)
			if destination == key {
				return nil
			}
			_, err := d.client.CopyObject(gctx,
				miniogo.CopyDestOptions{Bucket: bucket, Object: destination},
				miniogo.CopySrcOptions{Bucket: bucket, Object: key},
			)
			if err != nil {
				return mapError("copy object", key, err)
			}
			if err := d.client.RemoveObject(gctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
				return mapError("delete moved object", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ObjectURL returns the custom domain link, a presigned link, or the plain URL
func (d *Driver) ObjectURL(ctx context.Context, bucket, region, key string) (string, error) {
	if domain := d.conn.GetCustomDomain(bucket); domain != "" {
		return storage.CustomDomainURL(domain, key), nil
	}
	if d.conn.PresignURLs {
		u, err := d.client.PresignedGetObject(ctx, bucket, key, d.conn.PresignExpiry, nil)
		if err != nil {
			return "", mapError("presign object", key, err)
		}
		return u.String(), nil
	}
	return d.plainURL(bucket, region, key), nil
}

func (d *Driver) plainURL(bucket, region, key string) string {
	return storage.ObjectURL(d.conn.Provider, d.conn.Endpoint, region, bucket, key)
}

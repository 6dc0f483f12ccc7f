package s3store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

const maxParallelRequests = 8

// ListBuckets returns every bucket visible to the connection
func (c *Client) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	var buckets []storage.BucketInfo
	var token *string

	for {
		input := &s3.ListBucketsInput{ContinuationToken: token}
		// Not every S3-compatible store accepts max-buckets
		if c.conn.Provider == storage.ProviderS3 {
			input.MaxBuckets = aws.Int32(1000)
		}

		out, err := c.api.ListBuckets(ctx, input)
		if err != nil {
			return nil, mapError("list buckets", "", err)
		}

		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			region := aws.ToString(b.BucketRegion)
			buckets = append(buckets, storage.BucketInfo{
				Provider:     c.conn.Provider,
				Name:         name,
				CreationDate: b.CreationDate,
				Region:       region,
				EndpointURL:  c.bucketEndpoint(name, region),
			})
		}

		token = out.ContinuationToken
		if aws.ToString(token) == "" {
			break
		}
	}

	logrus.Debugf("ListBuckets: %d buckets on %s", len(buckets), c.conn.ID)
	return buckets, nil
}

// ListObjects lists the direct children of prefix using "/" as delimiter
func (c *Client) ListObjects(ctx context.Context, bucket, region, prefix string) ([]storage.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Delimiter: aws.String("/"),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var folders, files []storage.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError("list objects", prefix, err)
		}

		for _, cp := range page.CommonPrefixes {
			key := aws.ToString(cp.Prefix)
			folders = append(folders, storage.ObjectInfo{
				Key:      key,
				IsFolder: true,
				URL:      c.plainURL(bucket, region, key),
			})
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, storage.ObjectInfo{
				Key:          key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				StorageClass: string(obj.StorageClass),
				URL:          c.plainURL(bucket, region, key),
			})
		}
	}

	return append(folders, files...), nil
}

// DownloadObject reads the whole object into memory
func (c *Client) DownloadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("download object", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(storage.TrackProgress(ctx, out.Body, key, aws.ToInt64(out.ContentLength)))
	if err != nil {
		return nil, mapError("read object body", key, err)
	}
	return data, nil
}

// ReadObjectHead fetches at most n leading bytes with a range request. An
// empty object cannot satisfy any range and reads as no bytes.
func (c *Client) ReadObjectHead(ctx context.Context, bucket, key string, n int64) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", n-1)),
	})
	if isInvalidRange(err) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, mapError("read object head", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, n))
	if err != nil {
		return nil, mapError("read object body", key, err)
	}
	return data, nil
}

// DownloadObjects fetches several objects concurrently
func (c *Client) DownloadObjects(ctx context.Context, bucket string, keys []string) ([]storage.DownloadedObject, error) {
	return storage.FetchAll(ctx, c, bucket, keys)
}

// DownloadFolder zips every file under prefix
func (c *Client) DownloadFolder(ctx context.Context, bucket, region, prefix string) ([]byte, error) {
	keys, err := storage.FolderFiles(ctx, c, bucket, region, prefix)
	if err != nil {
		return nil, err
	}
	objects, err := storage.FetchAll(ctx, c, bucket, keys)
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
func (c *Client) UploadObjects(ctx context.Context, bucket, prefix string, localPaths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)
	for _, localPath := range localPaths {
		g.Go(func() error {
			return c.uploadFile(gctx, bucket, storage.UploadKey(prefix, localPath), localPath)
		})
	}
	return g.Wait()
}

func (c *Client) uploadFile(ctx context.Context, bucket, key, localPath string) error {
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

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          storage.TrackProgress(ctx, file, key, info.Size()),
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return mapError("upload object", key, err)
	}

	logrus.Infof("Uploaded %s to %s", localPath, key)
	return nil
}

// CreateFolder writes an empty marker object at folderKey
func (c *Client) CreateFolder(ctx context.Context, bucket, folderKey string) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(folderKey),
		Body:   strings.NewReader(""),
	})
	return mapError("create folder", folderKey, err)
}

// DeleteObjects removes keys in batches of storage.DeleteBatchSize
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	for _, batch := range storage.Chunk(keys, storage.DeleteBatchSize) {
		ids := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			ids[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: ids,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return mapError("delete objects", batch[0], err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return storage.Wrap(storage.ErrKindCommandFailed, "delete objects", aws.ToString(first.Key),
				fmt.Errorf("%d keys not deleted: %s", len(out.Errors), aws.ToString(first.Message)))
		}
	}
	return nil
}

// DeleteFolder removes every object under prefix, marker included
func (c *Client) DeleteFolder(ctx context.Context, bucket, region, prefix string) error {
	keys, err := storage.CollectFolderKeys(ctx, c, bucket, region, prefix)
	if err != nil {
		return err
	}
	return c.DeleteObjects(ctx, bucket, keys)
}

// MoveObjects copies each key below destinationPrefix and deletes the source
func (c *Client) MoveObjects(ctx context.Context, bucket string, keys []string, destinationPrefix string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)
	for _, key := range keys {
		g.Go(func() error {
			return c.moveObject(gctx, bucket, key, storage.MoveDestination(destinationPrefix, key))
		})
	}
	return g.Wait()
}

func (c *Client) moveObject(ctx context.Context, bucket, key, destination string) error {
	if key == destination {
		return nil
	}
	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + storage.EscapeKey(key)),
		Key:        aws.String(destination),
	})
	if err != nil {
		return mapError("copy object", key, err)
	}

	_, err = c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return mapError("delete moved object", key, err)
}

package s3store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// MockS3API mocks the SDK client
type MockS3API struct {
	mock.Mock
}

func (m *MockS3API) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.ListBucketsOutput), args.Error(1)
}

func (m *MockS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func (m *MockS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3API) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.CopyObjectOutput), args.Error(1)
}

func (m *MockS3API) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3API) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.DeleteObjectsOutput), args.Error(1)
}

// MockPresigner mocks the presign client
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, params)
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	m.MethodCalled("expires", opts.Expires)
	return args.Get(0).(*v4.PresignedHTTPRequest), args.Error(1)
}

func testConnection() *config.ConnectionConfig {
	return &config.ConnectionConfig{
		ID:              "work",
		Provider:        storage.ProviderR2,
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "auto",
		PresignExpiry:   time.Hour,
	}
}

func listInput(prefix string) any {
	return mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == prefix && aws.ToString(in.Delimiter) == "/"
	})
}

func TestListObjects_FoldersFirstAndMarkerSkipped(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjectsV2", mock.Anything, listInput("docs/")).Return(&s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("docs/sub/")}},
		Contents: []types.Object{
			{Key: aws.String("docs/")},
			{Key: aws.String("docs/a.md"), Size: aws.Int64(12), StorageClass: types.ObjectStorageClassStandard},
		},
		IsTruncated: aws.Bool(false),
	}, nil)

	client := NewWithAPI(api, nil, testConnection())
	objects, err := client.ListObjects(context.Background(), "bucket", "", "docs/")
	require.NoError(t, err)

	require.Len(t, objects, 2)
	assert.Equal(t, "docs/sub/", objects[0].Key)
	assert.True(t, objects[0].IsFolder)
	assert.Nil(t, objects[0].Size)
	assert.Equal(t, "docs/a.md", objects[1].Key)
	assert.False(t, objects[1].IsFolder)
	assert.Equal(t, int64(12), *objects[1].Size)
	assert.Equal(t, "STANDARD", objects[1].StorageClass)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com/bucket/docs/a.md", objects[1].URL)
	api.AssertExpectations(t)
}

func TestListObjects_FollowsContinuationToken(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("a.txt")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
	}, nil).Once()
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("z/")}},
		Contents:       []types.Object{{Key: aws.String("b.txt")}},
		IsTruncated:    aws.Bool(false),
	}, nil).Once()

	client := NewWithAPI(api, nil, testConnection())
	objects, err := client.ListObjects(context.Background(), "bucket", "", "")
	require.NoError(t, err)

	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.Key
	}
	assert.Equal(t, []string{"z/", "a.txt", "b.txt"}, keys)
	api.AssertExpectations(t)
}

func TestListObjects_MapsErrors(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjectsV2", mock.Anything, mock.Anything).
		Return((*s3.ListObjectsV2Output)(nil), &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"})

	client := NewWithAPI(api, nil, testConnection())
	_, err := client.ListObjects(context.Background(), "bucket", "", "")
	require.Error(t, err)
	assert.True(t, storage.IsPermissionDenied(err))
}

func TestListBuckets(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	api := &MockS3API{}
	api.On("ListBuckets", mock.Anything, mock.Anything).Return(&s3.ListBucketsOutput{
		Buckets: []types.Bucket{{Name: aws.String("media"), CreationDate: &created}},
	}, nil)

	client := NewWithAPI(api, nil, testConnection())
	buckets, err := client.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, storage.ProviderR2, buckets[0].Provider)
	assert.Equal(t, "media", buckets[0].Name)
	assert.Equal(t, created, *buckets[0].CreationDate)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com/media", buckets[0].EndpointURL)
}

func TestDownloadObject(t *testing.T) {
	api := &MockS3API{}
	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "a.txt" && in.Range == nil
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("hello"))}, nil)

	client := NewWithAPI(api, nil, testConnection())
	data, err := client.DownloadObject(context.Background(), "bucket", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadObjectHead_UsesRange(t *testing.T) {
	api := &MockS3API{}
	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Range) == "bytes=0-3"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("abcdefgh"))}, nil)

	client := NewWithAPI(api, nil, testConnection())
	data, err := client.ReadObjectHead(context.Background(), "bucket", "a.txt", 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}

func TestReadObjectHead_EmptyObject(t *testing.T) {
	api := &MockS3API{}
	api.On("GetObject", mock.Anything, mock.Anything).
		Return((*s3.GetObjectOutput)(nil), &smithy.GenericAPIError{Code: "InvalidRange", Message: "The requested range is not satisfiable"})

	client := NewWithAPI(api, nil, testConnection())
	data, err := client.ReadObjectHead(context.Background(), "bucket", "empty.md", 40001)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestReadObjectHead_OtherErrorsFail(t *testing.T) {
	api := &MockS3API{}
	api.On("GetObject", mock.Anything, mock.Anything).
		Return((*s3.GetObjectOutput)(nil), &smithy.GenericAPIError{Code: "AccessDenied"})

	client := NewWithAPI(api, nil, testConnection())
	_, err := client.ReadObjectHead(context.Background(), "bucket", "a.md", 10)
	require.Error(t, err)
	assert.True(t, storage.IsPermissionDenied(err))
}

func TestDeleteObjects_Batches(t *testing.T) {
	keys := make([]string, 1500)
	for i := range keys {
		keys[i] = "k"
	}

	var sizes []int
	api := &MockS3API{}
	api.On("DeleteObjects", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.DeleteObjectsInput)
		sizes = append(sizes, len(in.Delete.Objects))
	}).Return(&s3.DeleteObjectsOutput{}, nil)

	client := NewWithAPI(api, nil, testConnection())
	require.NoError(t, client.DeleteObjects(context.Background(), "bucket", keys))
	assert.Equal(t, []int{1000, 500}, sizes)
}

func TestDeleteObjects_ReportsPartialFailure(t *testing.T) {
	api := &MockS3API{}
	api.On("DeleteObjects", mock.Anything, mock.Anything).Return(&s3.DeleteObjectsOutput{
		Errors: []types.Error{{Key: aws.String("a"), Message: aws.String("denied")}},
	}, nil)

	client := NewWithAPI(api, nil, testConnection())
	err := client.DeleteObjects(context.Background(), "bucket", []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, storage.ErrKindCommandFailed, storage.KindOf(err))
}

func TestDeleteFolder_IncludesMarkerAndChildren(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjectsV2", mock.Anything, listInput("photos/")).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("photos/a.jpg")}},
	}, nil)

	var deleted []string
	api.On("DeleteObjects", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.DeleteObjectsInput)
		for _, o := range in.Delete.Objects {
			deleted = append(deleted, aws.ToString(o.Key))
		}
	}).Return(&s3.DeleteObjectsOutput{}, nil)

	client := NewWithAPI(api, nil, testConnection())
	require.NoError(t, client.DeleteFolder(context.Background(), "bucket", "", "photos/"))
	assert.ElementsMatch(t, []string{"photos/a.jpg", "photos/"}, deleted)
}

func TestDeleteFolder_RefusesRoot(t *testing.T) {
	api := &MockS3API{}
	client := NewWithAPI(api, nil, testConnection())

	err := client.DeleteFolder(context.Background(), "bucket", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrRootFolder)
	api.AssertNotCalled(t, "ListObjectsV2", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "DeleteObjects", mock.Anything, mock.Anything)
}

func TestMoveObjects_CopyThenDelete(t *testing.T) {
	api := &MockS3API{}
	api.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *s3.CopyObjectInput) bool {
		return aws.ToString(in.CopySource) == "bucket/docs/a%20b.txt" &&
			aws.ToString(in.Key) == "archive/a b.txt"
	})).Return(&s3.CopyObjectOutput{}, nil).Once()
	api.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "docs/a b.txt"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	client := NewWithAPI(api, nil, testConnection())
	require.NoError(t, client.MoveObjects(context.Background(), "bucket", []string{"docs/a b.txt"}, "archive/"))
	api.AssertExpectations(t)
}

func TestMoveObjects_CopyFailureKeepsSource(t *testing.T) {
	api := &MockS3API{}
	api.On("CopyObject", mock.Anything, mock.Anything).
		Return((*s3.CopyObjectOutput)(nil), errors.New("network down"))

	client := NewWithAPI(api, nil, testConnection())
	err := client.MoveObjects(context.Background(), "bucket", []string{"a.txt"}, "b/")
	require.Error(t, err)
	api.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestCreateFolder(t *testing.T) {
	api := &MockS3API{}
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "docs/new/"
	})).Return(&s3.PutObjectOutput{}, nil)

	client := NewWithAPI(api, nil, testConnection())
	require.NoError(t, client.CreateFolder(context.Background(), "bucket", "docs/new/"))
	api.AssertExpectations(t)
}

func TestUploadObjects(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(local, []byte(`{"a":1}`), 0644))

	api := &MockS3API{}
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "docs/notes.json" &&
			aws.ToString(in.ContentType) == "application/json" &&
			aws.ToInt64(in.ContentLength) == 7
	})).Return(&s3.PutObjectOutput{}, nil)

	client := NewWithAPI(api, nil, testConnection())
	require.NoError(t, client.UploadObjects(context.Background(), "bucket", "docs/", []string{local}))
	api.AssertExpectations(t)
}

func TestUploadObjects_MissingFile(t *testing.T) {
	api := &MockS3API{}
	client := NewWithAPI(api, nil, testConnection())

	err := client.UploadObjects(context.Background(), "bucket", "", []string{"/nonexistent/file.txt"})
	require.Error(t, err)
	assert.True(t, storage.IsInvalidInput(err))
	api.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestObjectURL(t *testing.T) {
	t.Run("custom domain wins", func(t *testing.T) {
		conn := testConnection()
		conn.CustomDomains = map[string]string{"media": "cdn.example.com"}
		client := NewWithAPI(&MockS3API{}, nil, conn)

		url, err := client.ObjectURL(context.Background(), "media", "", "a b.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/a%20b.png", url)
	})

	t.Run("presigned when enabled", func(t *testing.T) {
		conn := testConnection()
		conn.PresignURLs = true
		conn.PresignExpiry = 15 * time.Minute
		presigner := &MockPresigner{}
		presigner.On("PresignGetObject", mock.Anything, mock.Anything).
			Return(&v4.PresignedHTTPRequest{URL: "https://signed"}, nil)
		presigner.On("expires", 15*time.Minute).Return()
		client := NewWithAPI(&MockS3API{}, presigner, conn)

		url, err := client.ObjectURL(context.Background(), "media", "", "a.png")
		require.NoError(t, err)
		assert.Equal(t, "https://signed", url)
		presigner.AssertExpectations(t)
	})

	t.Run("plain endpoint otherwise", func(t *testing.T) {
		client := NewWithAPI(&MockS3API{}, nil, testConnection())

		url, err := client.ObjectURL(context.Background(), "media", "", "dir/a.png")
		require.NoError(t, err)
		assert.Equal(t, "https://acct.r2.cloudflarestorage.com/media/dir/a.png", url)
	})
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError("op", "", nil))
	assert.True(t, storage.IsNotFound(mapError("op", "k", &types.NoSuchKey{})))
	assert.True(t, storage.IsTimeout(mapError("op", "k", context.DeadlineExceeded)))
	assert.True(t, storage.IsInvalidInput(mapError("op", "k", &smithy.GenericAPIError{Code: "InvalidBucketName"})))
	assert.Equal(t, storage.ErrKindConnectionFailed, storage.KindOf(mapError("op", "k", errors.New("dial tcp"))))
}

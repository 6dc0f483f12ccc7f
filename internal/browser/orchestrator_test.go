package browser

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// mockBackend mocks storage.Backend
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Provider() storage.Provider { return storage.ProviderS3 }

func (m *mockBackend) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	args := m.Called(ctx)
	buckets, _ := args.Get(0).([]storage.BucketInfo)
	return buckets, args.Error(1)
}

func (m *mockBackend) ListObjects(ctx context.Context, bucket, region, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, region, prefix)
	objects, _ := args.Get(0).([]storage.ObjectInfo)
	return objects, args.Error(1)
}

func (m *mockBackend) DownloadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBackend) ReadObjectHead(ctx context.Context, bucket, key string, n int64) ([]byte, error) {
	args := m.Called(ctx, bucket, key, n)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBackend) DownloadObjects(ctx context.Context, bucket string, keys []string) ([]storage.DownloadedObject, error) {
	args := m.Called(ctx, bucket, keys)
	objects, _ := args.Get(0).([]storage.DownloadedObject)
	return objects, args.Error(1)
}

func (m *mockBackend) DownloadFolder(ctx context.Context, bucket, region, prefix string) ([]byte, error) {
	args := m.Called(ctx, bucket, region, prefix)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBackend) UploadObjects(ctx context.Context, bucket, prefix string, localPaths []string) error {
	return m.Called(ctx, bucket, prefix, localPaths).Error(0)
}

func (m *mockBackend) CreateFolder(ctx context.Context, bucket, folderKey string) error {
	return m.Called(ctx, bucket, folderKey).Error(0)
}

func (m *mockBackend) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	return m.Called(ctx, bucket, keys).Error(0)
}

func (m *mockBackend) DeleteFolder(ctx context.Context, bucket, region, prefix string) error {
	return m.Called(ctx, bucket, region, prefix).Error(0)
}

func (m *mockBackend) MoveObjects(ctx context.Context, bucket string, keys []string, destinationPrefix string) error {
	return m.Called(ctx, bucket, keys, destinationPrefix).Error(0)
}

func (m *mockBackend) ObjectURL(ctx context.Context, bucket, region, key string) (string, error) {
	args := m.Called(ctx, bucket, region, key)
	return args.String(0), args.Error(1)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

var docsKey = ListingKey{ConnectionID: "c1", Bucket: "bucket", Region: "auto", Prefix: "docs/"}

func newTestOrchestrator(fs *fakeFS) (*Orchestrator, *mockBackend, *fakeClipboard) {
	backend := new(mockBackend)
	clip := &fakeClipboard{}
	return NewOrchestrator(backend, fs, clip), backend, clip
}

func TestValidationFailuresNeverReachBackend(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())

	outcomes := []Outcome{
		o.Upload(ctx, docsKey, nil),
		o.Download(ctx, docsKey, "", "dl"),
		o.Download(ctx, docsKey, "docs/a.txt", ""),
		o.DownloadMany(ctx, docsKey, nil, "dl"),
		o.DownloadFolder(ctx, docsKey, "/", "dl"),
		o.DeleteObjects(ctx, docsKey, []string{}),
		o.DeleteFolder(ctx, docsKey, ""),
		o.CreateFolder(ctx, docsKey, "  ", nil),
		o.CreateFolder(ctx, docsKey, "2024", []Entry{{Key: "docs/2024/", Label: "2024", IsFolder: true}}),
		o.Move(ctx, docsKey, nil, "archive/"),
		o.ShareURL(ctx, docsKey, "docs/sub/"),
	}

	cache := NewCache()
	coord := NewCoordinator()
	coord.Selection.Toggle("docs/keep.txt")
	for _, out := range outcomes {
		assert.True(t, out.Skipped(), out.Op.String())
		notice, isErr := Settle(out, cache, coord)
		assert.Empty(t, notice)
		assert.False(t, isErr)
	}
	assert.Equal(t, 1, coord.Selection.Len())
	backend.AssertExpectations(t)
	assert.Empty(t, backend.Calls)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	paths := []string{"/tmp/a.png", "/tmp/b.png"}
	backend.On("UploadObjects", ctx, "bucket", "docs/", paths).Return(nil).Once()

	out := o.Upload(ctx, docsKey, paths)
	require.NoError(t, out.Err)
	assert.Equal(t, []ListingKey{docsKey}, out.Invalidate)
	assert.Equal(t, "Uploaded 2 file(s)", out.Notice)
	backend.AssertExpectations(t)
}

func TestDownloadUsesFreeName(t *testing.T) {
	ctx := context.Background()
	fs := newFakeFS("dl/report.pdf", "dl/report(1).pdf", "dl/report(2).pdf")
	o, backend, _ := newTestOrchestrator(fs)
	backend.On("DownloadObject", ctx, "bucket", "docs/report.pdf").Return([]byte("pdf"), nil).Once()

	out := o.Download(ctx, docsKey, "docs/report.pdf", "dl")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"dl/report(3).pdf"}, out.Paths)
	assert.Equal(t, []byte("pdf"), fs.files["dl/report(3).pdf"])
	assert.Empty(t, out.Invalidate)
}

func TestDownloadManyNamesEachFile(t *testing.T) {
	ctx := context.Background()
	fs := newFakeFS("dl/a.txt")
	o, backend, _ := newTestOrchestrator(fs)
	keys := []string{"docs/a.txt", "other/a.txt", "docs/README"}
	backend.On("DownloadObjects", ctx, "bucket", keys).Return([]storage.DownloadedObject{
		{Key: "docs/a.txt", Data: []byte("1")},
		{Key: "other/a.txt", Data: []byte("2")},
		{Key: "docs/README", Data: []byte("3")},
	}, nil).Once()

	out := o.DownloadMany(ctx, docsKey, keys, "dl")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"dl/a(1).txt", "dl/a(2).txt", "dl/README"}, out.Paths)
	assert.Equal(t, []byte("2"), fs.files["dl/a(2).txt"])
	backend.AssertNumberOfCalls(t, "DownloadObjects", 1)
}

func TestDownloadFolderArchive(t *testing.T) {
	ctx := context.Background()
	fs := newFakeFS("dl/2024.zip")
	o, backend, _ := newTestOrchestrator(fs)
	backend.On("DownloadFolder", ctx, "bucket", "auto", "docs/2024/").Return([]byte("PK"), nil).Once()

	out := o.DownloadFolder(ctx, docsKey, "docs/2024/", "dl")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"dl/2024(1).zip"}, out.Paths)
}

func TestDownloadWriteFailure(t *testing.T) {
	ctx := context.Background()
	fs := newFakeFS()
	fs.failOn = "dl/a.txt"
	o, backend, _ := newTestOrchestrator(fs)
	backend.On("DownloadObject", ctx, "bucket", "docs/a.txt").Return([]byte("x"), nil)

	out := o.Download(ctx, docsKey, "docs/a.txt", "dl")
	assert.True(t, out.Failed())
	var lio *LocalIOError
	assert.ErrorAs(t, out.Err, &lio)
}

func TestDeleteObjectsClearsSelection(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	cache := NewCache()
	coord := NewCoordinator()

	gen := cache.Begin(docsKey)
	cache.Resolve(docsKey, gen, []Entry{{Key: "docs/a.txt"}}, nil)
	coord.Selection.Toggle("docs/a.txt")
	coord.Selection.Toggle("docs/b.txt")
	coord.OpenDeleteObjects(coord.Selection.Keys())

	backend.On("DeleteObjects", ctx, "bucket", []string{"docs/a.txt", "docs/b.txt"}).Return(nil).Once()

	out := o.DeleteObjects(ctx, docsKey, coord.Dialog().Keys)
	notice, isErr := Settle(out, cache, coord)
	assert.False(t, isErr)
	assert.Equal(t, "Deleted 2 file(s)", notice)
	assert.Equal(t, 0, coord.Selection.Len())
	assert.False(t, coord.Dialog().Open())
	_, cached := cache.Get(docsKey)
	assert.False(t, cached)
}

func TestDeleteFolderKeepsSelection(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	root := ListingKey{ConnectionID: "c1", Bucket: "bucket", Region: "auto"}
	cache := NewCache()
	coord := NewCoordinator()

	gen := cache.Begin(root)
	cache.Resolve(root, gen, []Entry{{Key: "docs/", IsFolder: true}}, nil)
	coord.Selection.Toggle("readme.md")
	coord.OpenDeleteFolder("docs/")

	backend.On("DeleteFolder", ctx, "bucket", "auto", "docs/").Return(nil).Once()

	out := o.DeleteFolder(ctx, root, coord.Dialog().Prefix)
	notice, _ := Settle(out, cache, coord)
	assert.Equal(t, "Deleted folder docs", notice)
	assert.True(t, coord.Selection.Has("readme.md"))
	assert.False(t, coord.Dialog().Open())

	_, cached := cache.Get(root)
	assert.False(t, cached, "listing is refetched after invalidation")
}

func TestFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	cache := NewCache()
	coord := NewCoordinator()

	gen := cache.Begin(docsKey)
	cache.Resolve(docsKey, gen, []Entry{{Key: "docs/a.txt"}}, nil)
	coord.Selection.Toggle("docs/a.txt")
	coord.OpenDeleteObjects(coord.Selection.Keys())

	cause := storage.Wrap(storage.ErrKindPermissionDenied, "delete objects", "", errors.New("AccessDenied"))
	backend.On("DeleteObjects", ctx, "bucket", []string{"docs/a.txt"}).Return(cause).Once()

	out := o.DeleteObjects(ctx, docsKey, coord.Dialog().Keys)
	require.True(t, out.Failed())
	assert.True(t, storage.IsPermissionDenied(out.Err))

	notice, isErr := Settle(out, cache, coord)
	assert.True(t, isErr)
	assert.Equal(t, "Failed to delete files", notice)
	assert.True(t, coord.Selection.Has("docs/a.txt"))
	assert.True(t, coord.Dialog().Open())
	l, ok := cache.Get(docsKey)
	require.True(t, ok)
	assert.Equal(t, ListingReady, l.State)
	backend.AssertNumberOfCalls(t, "DeleteObjects", 1)
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	backend.On("CreateFolder", ctx, "bucket", "docs/new/").Return(nil).Once()

	existing := []Entry{{Key: "docs/new.txt", Label: "new.txt"}}
	out := o.CreateFolder(ctx, docsKey, " new/ ", existing)
	require.NoError(t, out.Err)
	assert.Equal(t, []ListingKey{docsKey}, out.Invalidate)
	backend.AssertExpectations(t)
}

func TestMoveInvalidatesSourceAndDestination(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	coord := NewCoordinator()
	coord.Selection.Toggle("docs/a.txt")

	backend.On("MoveObjects", ctx, "bucket", []string{"docs/a.txt"}, "archive/").Return(nil).Once()

	out := o.Move(ctx, docsKey, coord.Selection.Keys(), "archive/")
	require.NoError(t, out.Err)
	dest := docsKey
	dest.Prefix = "archive/"
	assert.Equal(t, []ListingKey{docsKey, dest}, out.Invalidate)

	Settle(out, NewCache(), coord)
	assert.Equal(t, 0, coord.Selection.Len())
}

func TestMoveToRoot(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	backend.On("MoveObjects", ctx, "bucket", []string{"docs/a.txt"}, "").Return(nil).Once()

	out := o.Move(ctx, docsKey, []string{"docs/a.txt"}, "")
	require.NoError(t, out.Err)
	require.Len(t, out.Invalidate, 2)
	assert.Equal(t, "", out.Invalidate[1].Prefix)
}

func TestDeleteSelectionAcrossFolders(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	root := ListingKey{ConnectionID: "c1", Bucket: "bucket", Region: "auto"}
	cache := NewCache()
	for _, key := range []ListingKey{root, docsKey} {
		gen := cache.Begin(key)
		cache.Resolve(key, gen, []Entry{{Key: key.Prefix + "a.txt"}}, nil)
	}

	// selected in docs/, deleted while looking at the root
	keys := []string{"docs/a.txt", "readme.md"}
	backend.On("DeleteObjects", ctx, "bucket", keys).Return(nil).Once()

	out := o.DeleteObjects(ctx, root, keys)
	require.NoError(t, out.Err)
	assert.Equal(t, []ListingKey{root, docsKey}, out.Invalidate)

	Settle(out, cache, NewCoordinator())
	_, cached := cache.Get(docsKey)
	assert.False(t, cached, "the folder the key lived in is stale")
}

func TestMoveSelectionAcrossFolders(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	root := ListingKey{ConnectionID: "c1", Bucket: "bucket", Region: "auto"}
	keys := []string{"docs/a.txt", "docs/2024/b.txt"}
	backend.On("MoveObjects", ctx, "bucket", keys, "archive/").Return(nil).Once()

	out := o.Move(ctx, root, keys, "archive/")
	require.NoError(t, out.Err)

	nested := docsKey
	nested.Prefix = "docs/2024/"
	archive := docsKey
	archive.Prefix = "archive/"
	assert.Equal(t, []ListingKey{root, docsKey, nested, archive}, out.Invalidate)
}

func TestTargetDeleteKeepsSelection(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	coord := NewCoordinator()
	coord.Selection.Toggle("docs/b.txt")
	coord.OpenDeleteTarget("docs/a.txt")

	backend.On("DeleteObjects", ctx, "bucket", []string{"docs/a.txt"}).Return(nil).Once()

	out := o.DeleteObjects(ctx, docsKey, coord.Dialog().Keys)
	notice, _ := Settle(out, NewCache(), coord)
	assert.Equal(t, "Deleted 1 file(s)", notice)
	assert.False(t, coord.Dialog().Open())
	assert.Equal(t, []string{"docs/b.txt"}, coord.Selection.Keys())
}

func TestUploadCarriesProgress(t *testing.T) {
	ctx := context.Background()
	o, backend, _ := newTestOrchestrator(newFakeFS())
	var reported []int64
	o.WithProgress(func(name string, done, total int64) { reported = append(reported, done) })

	backend.On("UploadObjects", mock.Anything, "bucket", "docs/", []string{"/tmp/a.txt"}).
		Run(func(args mock.Arguments) {
			bctx := args.Get(0).(context.Context)
			body := storage.TrackProgress(bctx, strings.NewReader("abc"), "docs/a.txt", 3)
			_, _ = io.ReadAll(body)
		}).Return(nil).Once()

	out := o.Upload(ctx, docsKey, []string{"/tmp/a.txt"})
	require.NoError(t, out.Err)
	require.NotEmpty(t, reported)
	assert.Equal(t, int64(3), reported[len(reported)-1])
}

func TestShareURL(t *testing.T) {
	ctx := context.Background()

	t.Run("copies to clipboard", func(t *testing.T) {
		o, backend, clip := newTestOrchestrator(newFakeFS())
		backend.On("ObjectURL", ctx, "bucket", "auto", "docs/a.txt").Return("https://cdn/docs/a.txt", nil)

		out := o.ShareURL(ctx, docsKey, "docs/a.txt")
		require.NoError(t, out.Err)
		assert.Equal(t, "https://cdn/docs/a.txt", clip.text)
		assert.Equal(t, "https://cdn/docs/a.txt", out.URL)
		assert.Empty(t, out.Invalidate)
	})

	t.Run("clipboard failure", func(t *testing.T) {
		o, backend, clip := newTestOrchestrator(newFakeFS())
		clip.err = errors.New("no display")
		backend.On("ObjectURL", ctx, "bucket", "auto", "docs/a.txt").Return("https://x", nil)

		out := o.ShareURL(ctx, docsKey, "docs/a.txt")
		assert.True(t, out.Failed())
		var lio *LocalIOError
		assert.ErrorAs(t, out.Err, &lio)
	})
}

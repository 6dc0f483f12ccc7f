package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory bucket answering delimiter listings
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	listed  []string
	failKey string
}

func newMemoryStore(keys ...string) *memoryStore {
	m := &memoryStore{objects: map[string][]byte{}}
	for _, k := range keys {
		m.objects[k] = []byte("data:" + k)
	}
	return m
}

func (m *memoryStore) ListObjects(ctx context.Context, bucket, region, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, prefix)

	folders := map[string]bool{}
	var out []ObjectInfo
	for key := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			continue
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			folders[prefix+rest[:i+1]] = true
			continue
		}
		out = append(out, ObjectInfo{Key: key})
	}
	for f := range folders {
		out = append(out, ObjectInfo{Key: f, IsFolder: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) DownloadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if key == m.failKey {
		return nil, Wrap(ErrKindNotFound, "download object", key, errors.New("missing"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key], nil
}

func TestCollectFolderKeys(t *testing.T) {
	store := newMemoryStore(
		"photos/",
		"photos/a.jpg",
		"photos/2024/",
		"photos/2024/b.jpg",
		"photos/2024/deep/c.jpg",
		"photosphere.txt",
		"other/x.txt",
	)

	keys, err := CollectFolderKeys(context.Background(), store, "bucket", "", "photos/")
	require.NoError(t, err)

	sort.Strings(keys)
	assert.Equal(t, []string{
		"photos/",
		"photos/2024/",
		"photos/2024/b.jpg",
		"photos/2024/deep/",
		"photos/2024/deep/c.jpg",
		"photos/a.jpg",
	}, keys)
}

func TestCollectFolderKeys_EmptyFolderIncludesMarker(t *testing.T) {
	store := newMemoryStore("other/x.txt")

	keys, err := CollectFolderKeys(context.Background(), store, "bucket", "", "empty")
	require.NoError(t, err)
	assert.Equal(t, []string{"empty/"}, keys)
}

func TestCollectFolderKeys_RefusesRoot(t *testing.T) {
	store := newMemoryStore("a.txt")

	for _, prefix := range []string{"", "/"} {
		_, err := CollectFolderKeys(context.Background(), store, "bucket", "", prefix)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRootFolder)
		assert.True(t, IsInvalidInput(err))
	}
	assert.Empty(t, store.listed)
}

func TestFolderFiles(t *testing.T) {
	store := newMemoryStore("docs/", "docs/a.md", "docs/sub/b.md")

	files, err := FolderFiles(context.Background(), store, "bucket", "", "docs/")
	require.NoError(t, err)
	sort.Strings(files)
	assert.Equal(t, []string{"docs/a.md", "docs/sub/b.md"}, files)
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	var keys []string
	for i := 0; i < 25; i++ {
		keys = append(keys, fmt.Sprintf("k/%02d", i))
	}
	store := newMemoryStore(keys...)

	got, err := FetchAll(context.Background(), store, "bucket", keys)
	require.NoError(t, err)
	require.Len(t, got, len(keys))
	for i, obj := range got {
		assert.Equal(t, keys[i], obj.Key)
		assert.Equal(t, "data:"+keys[i], string(obj.Data))
	}
}

func TestFetchAll_Error(t *testing.T) {
	store := newMemoryStore("a", "b")
	store.failKey = "b"

	_, err := FetchAll(context.Background(), store, "bucket", []string{"a", "b"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

package tui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

func createTestBucketSelector(t *testing.T, backend *MockBackend) (*BucketSelectorModel, *config.UserData) {
	t.Helper()
	userData := config.LoadUserDataFrom(filepath.Join(t.TempDir(), "user.data"))
	sess := session{backend: backend, timeout: time.Second}
	return NewBucketSelectorModel(sess, "r2", userData), userData
}

func TestBucketSelector_LoadsAndMarksLastBucket(t *testing.T) {
	backend := new(MockBackend)
	created := time.Now().Add(-48 * time.Hour)
	backend.On("ListBuckets", mock.Anything).Return([]storage.BucketInfo{
		{Name: "assets", Provider: storage.ProviderR2, CreationDate: &created},
		{Name: "backups", Provider: storage.ProviderR2},
	}, nil).Once()

	m, userData := createTestBucketSelector(t, backend)
	require.NoError(t, userData.RememberBucket("r2", "backups"))

	m.Update(m.session.loadBuckets()())
	assert.False(t, m.loading)
	require.Len(t, m.buckets, 2)
	assert.False(t, m.buckets[0].IsLast)
	assert.True(t, m.buckets[1].IsLast)

	view := m.View()
	assert.Contains(t, view, "assets")
	assert.Contains(t, view, "2 days ago")
	backend.AssertExpectations(t)
}

func TestBucketSelector_EnterChoosesBucket(t *testing.T) {
	backend := new(MockBackend)
	m, _ := createTestBucketSelector(t, backend)
	m.Update(bucketsLoadedMsg{buckets: []storage.BucketInfo{{Name: "a"}, {Name: "b", Region: "eu"}}})

	m.Update(keyPress("j"))
	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, bucketChosenMsg{bucket: storage.BucketInfo{Name: "b", Region: "eu"}}, cmd())
}

func TestBucketSelector_RememberBucket(t *testing.T) {
	backend := new(MockBackend)
	m, userData := createTestBucketSelector(t, backend)
	m.Update(bucketsLoadedMsg{buckets: []storage.BucketInfo{{Name: "a"}, {Name: "b"}}})

	_, cmd := m.Update(keyPress("m"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, "a", userData.LastBucket("r2"))
	assert.True(t, m.buckets[0].IsLast)
	msg, _, ok := m.status.GetMessage()
	assert.True(t, ok)
	assert.Equal(t, "a opens on start", msg)
}

func TestBucketSelector_LoadError(t *testing.T) {
	backend := new(MockBackend)
	m, _ := createTestBucketSelector(t, backend)
	m.Update(bucketsLoadedMsg{err: assert.AnError})

	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "Could not list buckets")
	msg, _, _ := m.status.GetMessage()
	assert.Equal(t, "Failed to list buckets", msg)
}

func TestBucketSelector_SearchFiltersByName(t *testing.T) {
	backend := new(MockBackend)
	m, _ := createTestBucketSelector(t, backend)
	m.Update(bucketsLoadedMsg{buckets: []storage.BucketInfo{{Name: "media-assets"}, {Name: "backups"}, {Name: "Old-Media"}}})

	m.Update(keyPress("/"))
	require.True(t, m.searching)
	for _, r := range "MEDIA" {
		m.Update(keyPress(string(r)))
	}
	require.Len(t, m.visible(), 2)
	view := m.View()
	assert.Contains(t, view, "Old-Media")
	assert.NotContains(t, view, "backups")

	// enter keeps the filter; navigation runs over the matches
	m.Update(keyPress("enter"))
	assert.False(t, m.searching)
	m.Update(keyPress("j"))
	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, bucketChosenMsg{bucket: storage.BucketInfo{Name: "Old-Media"}}, cmd())

	// esc drops the filter before it would quit
	_, cmd = m.Update(keyPress("esc"))
	assert.Nil(t, cmd)
	assert.Len(t, m.visible(), 3)
}

func TestBucketSelector_SearchWithoutMatches(t *testing.T) {
	backend := new(MockBackend)
	m, _ := createTestBucketSelector(t, backend)
	m.Update(bucketsLoadedMsg{buckets: []storage.BucketInfo{{Name: "a"}}})

	m.Update(keyPress("/"))
	m.Update(keyPress("z"))
	assert.Contains(t, m.View(), "No buckets match z")
	_, ok := m.Selected()
	assert.False(t, ok)

	m.Update(keyPress("esc"))
	assert.False(t, m.searching)
	_, ok = m.Selected()
	assert.True(t, ok)
}

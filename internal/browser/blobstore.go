package browser

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Blob is a preview payload written to local disk
type Blob struct {
	Key       string
	Path      string
	URL       string
	Size      int64
	CreatedAt time.Time
}

// BlobStore keeps preview payloads in a temp directory and hands out
// file:// URLs to them. Each URL stays valid until revoked or evicted.
type BlobStore struct {
	dir     string
	maxSize int64

	mu    sync.Mutex
	blobs map[string]*Blob // by URL
}

// NewBlobStore creates the store under dir. maxSize <= 0 disables eviction.
func NewBlobStore(dir string, maxSize int64) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &LocalIOError{Op: "create blob dir", Path: dir, Err: err}
	}
	return &BlobStore{
		dir:     dir,
		maxSize: maxSize,
		blobs:   make(map[string]*Blob),
	}, nil
}

// Put writes data for key and returns its blob. Putting the same key twice
// replaces the previous payload.
func (s *BlobStore) Put(key string, data []byte) (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := md5.Sum([]byte(key))
	_, ext := SplitExtension(BaseOf(key))
	path := filepath.Join(s.dir, fmt.Sprintf("%x%s", hash, ext))

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, &LocalIOError{Op: "write blob", Path: path, Err: err}
	}

	blob := &Blob{
		Key:       key,
		Path:      path,
		URL:       (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(),
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}
	s.blobs[blob.URL] = blob
	s.evict(blob.URL)
	return blob, nil
}

// Lookup returns the blob behind a URL previously returned by Put
func (s *BlobStore) Lookup(u string) (*Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[u]
	return b, ok
}

// Revoke deletes the payload behind u. Unknown URLs are ignored.
func (s *BlobStore) Revoke(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(u)
}

// Close revokes every blob and removes the directory
func (s *BlobStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for u := range s.blobs {
		s.remove(u)
	}
	return os.RemoveAll(s.dir)
}

func (s *BlobStore) remove(u string) {
	blob, ok := s.blobs[u]
	if !ok {
		return
	}
	delete(s.blobs, u)
	if err := os.Remove(blob.Path); err != nil && !os.IsNotExist(err) {
		logrus.Debugf("remove preview blob %s: %v", blob.Path, err)
	}
}

// evict drops the oldest blobs until the store fits maxSize, never the one
// just written.
func (s *BlobStore) evict(keep string) {
	if s.maxSize <= 0 {
		return
	}
	var total int64
	blobs := make([]*Blob, 0, len(s.blobs))
	for _, b := range s.blobs {
		total += b.Size
		blobs = append(blobs, b)
	}
	sort.Slice(blobs, func(i, j int) bool {
		return blobs[i].CreatedAt.Before(blobs[j].CreatedAt)
	})
	for _, b := range blobs {
		if total <= s.maxSize {
			return
		}
		if b.URL == keep {
			continue
		}
		total -= b.Size
		s.remove(b.URL)
	}
}

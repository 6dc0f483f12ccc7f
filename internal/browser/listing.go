package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// ListingKey identifies one listing. Two listings with equal keys are the
// same listing.
type ListingKey struct {
	ConnectionID string
	Bucket       string
	Region       string
	Prefix       string
}

// Entry is one row of a listing
type Entry struct {
	Key          string
	Label        string
	Size         *int64
	LastModified *time.Time
	StorageClass string
	IsFolder     bool

	// IsParent marks the synthetic row leading one level up
	IsParent bool
}

// NewEntries converts backend objects listed under prefix into rows
func NewEntries(objects []storage.ObjectInfo, prefix string) []Entry {
	entries := make([]Entry, 0, len(objects))
	for _, obj := range objects {
		entries = append(entries, Entry{
			Key:          obj.Key,
			Label:        EntryLabel(obj.Key, prefix),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			StorageClass: obj.StorageClass,
			IsFolder:     obj.IsFolder || IsFolderKey(obj.Key),
		})
	}
	return entries
}

// FilterEntries keeps entries whose key contains phrase, ignoring case
func FilterEntries(entries []Entry, phrase string) []Entry {
	if strings.TrimSpace(phrase) == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if MatchesSearch(e.Key, phrase) {
			out = append(out, e)
		}
	}
	return out
}

// MatchesSearch reports whether s contains the trimmed phrase, ignoring
// case. An empty phrase matches everything.
func MatchesSearch(s, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	return phrase == "" || strings.Contains(strings.ToLower(s), phrase)
}

// ListingState is where a cached listing is in its lifecycle
type ListingState int

const (
	ListingPending ListingState = iota
	ListingReady
	ListingFailed
)

// Listing is a cache entry. A ready listing being fetched again keeps its
// entries and is marked Refreshing until the new result lands.
type Listing struct {
	Key        ListingKey
	State      ListingState
	Entries    []Entry
	Err        error
	Generation uint64
	Refreshing bool
}

// Lister lists the direct children of a prefix
type Lister interface {
	ListObjects(ctx context.Context, bucket, region, prefix string) ([]storage.ObjectInfo, error)
}

// Cache holds listings by key. Writers never edit a listing; they
// invalidate it and a later Begin fetches it again. Every Begin for a key
// starts a new generation and only the newest generation may resolve.
// Nothing is served without a fetch: a cached listing only fills the
// screen while its refetch is in flight.
type Cache struct {
	mu       sync.Mutex
	listings map[ListingKey]*Listing
	gens     map[ListingKey]uint64
}

func NewCache() *Cache {
	return &Cache{
		listings: make(map[ListingKey]*Listing),
		gens:     make(map[ListingKey]uint64),
	}
}

// Begin starts a fetch for key and returns the generation it must resolve
// with. Ready entries stay visible while the fetch runs.
func (c *Cache) Begin(key ListingKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	gen := c.gens[key]
	if l, ok := c.listings[key]; ok && l.State == ListingReady {
		c.listings[key] = &Listing{Key: key, State: ListingReady, Entries: l.Entries, Generation: gen, Refreshing: true}
		return gen
	}
	c.listings[key] = &Listing{Key: key, State: ListingPending, Generation: gen}
	return gen
}

// Resolve stores the result of the fetch started with gen. A result from an
// older generation is dropped and Resolve reports false.
func (c *Cache) Resolve(key ListingKey, gen uint64, entries []Entry, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != gen {
		return false
	}
	l := &Listing{Key: key, Generation: gen}
	if err != nil {
		l.State = ListingFailed
		l.Err = err
	} else {
		l.State = ListingReady
		l.Entries = entries
	}
	c.listings[key] = l
	return true
}

// Invalidate forgets key so the next Begin refetches it. A fetch already in
// flight for key becomes stale.
func (c *Cache) Invalidate(key ListingKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listings, key)
	c.gens[key]++
}

// Get returns a copy of the cached listing for key
func (c *Cache) Get(key ListingKey) (Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.listings[key]
	if !ok {
		return Listing{}, false
	}
	return *l, true
}

// Fetch lists key through lister and converts the result to rows
func Fetch(ctx context.Context, lister Lister, key ListingKey) ([]Entry, error) {
	objects, err := lister.ListObjects(ctx, key.Bucket, key.Region, key.Prefix)
	if err != nil {
		return nil, &BackendError{Op: "list objects", Err: err}
	}
	return NewEntries(objects, key.Prefix), nil
}

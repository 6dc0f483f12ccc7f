package browser

import (
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// Activation is what activating a row did
type Activation int

const (
	ActivatedNothing Activation = iota
	ActivatedFolder
	ActivatedPreview
	ClosedPreview
	LeftBucket
)

// ParentLabel is the label of the synthetic row leading one level up
const ParentLabel = ".."

// ParentEntry is the row leading from prefix one level up
func ParentEntry(prefix string) Entry {
	return Entry{Key: Parent(prefix), Label: ParentLabel, IsFolder: true, IsParent: true}
}

// Controller owns the browsing state of one screen: which bucket, which
// prefix, which object is previewed and the search phrase. It is only
// touched from the event loop.
type Controller struct {
	connectionID string
	active       bool

	bucket  *storage.BucketInfo
	prefix  string
	search  string
	preview *Preview

	Coord *Coordinator
	Pager *Pager

	cache *Cache
	blobs *BlobStore
}

func NewController(connectionID string, cache *Cache, blobs *BlobStore, layout Layout) *Controller {
	return &Controller{
		connectionID: connectionID,
		cache:        cache,
		blobs:        blobs,
		Coord:        NewCoordinator(),
		Pager:        NewPager(layout),
	}
}

// Activate marks the screen live. Results arriving while inactive are dropped.
func (c *Controller) Activate() { c.active = true }

// Deactivate drops all transient state and releases the preview blob
func (c *Controller) Deactivate() {
	c.active = false
	c.ClosePreview()
	c.Coord.ClearSelection()
	c.search = ""
}

func (c *Controller) Active() bool { return c.active }

func (c *Controller) ConnectionID() string { return c.connectionID }

// Bucket returns the selected bucket or nil while on the bucket list
func (c *Controller) Bucket() *storage.BucketInfo { return c.bucket }

func (c *Controller) Prefix() string { return c.prefix }

// SelectBucket switches bucket, resetting prefix, preview and selection in
// one step.
func (c *Controller) SelectBucket(b storage.BucketInfo) {
	c.bucket = &b
	c.prefix = ""
	c.search = ""
	c.ClosePreview()
	c.Coord.ClearSelection()
}

// LeaveBucket returns to the bucket list
func (c *Controller) LeaveBucket() {
	c.bucket = nil
	c.prefix = ""
	c.search = ""
	c.ClosePreview()
	c.Coord.ClearSelection()
}

// Navigate moves to prefix verbatim
func (c *Controller) Navigate(prefix string) {
	if prefix == c.prefix {
		return
	}
	c.prefix = prefix
	c.ClosePreview()
	c.Coord.Close()
}

// Up moves to the parent prefix, or leaves the bucket at the root
func (c *Controller) Up() Activation {
	if c.prefix == "" {
		c.LeaveBucket()
		return LeftBucket
	}
	c.Navigate(Parent(c.prefix))
	return ActivatedFolder
}

// Key is the listing currently shown. The zero key means no bucket.
func (c *Controller) Key() ListingKey {
	if c.bucket == nil {
		return ListingKey{}
	}
	return ListingKey{
		ConnectionID: c.connectionID,
		Bucket:       c.bucket.Name,
		Region:       c.bucket.Region,
		Prefix:       c.prefix,
	}
}

// BeginListing starts loading the current listing. It reports false when no
// bucket is selected.
func (c *Controller) BeginListing() (ListingKey, uint64, bool) {
	key := c.Key()
	if key.Bucket == "" {
		return key, 0, false
	}
	return key, c.cache.Begin(key), true
}

// ApplyListing resolves a finished fetch. Results for a listing that is no
// longer shown, or for a generation that was invalidated, are discarded.
func (c *Controller) ApplyListing(key ListingKey, gen uint64, entries []Entry, err error) bool {
	if !c.active || key != c.Key() {
		return false
	}
	return c.cache.Resolve(key, gen, entries, err)
}

// Listing returns the cached state of the current listing
func (c *Controller) Listing() (Listing, bool) {
	return c.cache.Get(c.Key())
}

// Entries returns the current listing filtered by the search phrase
func (c *Controller) Entries() []Entry {
	l, ok := c.Listing()
	if !ok || l.State != ListingReady {
		return nil
	}
	return FilterEntries(l.Entries, c.search)
}

// Rows are the entries with the parent row in front
func (c *Controller) Rows() []Entry {
	if c.bucket == nil {
		return nil
	}
	parent := ParentEntry(c.prefix)
	return append([]Entry{parent}, c.Entries()...)
}

func (c *Controller) Search() string { return c.search }

// SetSearch changes the search phrase; the pager resets with the item count
func (c *Controller) SetSearch(phrase string) { c.search = phrase }

// ActivateEntry handles a chosen row: the parent row goes up, a folder opens, a file toggles
// its preview.
func (c *Controller) ActivateEntry(e Entry) Activation {
	switch {
	case e.IsParent:
		return c.Up()
	case e.IsFolder:
		c.Navigate(e.Key)
		return ActivatedFolder
	case c.preview != nil && c.preview.Key == e.Key:
		c.ClosePreview()
		return ClosedPreview
	default:
		c.ClosePreview()
		c.preview = &Preview{Kind: Classify(e.Key), Key: e.Key}
		return ActivatedPreview
	}
}

// PreviewKey is the object being previewed, empty when none
func (c *Controller) PreviewKey() string {
	if c.preview == nil {
		return ""
	}
	return c.preview.Key
}

// Preview returns the loaded preview
func (c *Controller) Preview() *Preview { return c.preview }

// SetPreview stores a loaded preview if it is still the one asked for,
// otherwise its blob is revoked straight away.
func (c *Controller) SetPreview(p Preview) bool {
	if c.preview == nil || c.preview.Key != p.Key {
		c.revoke(p.URL)
		return false
	}
	c.preview = &p
	return true
}

// ClosePreview hides the preview and revokes its blob
func (c *Controller) ClosePreview() {
	if c.preview != nil {
		c.revoke(c.preview.URL)
	}
	c.preview = nil
}

func (c *Controller) revoke(url string) {
	if url != "" && c.blobs != nil {
		c.blobs.Revoke(url)
	}
}

// Settle applies a finished operation to this screen
func (c *Controller) Settle(out Outcome) (string, bool) {
	return Settle(out, c.cache, c.Coord)
}

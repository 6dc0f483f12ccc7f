package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// Message types for tea.Cmd communication
type bucketsLoadedMsg struct {
	buckets []storage.BucketInfo
	err     error
}

type bucketChosenMsg struct {
	bucket storage.BucketInfo
}

type leaveBucketMsg struct{}

type listingLoadedMsg struct {
	key     browser.ListingKey
	gen     uint64
	entries []browser.Entry
	err     error
}

type previewLoadedMsg struct {
	preview browser.Preview
	err     error
}

type operationDoneMsg struct {
	outcome browser.Outcome
}

// session carries what every command needs: the backend and a timeout
type session struct {
	backend storage.Backend
	blobs   *browser.BlobStore
	timeout time.Duration
}

func (s session) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s session) loadBuckets() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		buckets, err := s.backend.ListBuckets(ctx)
		return bucketsLoadedMsg{buckets: buckets, err: err}
	}
}

func (s session) loadListing(key browser.ListingKey, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		entries, err := browser.Fetch(ctx, s.backend, key)
		return listingLoadedMsg{key: key, gen: gen, entries: entries, err: err}
	}
}

func (s session) loadPreview(bucket, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		p, err := browser.LoadPreview(ctx, s.backend, s.blobs, bucket, key)
		if err != nil {
			p = browser.Preview{Kind: browser.Classify(key), Key: key}
		}
		return previewLoadedMsg{preview: p, err: err}
	}
}

// run executes one orchestrator operation off the event loop. Transfers
// can be long so they get no timeout beyond the backend's own.
func (s session) run(op func(ctx context.Context) browser.Outcome) tea.Cmd {
	return func() tea.Msg {
		return operationDoneMsg{outcome: op(context.Background())}
	}
}

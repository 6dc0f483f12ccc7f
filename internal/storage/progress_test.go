package storage

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (l *progressLog) record(name string, done, total int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, [2]int64{done, total})
}

func TestTrackProgressWithoutCallback(t *testing.T) {
	r := strings.NewReader("abc")
	assert.Same(t, r, TrackProgress(context.Background(), r, "a.txt", 3))
}

func TestTrackProgressReportsAtEOF(t *testing.T) {
	log := &progressLog{}
	ctx := WithProgress(context.Background(), log.record)

	r := TrackProgress(ctx, strings.NewReader("hello world"), "a.txt", 11)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	require.NotEmpty(t, log.calls)
	assert.Equal(t, [2]int64{11, 11}, log.calls[len(log.calls)-1])
}

func TestProgressReaderSeekRewinds(t *testing.T) {
	log := &progressLog{}
	ctx := WithProgress(context.Background(), log.record)

	r := TrackProgress(ctx, strings.NewReader("hello"), "a.txt", 5)
	_, err := io.ReadAll(r)
	require.NoError(t, err)

	seeker, ok := r.(io.Seeker)
	require.True(t, ok)
	pos, err := seeker.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
	assert.Equal(t, int64(0), r.(*ProgressReader).read)
}

func TestProgressReaderSeekUnsupported(t *testing.T) {
	ctx := WithProgress(context.Background(), func(string, int64, int64) {})
	r := TrackProgress(ctx, io.MultiReader(strings.NewReader("x")), "a.txt", 1)
	_, err := r.(io.Seeker).Seek(0, io.SeekStart)
	assert.Error(t, err)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ProgressFunc receives the bytes moved so far by one transfer. total is
// zero when the size is not known up front. Parallel transfers call it
// from several goroutines.
type ProgressFunc func(name string, done, total int64)

const progressInterval = 200 * time.Millisecond

type progressKey struct{}

// WithProgress returns a context whose transfers report to fn
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return fn
}

// ProgressReader wraps a transfer body and reports how much of it was read
type ProgressReader struct {
	reader io.Reader
	name   string
	total  int64
	read   int64
	report ProgressFunc
	last   time.Time
}

// TrackProgress wraps r when ctx carries a ProgressFunc and returns r
// untouched otherwise.
func TrackProgress(ctx context.Context, r io.Reader, name string, total int64) io.Reader {
	fn := progressFrom(ctx)
	if fn == nil {
		return r
	}
	return &ProgressReader{reader: r, name: name, total: total, report: fn}
}

// Read reports at most every progressInterval and always at EOF
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)

	now := time.Now()
	if err == io.EOF || (n > 0 && now.Sub(pr.last) >= progressInterval) {
		pr.report(pr.name, pr.read, pr.total)
		pr.last = now
	}
	return n, err
}

// Seek lets the SDK rewind the body on a retry
func (pr *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := pr.reader.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("underlying reader does not support seeking")
	}
	pos, err := seeker.Seek(offset, whence)
	if err == nil {
		pr.read = pos
	}
	return pos, err
}

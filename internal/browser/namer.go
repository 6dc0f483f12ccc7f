package browser

import (
	"context"
	"fmt"
	"strings"
)

// maxNameAttempts bounds the candidate search so a misbehaving Exists
// cannot spin forever.
const maxNameAttempts = 10_000

// ExistenceChecker answers whether a local path is taken
type ExistenceChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
	Join(elem ...string) string
}

// SplitExtension splits name at its last dot. A name whose only dot is the
// first character (".bashrc") has no extension.
func SplitExtension(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// Candidate returns the n-th candidate name: base+ext for n == 0, else
// base(n)+ext.
func Candidate(base, ext string, n int) string {
	if n == 0 {
		return base + ext
	}
	return fmt.Sprintf("%s(%d)%s", base, n, ext)
}

// UniqueName returns the first candidate for name inside dir that does not
// exist yet, checking one candidate at a time. The returned path is joined
// with dir.
func UniqueName(ctx context.Context, fs ExistenceChecker, dir, name string) (string, error) {
	base, ext := SplitExtension(name)
	for n := 0; n < maxNameAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path := fs.Join(dir, Candidate(base, ext, n))
		exists, err := fs.Exists(ctx, path)
		if err != nil {
			return "", &LocalIOError{Op: "check path", Path: path, Err: err}
		}
		if !exists {
			return path, nil
		}
	}
	return "", &LocalIOError{Op: "pick name", Path: fs.Join(dir, name), Err: errNoFreeName}
}

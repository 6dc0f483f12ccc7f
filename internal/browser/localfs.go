package browser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
)

// LocalFS is the local filesystem as seen by downloads and uploads
type LocalFS interface {
	Exists(ctx context.Context, path string) (bool, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Join(elem ...string) string
	Base(path string) string
}

// OSFS is LocalFS on the real filesystem
type OSFS struct{}

func (OSFS) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFile creates parent directories as needed
func (OSFS) WriteFile(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (OSFS) Join(elem ...string) string { return filepath.Join(elem...) }

func (OSFS) Base(path string) string { return filepath.Base(path) }

// ExpandPath resolves a leading "~" to the home directory
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// PickFiles turns a whitespace or comma separated list of paths and globs
// into regular files. Directories are skipped. An empty result is a
// ValidationError.
func PickFiles(input string) ([]string, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\t' || r == ' '
	})

	seen := make(map[string]bool)
	var files []string
	for _, field := range fields {
		pattern := ExpandPath(field)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, &ValidationError{Op: "pick files", Err: err}
		}
		if matches == nil {
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, &LocalIOError{Op: "stat", Path: m, Err: err}
			}
			if info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, &ValidationError{Op: "pick files", Err: ErrNothingSelected}
	}
	return files, nil
}

// PickDirectory validates a download target directory, creating it when missing
func PickDirectory(input string) (string, error) {
	dir := ExpandPath(input)
	if dir == "" {
		return "", &ValidationError{Op: "pick directory", Err: ErrNoDirectory}
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", &ValidationError{Op: "pick directory", Err: errors.New(dir + " is not a directory")}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &LocalIOError{Op: "create directory", Path: dir, Err: err}
		}
	case err != nil:
		return "", &LocalIOError{Op: "stat", Path: dir, Err: err}
	}
	return dir, nil
}

// Clipboard receives shareable URLs
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := OSFS{}

	target := fs.Join(dir, "nested", "out.txt")
	exists, err := fs.Exists(ctx, target)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.WriteFile(ctx, target, []byte("hi")))
	exists, err = fs.Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "out.txt", fs.Base(target))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), ExpandPath("~/Downloads"))
	assert.Equal(t, home, ExpandPath(" ~ "))
	assert.Equal(t, "/tmp/x", ExpandPath("/tmp/x"))
}

func TestPickFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	files, err := PickFiles(filepath.Join(dir, "*.txt") + ", " + filepath.Join(dir, "c.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.md"),
	}, files)

	_, err = PickFiles("   ")
	assert.True(t, IsValidation(err))

	_, err = PickFiles(filepath.Join(dir, "missing.bin"))
	var lio *LocalIOError
	assert.ErrorAs(t, err, &lio)
}

func TestPickDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	got, err := PickDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = PickDirectory("")
	assert.True(t, IsValidation(err))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = PickDirectory(file)
	assert.True(t, IsValidation(err))
}

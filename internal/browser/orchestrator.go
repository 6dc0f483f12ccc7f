package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// Op names a mutation or transfer
type Op int

const (
	OpUpload Op = iota
	OpDownload
	OpDownloadMany
	OpDownloadFolder
	OpDeleteObjects
	OpDeleteFolder
	OpCreateFolder
	OpMove
	OpShareURL
)

var opNames = map[Op]string{
	OpUpload:         "upload files",
	OpDownload:       "download file",
	OpDownloadMany:   "download files",
	OpDownloadFolder: "download folder",
	OpDeleteObjects:  "delete files",
	OpDeleteFolder:   "delete folder",
	OpCreateFolder:   "create folder",
	OpMove:           "move files",
	OpShareURL:       "copy URL",
}

func (o Op) String() string { return opNames[o] }

// Outcome is what an operation reports back to the event loop. Operations
// run off the loop and never touch shared state; Settle applies the outcome.
type Outcome struct {
	Op Op

	// Invalidate lists the listings the operation changed
	Invalidate []ListingKey

	ClearSelection bool
	CloseDialog    bool

	// Paths are the local files written by a download
	Paths []string

	URL    string
	Notice string
	Err    error
}

// Failed reports whether the operation failed after passing validation
func (o Outcome) Failed() bool { return o.Err != nil && !IsValidation(o.Err) }

// Skipped reports whether the operation was aborted before reaching the backend
func (o Outcome) Skipped() bool { return IsValidation(o.Err) }

// Orchestrator runs every browser mutation through the same contract:
// validate locally, call the backend once, report an Outcome.
type Orchestrator struct {
	backend   storage.Backend
	fs        LocalFS
	clipboard Clipboard
	progress  storage.ProgressFunc
}

func NewOrchestrator(backend storage.Backend, fs LocalFS, clipboard Clipboard) *Orchestrator {
	if fs == nil {
		fs = OSFS{}
	}
	if clipboard == nil {
		clipboard = SystemClipboard{}
	}
	return &Orchestrator{backend: backend, fs: fs, clipboard: clipboard}
}

// WithProgress makes uploads and downloads report transferred bytes to fn
func (o *Orchestrator) WithProgress(fn storage.ProgressFunc) *Orchestrator {
	o.progress = fn
	return o
}

// transfer is the context a byte-moving backend call runs under
func (o *Orchestrator) transfer(ctx context.Context) context.Context {
	return storage.WithProgress(ctx, o.progress)
}

func invalid(op Op, err error) Outcome {
	return Outcome{Op: op, Err: &ValidationError{Op: op.String(), Err: err}}
}

func failed(op Op, err error) Outcome {
	var lio *LocalIOError
	if errors.As(err, &lio) {
		return Outcome{Op: op, Err: err}
	}
	return Outcome{Op: op, Err: &BackendError{Op: op.String(), Err: err}}
}

// Upload stores localPaths under the listing's prefix
func (o *Orchestrator) Upload(ctx context.Context, at ListingKey, localPaths []string) Outcome {
	if len(localPaths) == 0 {
		return invalid(OpUpload, ErrNothingSelected)
	}
	if err := o.backend.UploadObjects(o.transfer(ctx), at.Bucket, at.Prefix, localPaths); err != nil {
		return failed(OpUpload, err)
	}
	return Outcome{
		Op:         OpUpload,
		Invalidate: []ListingKey{at},
		Notice:     fmt.Sprintf("Uploaded %d file(s)", len(localPaths)),
	}
}

// Download saves one object into dir under a free name
func (o *Orchestrator) Download(ctx context.Context, at ListingKey, key, dir string) Outcome {
	if key == "" || IsFolderKey(key) {
		return invalid(OpDownload, ErrNothingSelected)
	}
	if dir == "" {
		return invalid(OpDownload, ErrNoDirectory)
	}
	data, err := o.backend.DownloadObject(o.transfer(ctx), at.Bucket, key)
	if err != nil {
		return failed(OpDownload, err)
	}
	path, err := o.save(ctx, dir, BaseOf(key), data)
	if err != nil {
		return failed(OpDownload, err)
	}
	return Outcome{
		Op:     OpDownload,
		Paths:  []string{path},
		Notice: "Downloaded " + o.fs.Base(path),
	}
}

// DownloadMany fetches keys in one backend call and writes them one at a
// time, each under its own free name.
func (o *Orchestrator) DownloadMany(ctx context.Context, at ListingKey, keys []string, dir string) Outcome {
	if len(keys) == 0 {
		return invalid(OpDownloadMany, ErrNothingSelected)
	}
	if dir == "" {
		return invalid(OpDownloadMany, ErrNoDirectory)
	}
	objects, err := o.backend.DownloadObjects(o.transfer(ctx), at.Bucket, keys)
	if err != nil {
		return failed(OpDownloadMany, err)
	}

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		path, err := o.save(ctx, dir, BaseOf(obj.Key), obj.Data)
		if err != nil {
			out := failed(OpDownloadMany, err)
			out.Paths = paths
			return out
		}
		paths = append(paths, path)
	}
	return Outcome{
		Op:     OpDownloadMany,
		Paths:  paths,
		Notice: fmt.Sprintf("Downloaded %d file(s)", len(paths)),
	}
}

// DownloadFolder saves prefix as a zip archive named after the folder
func (o *Orchestrator) DownloadFolder(ctx context.Context, at ListingKey, prefix, dir string) Outcome {
	if strings.Trim(prefix, "/") == "" {
		return invalid(OpDownloadFolder, storage.ErrRootFolder)
	}
	if dir == "" {
		return invalid(OpDownloadFolder, ErrNoDirectory)
	}
	data, err := o.backend.DownloadFolder(o.transfer(ctx), at.Bucket, at.Region, prefix)
	if err != nil {
		return failed(OpDownloadFolder, err)
	}
	path, err := o.save(ctx, dir, storage.ArchiveName(prefix), data)
	if err != nil {
		return failed(OpDownloadFolder, err)
	}
	return Outcome{
		Op:     OpDownloadFolder,
		Paths:  []string{path},
		Notice: "Downloaded " + o.fs.Base(path),
	}
}

func (o *Orchestrator) save(ctx context.Context, dir, name string, data []byte) (string, error) {
	path, err := UniqueName(ctx, o.fs, dir, name)
	if err != nil {
		return "", err
	}
	if err := o.fs.WriteFile(ctx, path, data); err != nil {
		return "", &LocalIOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// DeleteObjects removes keys and clears the selection on success
func (o *Orchestrator) DeleteObjects(ctx context.Context, at ListingKey, keys []string) Outcome {
	if len(keys) == 0 {
		return invalid(OpDeleteObjects, ErrNothingSelected)
	}
	if err := o.backend.DeleteObjects(ctx, at.Bucket, keys); err != nil {
		return failed(OpDeleteObjects, err)
	}
	return Outcome{
		Op:             OpDeleteObjects,
		Invalidate:     touched(at, keys),
		ClearSelection: true,
		CloseDialog:    true,
		Notice:         fmt.Sprintf("Deleted %d file(s)", len(keys)),
	}
}

// DeleteFolder removes prefix recursively. The selection is left alone.
func (o *Orchestrator) DeleteFolder(ctx context.Context, at ListingKey, prefix string) Outcome {
	if strings.Trim(prefix, "/") == "" {
		return invalid(OpDeleteFolder, storage.ErrRootFolder)
	}
	if err := o.backend.DeleteFolder(ctx, at.Bucket, at.Region, prefix); err != nil {
		return failed(OpDeleteFolder, err)
	}
	return Outcome{
		Op:          OpDeleteFolder,
		Invalidate:  []ListingKey{at},
		CloseDialog: true,
		Notice:      "Deleted folder " + EntryLabel(prefix, at.Prefix),
	}
}

// CreateFolder creates name under the listing's prefix. existing is the
// current listing, used to reject a folder that is already there.
func (o *Orchestrator) CreateFolder(ctx context.Context, at ListingKey, name string, existing []Entry) Outcome {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return invalid(OpCreateFolder, ErrEmptyFolderName)
	}
	for _, e := range existing {
		if e.IsFolder && e.Label == name {
			return invalid(OpCreateFolder, ErrFolderExists)
		}
	}
	if err := o.backend.CreateFolder(ctx, at.Bucket, at.Prefix+name+"/"); err != nil {
		return failed(OpCreateFolder, err)
	}
	return Outcome{
		Op:         OpCreateFolder,
		Invalidate: []ListingKey{at},
		Notice:     "Created folder " + name,
	}
}

// Move relocates keys into destination, keeping their base names
func (o *Orchestrator) Move(ctx context.Context, at ListingKey, keys []string, destination string) Outcome {
	if len(keys) == 0 {
		return invalid(OpMove, ErrNothingSelected)
	}
	if err := o.backend.MoveObjects(ctx, at.Bucket, keys, destination); err != nil {
		return failed(OpMove, err)
	}
	dest := at
	dest.Prefix = Join(Segments(destination))
	return Outcome{
		Op:             OpMove,
		Invalidate:     appendKey(touched(at, keys), dest),
		ClearSelection: true,
		CloseDialog:    true,
		Notice:         fmt.Sprintf("Moved %d file(s)", len(keys)),
	}
}

// touched lists at followed by the listing holding each key. A selection
// can span folders, so every one of them is stale after a delete or move.
func touched(at ListingKey, keys []string) []ListingKey {
	out := []ListingKey{at}
	for _, k := range keys {
		parent := at
		parent.Prefix = Parent(k)
		out = appendKey(out, parent)
	}
	return out
}

func appendKey(keys []ListingKey, key ListingKey) []ListingKey {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// ShareURL resolves a URL for key and copies it to the clipboard
func (o *Orchestrator) ShareURL(ctx context.Context, at ListingKey, key string) Outcome {
	if key == "" || IsFolderKey(key) {
		return invalid(OpShareURL, ErrNothingSelected)
	}
	u, err := o.backend.ObjectURL(ctx, at.Bucket, at.Region, key)
	if err != nil {
		return failed(OpShareURL, err)
	}
	if err := o.clipboard.WriteAll(u); err != nil {
		return failed(OpShareURL, &LocalIOError{Op: "copy to clipboard", Err: err})
	}
	return Outcome{
		Op:     OpShareURL,
		URL:    u,
		Notice: "URL copied to clipboard",
	}
}

// Settle applies an outcome on the event loop and returns the notice to
// show. Skipped operations change nothing and show nothing; failed ones
// are logged and leave local state as it was.
func Settle(out Outcome, cache *Cache, coord *Coordinator) (notice string, isErr bool) {
	if out.Skipped() {
		logrus.Debugf("%s skipped: %v", out.Op, out.Err)
		return "", false
	}
	if out.Failed() {
		logrus.WithError(out.Err).WithField("op", out.Op.String()).Error("operation failed")
		return "Failed to " + out.Op.String(), true
	}

	for _, key := range out.Invalidate {
		cache.Invalidate(key)
	}
	if coord != nil {
		if out.ClearSelection && !coord.Dialog().Target {
			coord.Selection.Clear()
		}
		if out.CloseDialog {
			coord.Close()
		}
	}
	return out.Notice, false
}

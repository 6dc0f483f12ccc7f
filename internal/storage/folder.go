package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ObjectLister is the listing half of a Backend
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket, region, prefix string) ([]ObjectInfo, error)
}

// ObjectGetter is the download half of a Backend
type ObjectGetter interface {
	DownloadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// CollectFolderKeys walks prefix depth-first using delimiter listings and
// returns every key below it. Sub-folder markers are included, and the
// marker of prefix itself is always present so empty folders are removable.
func CollectFolderKeys(ctx context.Context, lister ObjectLister, bucket, region, prefix string) ([]string, error) {
	if prefix == "" || prefix == "/" {
		return nil, Wrap(ErrKindInvalidInput, "collect folder keys", prefix, ErrRootFolder)
	}
	root := FolderPrefix(prefix)

	var keys []string
	seenKeys := map[string]bool{}
	visited := map[string]bool{}
	pending := []string{root}
	depth := 0

	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		depth++
		if depth > maxFolderDepth {
			return nil, Wrap(ErrKindInvalidInput, "collect folder keys", root,
				fmt.Errorf("folder structure deeper than %d levels", maxFolderDepth))
		}
		if len(keys) > MaxFolderObjects {
			return nil, Wrap(ErrKindInvalidInput, "collect folder keys", root, ErrTooManyObjects)
		}

		objects, err := lister.ListObjects(ctx, bucket, region, current)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			if !strings.HasPrefix(obj.Key, root) || seenKeys[obj.Key] {
				continue
			}
			seenKeys[obj.Key] = true
			keys = append(keys, obj.Key)
			if obj.IsFolder {
				pending = append(pending, obj.Key)
			}
		}
	}

	if !seenKeys[root] {
		keys = append(keys, root)
	}

	logrus.Debugf("CollectFolderKeys: %d keys under %s", len(keys), root)
	return keys, nil
}

// FetchAll downloads keys concurrently and returns them in input order
func FetchAll(ctx context.Context, getter ObjectGetter, bucket string, keys []string) ([]DownloadedObject, error) {
	results := make([]DownloadedObject, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			data, err := getter.DownloadObject(gctx, bucket, key)
			if err != nil {
				return err
			}
			results[i] = DownloadedObject{Key: key, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FolderFiles lists every file below prefix, recursively, skipping markers
func FolderFiles(ctx context.Context, lister ObjectLister, bucket, region, prefix string) ([]string, error) {
	keys, err := CollectFolderKeys(ctx, lister, bucket, region, prefix)
	if err != nil {
		return nil, err
	}
	files := keys[:0:0]
	for _, key := range keys {
		if !strings.HasSuffix(key, "/") {
			files = append(files, key)
		}
	}
	return files, nil
}

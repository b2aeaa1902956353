package store

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/gantry/internal/errors"
)

// watchDebounce absorbs the burst of events editors produce for one save.
const watchDebounce = 50 * time.Millisecond

// Watch calls onChange with the id of every project whose file is written,
// created or renamed into place, until ctx is done. Events for one project
// within watchDebounce are coalesced. Lock and temp files are ignored.
func (s *FileStore) Watch(ctx context.Context, onChange func(projectID string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewStoreError("create watcher", err).WithPath(s.dir)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dir); err != nil {
		return errors.NewStoreError("watch data directory", err).WithPath(s.dir)
	}

	debounce := time.NewTimer(0)
	<-debounce.C
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			id, ok := projectOf(event.Name)
			if !ok {
				continue
			}
			pending[id] = struct{}{}
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			for id := range pending {
				onChange(id)
			}
			clear(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.NewStoreError("watch data directory", err).WithPath(s.dir)
		}
	}
}

// projectOf maps a file name in the data directory to its project id.
func projectOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != projectExt {
		return "", false
	}
	return strings.TrimSuffix(base, projectExt), true
}

package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long Watch waits after the last change before
// re-importing. Editors often write a file in several steps.
const DefaultSettle = 200 * time.Millisecond

// Watch imports path once, then again whenever the OBJ file or a material
// library next to it changes, until ctx is done. Every import outcome is
// passed to fn. Watch returns nil when ctx ends.
func (im *Importer) Watch(ctx context.Context, path string, settle time.Duration, fn func(*Result, error)) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory; editors often replace files by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	fn(im.ImportFile(path))

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !watched(path, e.Name) {
				continue
			}
			im.log.Debug("source changed", zap.String("file", e.Name), zap.Stringer("op", e.Op))
			timer.Reset(settle)

		case <-timer.C:
			fn(im.ImportFile(path))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.log.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

// watched reports whether a change to name should trigger a re-import.
func watched(path, name string) bool {
	name = filepath.Clean(name)
	return name == path || strings.EqualFold(filepath.Ext(name), ".mtl")
}

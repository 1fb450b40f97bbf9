// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/base/logger"

	"github.com/fsnotify/fsnotify"
)

// watchReadyHook is called when Watch started watching, used in tests.
var watchReadyHook func()

// Watch calls rebuild each time a Go source file, go.mod or release.toml
// under dir changes, until ctx is done. Bursts of changes cause a single
// rebuild.
func Watch(ctx context.Context, dir, dist string, rebuild func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if dir, err = filepath.Abs(dir); err != nil {
		return err
	}
	if dist, err = filepath.Abs(dist); err != nil {
		return err
	}
	if err := watchRecursive(watcher, dir, dist); err != nil {
		return err
	}

	// It's better to have a bit of delay, so that we don't start building
	// on each save of an editor that writes several files.
	debouncer := newDebouncer(250*time.Millisecond, rebuild)
	defer debouncer.Stop()

	logger.Info(ctx, "started watching for new changes", slog.String("dir", dir))
	if watchReadyHook != nil {
		watchReadyHook()
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Build recreates dist, which must not trigger another build.
			if within(event.Name, dist) || !shouldRebuild(event.Name, event.Op) {
				continue
			}
			// New directories must be watched too.
			if event.Op&fsnotify.Create != 0 {
				if err := watchRecursive(watcher, event.Name, dist); err != nil {
					logger.Error(ctx, "failed to watch new path", slog.String("name", event.Name), slog.Any("err", err))
				}
			}
			logger.Info(ctx, "detected change, scheduling build",
				slog.String("name", event.Name),
				slog.Any("op", event.Op),
			)
			debouncer.Do()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(ctx, "watcher error", slog.Any("err", err))
		case <-ctx.Done():
			return nil
		}
	}
}

func watchRecursive(w *fsnotify.Watcher, dir, skip string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path == skip || (path != dir && (strings.HasPrefix(name, ".") || name == "testdata" || strings.HasPrefix(name, "_"))) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// within reports whether path is dir or lies under it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Adapted from
// https://github.com/brandur/modulir/blob/1ff912fdc45a79cb4d8d9f199d213ae9c3598cbd/watch.go#L201.
func shouldRebuild(path string, op fsnotify.Op) bool {
	base := filepath.Base(path)

	// Vim creates this temporary file to see whether it can write into a target
	// directory. It screws up our watching algorithm, so ignore it.
	if base == "4913" {
		return false
	}

	// A special case, but ignore creates on files that look like Vim backups.
	if strings.HasSuffix(base, "~") {
		return false
	}

	// Only sources and build configuration affect artifacts. Directories are
	// let through so that new ones get watched.
	if ext := filepath.Ext(base); ext != "" && ext != ".go" && base != "go.mod" && base != "go.sum" && base != "release.toml" {
		return false
	}
	if filepath.Ext(base) == "" && op&fsnotify.Create == 0 {
		return false
	}

	if op&fsnotify.Create != 0 {
		return true
	}

	if op&fsnotify.Remove != 0 {
		return true
	}

	if op&fsnotify.Write != 0 {
		return true
	}

	// chmod doesn't change build output, and rename produces a following
	// create event as well.
	return false
}

// debouncer delays execution of a function until a specified duration has
// passed without any new events.
type debouncer struct {
	d  time.Duration
	mu sync.Mutex
	f  func()
	t  *time.Timer
}

// newDebouncer creates a new debouncer.
func newDebouncer(d time.Duration, f func()) *debouncer {
	return &debouncer{
		d: d,
		f: f,
	}
}

// Do schedules a function to be executed.
func (d *debouncer) Do() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t != nil {
		d.t.Stop()
	}

	d.t = time.AfterFunc(d.d, d.f)
}

// Stop cancels a pending execution.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t != nil {
		d.t.Stop()
	}
}

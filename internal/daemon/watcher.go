package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pradyumna2905/quill/internal/logfields"
)

// sourceWatcher monitors the content tree and emits debounced rebuild
// triggers. Rapid bursts of events (editor save, git checkout) collapse into
// a single rebuild.
type sourceWatcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	trigger  chan<- string
}

func newSourceWatcher(root string, debounce time.Duration, trigger chan<- string) (*sourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &sourceWatcher{
		root:     root,
		debounce: debounce,
		watcher:  watcher,
		trigger:  trigger,
	}
	if err := sw.addRecursive(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return sw, nil
}

// addRecursive watches root and every non-hidden subdirectory. fsnotify has
// no recursive mode, so each directory is added individually.
func (sw *sourceWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return sw.watcher.Add(path)
	})
}

func (sw *sourceWatcher) Close() error { return sw.watcher.Close() }

// Watch runs until ctx is canceled, firing one trigger per quiet period.
func (sw *sourceWatcher) Watch(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			// Newly created directories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = sw.addRecursive(event.Name)
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(sw.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(sw.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case sw.trigger <- "source-change":
			default:
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Source watcher error", logfields.Error(err))
		}
	}
}

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/persway/persway/internal/util"
)

const debounceWindow = 250 * time.Millisecond

// Watcher reports edits to the configuration file. The running daemon never
// applies them; it only tells the user that a restart is needed.
type Watcher struct {
	path    string
	loaded  []byte
	logger  *util.Logger
	watcher *fsnotify.Watcher
	notify  func(diff string)
}

// NewWatcher watches path, comparing future contents against loaded.
func NewWatcher(path string, loaded []byte, logger *util.Logger) (*Watcher, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := fw.Add(filepath.Dir(full)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	w := &Watcher{
		path:    full,
		loaded:  append([]byte(nil), loaded...),
		logger:  logger,
		watcher: fw,
	}
	w.notify = w.logChange
	return w, nil
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.check()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) check() {
	current, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		w.logger.Warnf("config watcher: read %s: %v", w.path, err)
		return
	}
	diff := DiffSerialized(w.loaded, current)
	if diff == "" {
		return
	}
	w.notify(diff)
}

func (w *Watcher) logChange(diff string) {
	w.logger.Warnf("config %s changed on disk; restart persway to apply (-running +disk):\n%s", w.path, diff)
}

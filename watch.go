package main

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle time after the last change event before a re-run
const watchSettle = 150 * time.Millisecond

var errWatchClosed = errors.New("watcher closed")

// watcher reports changes to a fixed set of files. Directories are
// watched rather than the files themselves so that editors replacing a
// file by rename are still seen.
type watcher struct {
	w     *fsnotify.Watcher
	files map[string]bool
}

func newWatcher(paths ...string) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wt := &watcher{w: w, files: make(map[string]bool)}
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		wt.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return wt, nil
}

func (wt *watcher) Close() error {
	return wt.w.Close()
}

// relevant filters events to writes, creates and renames of watched files.
func (wt *watcher) relevant(ev fsnotify.Event) bool {
	if !wt.files[filepath.Clean(ev.Name)] {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// loop calls changed once per burst of events on the watched files and
// tick at every interval in between. It returns when the watcher fails.
func (wt *watcher) loop(interval time.Duration, changed func(name string), tick func(now time.Time)) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var settle <-chan time.Time
	var pending string
	for {
		select {
		case ev, ok := <-wt.w.Events:
			if !ok {
				return errWatchClosed
			}
			if wt.relevant(ev) {
				pending = ev.Name
				settle = time.After(watchSettle)
			}
		case err, ok := <-wt.w.Errors:
			if !ok {
				return errWatchClosed
			}
			plog(LOG_WARNING, "file watch error", map[string]any{"error": err.Error()})
		case <-settle:
			settle = nil
			changed(pending)
		case now := <-ticker.C:
			tick(now)
		}
	}
}

package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/markdingo/autozone/log"
)

// watcher turns file system events on the configuration and zone files into debounced
// reload triggers. Directories are watched rather than files so that editors which
// replace a file by renaming over it are still noticed.
type watcher struct {
	fsw     *fsnotify.Watcher
	delay   time.Duration
	changed chan string // Name of the last file to change before the quiet period

	mu    sync.Mutex // Protects files and dirs
	files map[string]struct{}
	dirs  map[string]struct{}
}

func newWatcher(delay time.Duration) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &watcher{
		fsw:     fsw,
		delay:   delay,
		changed: make(chan string, 1),
		files:   make(map[string]struct{}),
		dirs:    make(map[string]struct{}),
	}, nil
}

// track replaces the set of files of interest. Directories no longer needed are dropped.
// Every path is attempted and the first error is returned.
func (t *watcher) track(paths []string) error {
	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		p = filepath.Clean(p)
		files[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for dir := range t.dirs {
		if _, ok := dirs[dir]; !ok {
			t.fsw.Remove(dir)
			delete(t.dirs, dir)
		}
	}
	for dir := range dirs {
		if _, ok := t.dirs[dir]; ok {
			continue
		}
		if err := t.fsw.Add(dir); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		t.dirs[dir] = struct{}{}
		log.Debugf("Watching %s", dir)
	}
	t.files = files

	return firstErr
}

func (t *watcher) interesting(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	t.mu.Lock()
	_, ok := t.files[filepath.Clean(ev.Name)]
	t.mu.Unlock()

	return ok
}

// run consumes events until done is closed. A burst of events produces a single
// notification on Changed once no event has arrived for the delay period.
func (t *watcher) run(done <-chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time
	var last string
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-done:
			return

		case ev, ok := <-t.fsw.Events:
			if !ok {
				return
			}
			if !t.interesting(ev) {
				continue
			}
			last = ev.Name
			if timer == nil {
				timer = time.NewTimer(t.delay)
			} else {
				timer.Reset(t.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case t.changed <- last:
			default: // A reload is already pending
			}

		case err, ok := <-t.fsw.Errors:
			if !ok {
				return
			}
			log.Warningf("Watcher: %s", err)
		}
	}
}

// Changed delivers the name of a modified file once its burst of events has settled.
func (t *watcher) Changed() <-chan string {
	return t.changed
}

func (t *watcher) close() error {
	return t.fsw.Close()
}

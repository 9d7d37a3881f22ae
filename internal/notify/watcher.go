// Package notify provides filesystem-driven reload notifications.
package notify

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// LexiconWatcher watches a lexicon file and dispatches a reload callback
// when it changes. The callback receives the lexicon path; reload errors
// are the callback's responsibility.
type LexiconWatcher struct {
	path     string
	callback func(path string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewLexiconWatcher creates a watcher for the given lexicon file.
func NewLexiconWatcher(path string, callback func(path string)) *LexiconWatcher {
	return &LexiconWatcher{
		path:     path,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself, so editors that replace the file (write to temp, rename over)
// still trigger a reload. Call Stop() to clean up.
func (lw *LexiconWatcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(lw.path)); err != nil {
		_ = w.Close()
		return err
	}
	lw.watcher = w

	go lw.loop()
	log.Printf("notify: watching %s for lexicon changes", lw.path)
	return nil
}

// Stop shuts down the watcher.
func (lw *LexiconWatcher) Stop() {
	if lw.watcher != nil {
		_ = lw.watcher.Close()
	}
	<-lw.done
}

func (lw *LexiconWatcher) loop() {
	defer close(lw.done)
	for {
		select {
		case evt, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(evt.Name) != filepath.Clean(lw.path) {
				continue
			}
			if lw.callback != nil {
				lw.callback(lw.path)
			}
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("notify: watcher error: %v", err)
		}
	}
}

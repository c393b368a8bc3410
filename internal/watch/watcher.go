// Package watch monitors the tag sidecar file for external changes so
// an open document can pick up tags written by another process.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pagetag/internal/log"
)

// SidecarChange is delivered when the watched sidecar file is written,
// created or replaced.
type SidecarChange struct {
	Path      string
	Timestamp time.Time
	Op        fsnotify.Op
	Removed   bool
}

// Watcher monitors a single sidecar file via its parent directory.
// Watching the directory instead of the file survives the atomic
// rename that sidecar saves perform.
type Watcher struct {
	sidecarPath string

	changeChan chan SidecarChange
	stopChan   chan struct{}
	fsWatcher  *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
}

// New creates a watcher for the given sidecar path. The parent
// directory must exist; the sidecar itself may not yet.
func New(sidecarPath string) (*Watcher, error) {
	dir := filepath.Dir(sidecarPath)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.LogWithFields(log.F("sidecar", sidecarPath), "Watching sidecar")
	return &Watcher{
		sidecarPath: sidecarPath,
		changeChan:  make(chan SidecarChange, 10),
		stopChan:    make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// Changes returns the channel that delivers sidecar change events.
func (w *Watcher) Changes() <-chan SidecarChange {
	return w.changeChan
}

// Path returns the watched sidecar path.
func (w *Watcher) Path() string { return w.sidecarPath }

// Start begins delivering change events.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	w.stopChan = make(chan struct{})

	go func() {
		log.Debugf("Sidecar watcher loop started for %s", w.sidecarPath)

		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.sidecarPath) {
					continue
				}

				change := SidecarChange{
					Path:      w.sidecarPath,
					Timestamp: time.Now(),
					Op:        event.Op,
				}
				switch {
				case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
					// Our own saves rename a temp file over the sidecar;
					// only report a removal if the file is really gone.
					if _, err := os.Stat(w.sidecarPath); err == nil {
						continue
					}
					change.Removed = true
				case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
					// fall through with Removed false
				default:
					continue
				}

				select {
				case w.changeChan <- change:
				default:
					log.Warnf("Sidecar event channel full, dropped event for %s", w.sidecarPath)
				}

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.Errorf("fsnotify watcher error: %v", err)

			case <-w.stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop halts event delivery and closes the change channel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.Errorf("Error closing fsnotify watcher: %v", err)
	}
	w.running = false
	close(w.changeChan)
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

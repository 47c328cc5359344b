package am

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/logger"
)

// DefaultDebouncePeriod coalesces editor save bursts into one reload
const DefaultDebouncePeriod = 300 * time.Millisecond

// ReloadCallback is called after a debounced change to any watched file
type ReloadCallback func(changed string) error

// FileWatcher watches a set of files (am.toml, scenario files) and runs
// callbacks once per burst of writes.
type FileWatcher struct {
	watcher        *fsnotify.Watcher
	files          map[string]bool
	callbacks      []ReloadCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
}

// NewFileWatcher creates a watcher for the given files. Parent directories are
// watched so editors that replace files on save are still seen.
func NewFileWatcher(paths ...string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	fw := &FileWatcher{
		watcher:        w,
		files:          make(map[string]bool),
		debouncePeriod: DefaultDebouncePeriod,
		done:           make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	return fw, nil
}

// SetDebounce overrides the debounce period
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debouncePeriod = d
}

// OnReload registers a callback
func (fw *FileWatcher) OnReload(callback ReloadCallback) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.callbacks = append(fw.callbacks, callback)
}

// Start begins watching in a background goroutine
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !fw.files[abs] {
				continue
			}
			logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			fw.scheduleReload(abs)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Watcher error", logger.FieldError, err)

		case <-fw.done:
			return
		}
	}
}

// scheduleReload debounces rapid file changes
func (fw *FileWatcher) scheduleReload(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, func() { fw.fire(path) })
}

func (fw *FileWatcher) fire(path string) {
	fw.mu.Lock()
	callbacks := make([]ReloadCallback, len(fw.callbacks))
	copy(callbacks, fw.callbacks)
	fw.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(path); err != nil {
			// keep calling the rest
			logger.Warnw("Reload callback error",
				logger.FieldFile, path,
				logger.FieldError, err)
		}
	}
}

// Stop stops watching
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mu.Unlock()
	close(fw.done)
	return fw.watcher.Close()
}

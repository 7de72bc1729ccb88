// Package watch reports changes to the branch store file, so a long-running
// view can redraw when another stacker invocation saves the graph.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Debounce is how long the file must stay quiet before a change is reported.
const Debounce = 100 * time.Millisecond

// Change reports that the watched file was written, replaced or removed.
type Change struct {
	Path    string
	Removed bool
}

// Watcher monitors a single file. It watches the containing directory
// because atomic saves replace the file by rename, which a file watch
// would not survive.
type Watcher struct {
	Path    string
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// New creates a watcher for path. The file need not exist yet, but its
// directory must.
func New(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 1)
	return &Watcher{
		Path:    filepath.Clean(path),
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var last time.Time
	var pending bool
	ticker := time.NewTicker(Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				last = time.Now()
				pending = true
			}

		case <-ticker.C:
			if pending && time.Since(last) >= Debounce {
				w.emit()
				pending = false
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug().Err(err).Str("path", w.Path).Msg("watch error")
		}
	}
}

// emit reports a change. Changes coalesce: if the reader has not consumed
// the previous one, the new one is dropped.
func (w *Watcher) emit() {
	_, err := os.Stat(w.Path)
	c := Change{Path: w.Path, Removed: err != nil}
	select {
	case w.changes <- c:
	default:
	}
}

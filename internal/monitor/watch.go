package monitor

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher nudges the dashboard when a usage log changes, so a fresh record
// shows up before the next scheduled tick. Purely an acceleration: the
// ticker remains the source of truth and a failed watcher only costs
// latency.
type Watcher struct {
	fw     *fsnotify.Watcher
	events chan struct{}
	logger *log.Logger
}

// NewWatcher watches the given roots and their project subdirectories.
// Roots that don't exist yet are skipped. Returns an error only when the
// underlying watcher cannot be created at all.
func NewWatcher(roots []string, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		fw:     fw,
		events: make(chan struct{}, 1),
		logger: logger,
	}

	for _, root := range roots {
		if err := fw.Add(root); err != nil {
			logger.Debug("not watching root", "root", root, "err", err)
			continue
		}
		// fsnotify is not recursive; session files live one level down in
		// per-project directories.
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				_ = fw.Add(filepath.Join(root, e.Name()))
			}
		}
	}

	go w.run()
	return w, nil
}

// Events delivers at most one pending nudge; coalesced, never blocking.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			// New project directories appear when a project is first used.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fw.Add(ev.Name)
				}
			}
			if filepath.Ext(ev.Name) == ".jsonl" || ev.Op.Has(fsnotify.Create) {
				select {
				case w.events <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("log watcher", "err", err)
		}
	}
}

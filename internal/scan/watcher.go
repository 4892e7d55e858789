package scan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// DefaultDebounce batches bursts of filesystem events (editor saves, git
// checkouts) into a single re-scan.
const DefaultDebounce = 250 * time.Millisecond

// Watcher re-scans a directory tree whenever its contents change and hands
// the fresh graph to a callback. Watches cover every subdirectory and follow
// directory creation and removal across re-scans.
type Watcher struct {
	root     string
	scanner  *Scanner
	debounce time.Duration
	logger   *log.Logger
	onChange func(nodes []*graph.Node, edges []*graph.Edge)
}

// NewWatcher creates a watcher over root. onChange runs on the watcher
// goroutine after every debounced re-scan, including the initial scan when
// Run starts.
func NewWatcher(root string, scanner *Scanner, debounce time.Duration, logger *log.Logger,
	onChange func(nodes []*graph.Node, edges []*graph.Edge)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		root:     root,
		scanner:  scanner,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
	}
}

// Run scans once, then blocks re-scanning on filesystem events until ctx is
// cancelled. It returns nil on cancellation and an error only when the
// initial scan or watch setup fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "create filesystem watcher")
	}
	defer fw.Close()

	if err := w.rescan(ctx, fw); err != nil {
		return err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			w.logger.Debug("filesystem event", "op", ev.Op.String(), "path", ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-fire:
			fire = nil
			if err := w.rescan(ctx, fw); err != nil {
				w.logger.Warn("re-scan failed", "err", err)
			}
		}
	}
}

// rescan runs a full scan, refreshes the directory watch set, and notifies
// the callback.
func (w *Watcher) rescan(ctx context.Context, fw *fsnotify.Watcher) error {
	nodes, edges, err := w.scanner.Scan(ctx, w.root)
	if err != nil {
		return err
	}

	// Re-derive the watch set from the scanned folders. Stale watches on
	// removed directories drop out on their own; fsnotify ignores duplicate
	// adds of paths already watched.
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}
		dir := filepath.Join(w.root, filepath.FromSlash(n.Path))
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.logger.Debug("cannot watch directory", "dir", dir, "err", err)
		}
	}

	w.onChange(nodes, edges)
	return nil
}

// Package watchdog is the filesystem-watch capability of spec.md §1's
// "around this core the program also exposes a watchdog": it turns raw
// filesystem state (an initial walk, then fsnotify events) into the
// domain.DirectoryBatch values the resolver pipeline consumes. Grounded
// on the fsnotify watch-and-rewalk loop in the pack's Orb ingest
// reference (cmd/ingest/main.go), adapted from "reindex one file at a
// time" to "batch one album directory at a time" per spec.md §6's
// batching rule, and debounced with a small per-directory delay so a
// burst of per-file write events collapses into one batch.
package watchdog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resolverd/internal/domain"
	"resolverd/internal/resolver"
	"resolverd/internal/shared"
)

var audioExtensions = map[string]bool{
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".alac": true,
}

// IsAudioFile reports whether path has a container extension the
// resolver supports.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanRoot walks root and returns one DirectoryBatch per album directory
// (disc subfolders collapsed into their parent via resolver.AlbumRoot),
// for an initial full scan before the watch loop takes over.
func ScanRoot(root string) ([]domain.DirectoryBatch, error) {
	byRoot := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !IsAudioFile(path) {
			return nil
		}
		albumRoot := resolver.AlbumRoot(filepath.Dir(path))
		byRoot[albumRoot] = append(byRoot[albumRoot], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	batches := make([]domain.DirectoryBatch, 0, len(byRoot))
	for dir, files := range byRoot {
		batches = append(batches, domain.DirectoryBatch{DirectoryPath: dir, Files: files})
	}
	return batches, nil
}

// Watcher emits a debounced DirectoryBatch to Batches whenever a watched
// subtree's files settle after a burst of create/write/rename events.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  shared.Logger
	debounce time.Duration

	Batches chan domain.DirectoryBatch

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher rooted at root, recursively registering every
// existing subdirectory with fsnotify, exactly as the Orb reference's
// WalkDir-then-Add setup does.
func New(root string, debounce time.Duration, logger shared.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		Batches:  make(chan domain.DirectoryBatch, 16),
		pending:  make(map[string]*time.Timer),
	}

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr == nil && d.IsDir() {
			_ = fsw.Add(path)
		}
		return nil
	})

	return w, nil
}

// Run drains fsnotify events until stop is closed. Each settled directory
// is rewalked and pushed to Batches as one DirectoryBatch.
func (w *Watcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			w.watcher.Close()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warning("watchdog: fsnotify error: %v", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	info, err := os.Stat(ev.Name)
	if err == nil && info.IsDir() {
		_ = w.watcher.Add(ev.Name)
		return
	}
	if !IsAudioFile(ev.Name) {
		return
	}

	albumRoot := resolver.AlbumRoot(filepath.Dir(ev.Name))
	w.scheduleBatch(albumRoot)
}

// scheduleBatch (re)starts a per-directory debounce timer; only the last
// event in a debounce window actually triggers a rewalk+emit.
func (w *Watcher) scheduleBatch(albumRoot string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[albumRoot]; ok {
		t.Stop()
	}
	w.pending[albumRoot] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, albumRoot)
		w.mu.Unlock()
		w.emitBatch(albumRoot)
	})
}

func (w *Watcher) emitBatch(albumRoot string) {
	var files []string
	_ = filepath.WalkDir(albumRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr == nil && !d.IsDir() && IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if len(files) == 0 {
		return
	}
	w.Batches <- domain.DirectoryBatch{DirectoryPath: albumRoot, Files: files}
}

package resolver

import (
	"path/filepath"
	"regexp"
	"sync"
)

// discSubfolderPattern matches disc-style subfolders ("Disc 1", "CD2",
// "disk 03") case-insensitively, per spec.md §4.1 stage 1.
var discSubfolderPattern = regexp.MustCompile(`(?i)(^|\s)(disc|cd|disk)\s*\d`)

// AlbumRoot returns the batch root for directoryPath: if the directory's
// base name looks like a disc subfolder, its parent is the album root;
// otherwise the directory is its own root.
func AlbumRoot(directoryPath string) string {
	base := filepath.Base(directoryPath)
	if discSubfolderPattern.MatchString(base) {
		return filepath.Dir(directoryPath)
	}
	return directoryPath
}

// ProcessedAlbums tracks album roots processed in the current run, so a
// disc-subfolder batch and its siblings are only resolved once per scan.
// Grounded on the teacher's AlbumMetadataCache locking pattern in
// metadata.go — a plain map guarded by a mutex, since the set only needs
// membership testing, not the cache's read/write value semantics.
type ProcessedAlbums struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewProcessedAlbums returns an empty tracker.
func NewProcessedAlbums() *ProcessedAlbums {
	return &ProcessedAlbums{seen: make(map[string]struct{})}
}

// MarkAndCheck records albumRoot as processed and reports whether it was
// already marked before this call. A forcePrompt request bypasses the
// "already processed" guard entirely — callers should not call
// MarkAndCheck at all when forcePrompt is set.
func (p *ProcessedAlbums) MarkAndCheck(albumRoot string) (alreadyProcessed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[albumRoot]; ok {
		return true
	}
	p.seen[albumRoot] = struct{}{}
	return false
}

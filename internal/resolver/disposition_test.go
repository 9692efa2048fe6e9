package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"resolverd/internal/audit"
	"resolverd/internal/domain"
	"resolverd/internal/shared"
)

// TestDeleteDirectoryFilesRemovesFilesAndDirectory covers the "d" prompt
// outcome of spec.md §6: choosing delete must actually remove the
// directory's files, not just record a skip reason.
func TestDeleteDirectoryFilesRemovesFilesAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01 track.flac")
	if err := os.WriteFile(path, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	p := &Pipeline{}
	dctx := domain.NewDirectoryContext(dir, false)
	dctx.Files = append(dctx.Files, &domain.PendingResult{Meta: &domain.TrackMetadata{Path: path}})

	if err := p.deleteDirectoryFiles(dctx); err != nil {
		t.Fatalf("deleteDirectoryFiles: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected now-empty directory removed, stat err: %v", err)
	}
}

// TestArchiveDirectoryMovesIntoSiblingArchivedFolder covers the "a"
// prompt outcome: the directory leaves the scan path without deleting
// anything.
func TestArchiveDirectoryMovesIntoSiblingArchivedFolder(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Artist", "Album")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "01 track.flac")
	if err := os.WriteFile(path, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	p := &Pipeline{}
	dctx := domain.NewDirectoryContext(dir, false)

	if err := p.archiveDirectory(dctx); err != nil {
		t.Fatalf("archiveDirectory: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected original directory gone, stat err: %v", err)
	}
	archived := filepath.Join(filepath.Dir(dir), ".archived", "Album")
	if _, err := os.Stat(filepath.Join(archived, "01 track.flac")); err != nil {
		t.Fatalf("expected file present under archive path, stat err: %v", err)
	}
}

// TestApplyOperatorDispositionIgnoreRecordsAndSkips covers the "i" prompt
// outcome end to end: Store.IgnoreDirectory is called and the returned
// Outcome carries the operator-ignored skip reason.
func TestApplyOperatorDispositionIgnoreRecordsAndSkips(t *testing.T) {
	store := openTestStore(t)
	logger := shared.NewConsoleLogger()
	p := &Pipeline{Store: store, Logger: logger, Audit: audit.NewLog(store, logger)}

	dir := t.TempDir()
	dctx := domain.NewDirectoryContext(dir, false)

	outcome, handled := p.applyOperatorDisposition(context.Background(), dctx, PromptChoice{Ignore: true})
	if !handled {
		t.Fatalf("expected Ignore choice to be handled")
	}
	if outcome.SkipReason != domain.SkipOperatorIgnored {
		t.Fatalf("expected operator_ignored skip reason, got %v", outcome.SkipReason)
	}

	ignored, err := store.IsIgnored(context.Background(), dir)
	if err != nil {
		t.Fatalf("IsIgnored: %v", err)
	}
	if !ignored {
		t.Fatalf("expected directory marked ignored in the store")
	}
}

// TestProcessDirectorySkipsIgnoredDirectoryBeforeHashCheck covers the
// §3 invariant: an ignored directory short-circuits stage 2 of
// ProcessDirectory before any other cache table is consulted.
func TestProcessDirectorySkipsIgnoredDirectoryBeforeHashCheck(t *testing.T) {
	store := openTestStore(t)
	logger := shared.NewConsoleLogger()
	p := &Pipeline{
		Store:    store,
		Logger:   logger,
		Audit:    audit.NewLog(store, logger),
		Warnings: shared.NewWarningCollector(false),
		TagIO:    okTagIO{},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "01 track.flac")
	if err := os.WriteFile(path, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := store.IgnoreDirectory(context.Background(), dir, "operator_requested"); err != nil {
		t.Fatalf("IgnoreDirectory: %v", err)
	}

	outcome, err := p.ProcessDirectory(context.Background(), domain.DirectoryBatch{DirectoryPath: dir, Files: []string{path}}, false)
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if outcome.State != StateSkipped || outcome.SkipReason != domain.SkipOperatorIgnored {
		t.Fatalf("expected ignored skip outcome, got %+v", outcome)
	}
}

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"resolverd/internal/cache"
	"resolverd/internal/domain"
)

type fakeRelocator struct {
	moves [][2]string
}

func (r *fakeRelocator) TargetPath(meta domain.TrackMetadata, albumArtist, albumName string) (string, error) {
	return meta.Path, nil
}

func (r *fakeRelocator) Move(src, dst string) error {
	if src == dst {
		return nil
	}
	if err := os.Rename(src, dst); err != nil {
		return err
	}
	r.moves = append(r.moves, [2]string{src, dst})
	return nil
}

type failingTagIO struct{}

func (failingTagIO) ReadTags(path string) (map[string]string, domain.TrackMetadata, error) {
	return nil, domain.TrackMetadata{}, nil
}

func (failingTagIO) WriteTags(path string, tagChanges map[string]domain.TagChange) error {
	return os.ErrPermission
}

type okTagIO struct{}

func (okTagIO) ReadTags(path string) (map[string]string, domain.TrackMetadata, error) {
	return map[string]string{}, domain.TrackMetadata{Path: path}, nil
}

func (okTagIO) WriteTags(path string, tagChanges map[string]domain.TagChange) error {
	return nil
}

func openTestStore(t *testing.T) *cache.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := cache.Open(path)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestApplyPlanRollsBackMoveOnTagWriteFailure covers invariant 5 of
// spec.md §8: a failed tag write after a successful move must restore
// the file to its original path rather than leaving it relocated with
// stale tags.
func TestApplyPlanRollsBackMoveOnTagWriteFailure(t *testing.T) {
	store := openTestStore(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "01 track.flac")
	if err := os.WriteFile(src, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	dst := filepath.Join(dir, "renamed.flac")

	relocator := &fakeRelocator{}
	plan := &domain.PlannedUpdate{
		Meta:       &domain.TrackMetadata{Path: src},
		TagChanges: map[string]domain.TagChange{"TITLE": {Old: "", New: "New Title"}},
		TargetPath: dst,
	}

	result := ApplyPlan(context.Background(), store, relocator, failingTagIO{}, plan)
	if result.Applied {
		t.Fatalf("expected apply to fail")
	}
	if result.Err == nil {
		t.Fatalf("expected an error to be returned")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected file restored to source path, stat failed: %v", err)
	}
	if _, err := os.Stat(dst); err == nil {
		t.Fatalf("expected target path to no longer exist after rollback")
	}
}

// TestApplyPlanSucceedsRecordsMoveAndMarksProcessed covers the plain
// success path: move, write tags, record move, mark processed.
func TestApplyPlanSucceedsRecordsMoveAndMarksProcessed(t *testing.T) {
	store := openTestStore(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "01 track.flac")
	if err := os.WriteFile(src, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	dst := filepath.Join(dir, "renamed.flac")

	relocator := &fakeRelocator{}
	plan := &domain.PlannedUpdate{
		Meta:       &domain.TrackMetadata{Path: src},
		TagChanges: map[string]domain.TagChange{"TITLE": {Old: "", New: "New Title"}},
		TargetPath: dst,
	}

	result := ApplyPlan(context.Background(), store, relocator, okTagIO{}, plan)
	if !result.Applied {
		t.Fatalf("expected apply to succeed, got err: %v", result.Err)
	}
	if plan.Meta.Path != dst {
		t.Fatalf("expected plan metadata path updated to target, got %s", plan.Meta.Path)
	}
	if len(plan.TagChanges) != 0 {
		t.Fatalf("expected tag changes cleared after apply")
	}

	moves, err := store.RecentMoves(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentMoves: %v", err)
	}
	if len(moves) != 1 || moves[0].SourcePath != src || moves[0].TargetPath != dst {
		t.Fatalf("expected move recorded, got %+v", moves)
	}
}

// TestApplyPlanNoChangesIsNoop covers the "dropped plan" case: a plan
// with no tag changes and no relocation never calls the relocator or
// tag writer.
func TestApplyPlanNoChangesIsNoop(t *testing.T) {
	store := openTestStore(t)
	plan := &domain.PlannedUpdate{Meta: &domain.TrackMetadata{Path: "/tmp/x.flac"}}
	result := ApplyPlan(context.Background(), store, &fakeRelocator{}, failingTagIO{}, plan)
	if result.Applied {
		t.Fatalf("expected a no-change plan to be a no-op")
	}
	if result.Err != nil {
		t.Fatalf("expected no error for a no-op plan, got %v", result.Err)
	}
}

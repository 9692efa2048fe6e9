package cache

import (
	"context"
	"path/filepath"
	"testing"

	"resolverd/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestDirectoryHashRoundTrip checks that a stored directory hash string
// reads back exactly; the hash function itself (resolver.DirectoryHash) is
// not exercised here.
func TestDirectoryHashRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, found, err := store.DirectoryHash(ctx, "/library/album"); err != nil || found {
		t.Fatalf("expected no cached hash yet, got found=%v err=%v", found, err)
	}

	if err := store.SetDirectoryHash(ctx, "/library/album", "deadbeef"); err != nil {
		t.Fatalf("SetDirectoryHash: %v", err)
	}
	got, found, err := store.DirectoryHash(ctx, "/library/album")
	if err != nil || !found {
		t.Fatalf("expected cached hash, got found=%v err=%v", found, err)
	}
	if got != "deadbeef" {
		t.Fatalf("expected deadbeef, got %s", got)
	}
}

// TestReleaseHomeRoundTripAndOverwrite checks that the store round-trips a
// release home and that a later SetReleaseHome overwrites it, even with a
// smaller track count. The "don't downgrade" rule lives in the pipeline's
// finalizeDirectory, which skips the write when the existing home has the
// same hash and at least as many tracks.
func TestReleaseHomeRoundTripAndOverwrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	key := domain.ReleaseKey(domain.ProviderMusicBrainz, "release-1")
	if _, found, err := store.ReleaseHome(ctx, key); err != nil || found {
		t.Fatalf("expected no home yet, got found=%v err=%v", found, err)
	}

	home := ReleaseHome{DirectoryPath: "/library/full-album", TrackCount: 12, DirectoryHash: "hash-1"}
	if err := store.SetReleaseHome(ctx, key, home); err != nil {
		t.Fatalf("SetReleaseHome: %v", err)
	}

	got, found, err := store.ReleaseHome(ctx, key)
	if err != nil || !found {
		t.Fatalf("expected home recorded, got found=%v err=%v", found, err)
	}
	if got != home {
		t.Fatalf("expected %+v, got %+v", home, got)
	}

	replacement := ReleaseHome{DirectoryPath: "/library/singleton", TrackCount: 1, DirectoryHash: "hash-2"}
	if err := store.SetReleaseHome(ctx, key, replacement); err != nil {
		t.Fatalf("SetReleaseHome (replace): %v", err)
	}
	got, _, _ = store.ReleaseHome(ctx, key)
	if got != replacement {
		t.Fatalf("expected replacement to overwrite when pipeline chooses to write, got %+v", got)
	}
}

// TestDirectoryReleaseAndHashReleaseRoundTrip covers the two cache
// lookups the pipeline's initializeFromCache stage reads from.
func TestDirectoryReleaseAndHashReleaseRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SetDirectoryRelease(ctx, "/library/album", domain.ProviderMusicBrainz, "rel-1", 0.87); err != nil {
		t.Fatalf("SetDirectoryRelease: %v", err)
	}
	provider, releaseID, score, found, err := store.DirectoryRelease(ctx, "/library/album")
	if err != nil || !found {
		t.Fatalf("expected directory release found, err=%v", err)
	}
	if provider != domain.ProviderMusicBrainz || releaseID != "rel-1" || score != 0.87 {
		t.Fatalf("unexpected directory release: %s %s %f", provider, releaseID, score)
	}

	if err := store.SetHashRelease(ctx, "contenthash", domain.ProviderDiscogs, "dg-1", 0.6); err != nil {
		t.Fatalf("SetHashRelease: %v", err)
	}
	provider, releaseID, score, found, err = store.HashRelease(ctx, "contenthash")
	if err != nil || !found {
		t.Fatalf("expected hash release found, err=%v", err)
	}
	if provider != domain.ProviderDiscogs || releaseID != "dg-1" || score != 0.6 {
		t.Fatalf("unexpected hash release: %s %s %f", provider, releaseID, score)
	}
}

// TestIsProcessedRequiresExactMtimeAndSize ensures tag-only edits
// (mtime change without the organizer re-marking) are not mistaken for
// "already organized".
func TestIsProcessedRequiresExactMtimeAndSize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.MarkProcessed(ctx, "/library/album/01.flac", 1000, 2048); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	processed, err := store.IsProcessed(ctx, "/library/album/01.flac", 1000, 2048)
	if err != nil || !processed {
		t.Fatalf("expected processed match, found=%v err=%v", processed, err)
	}

	processed, err = store.IsProcessed(ctx, "/library/album/01.flac", 9999, 2048)
	if err != nil || processed {
		t.Fatalf("expected mtime mismatch to report unprocessed, found=%v", processed)
	}
}

func TestIgnoreDirectoryRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ignored, err := store.IsIgnored(ctx, "/library/weird-folder")
	if err != nil {
		t.Fatalf("IsIgnored: %v", err)
	}
	if ignored {
		t.Fatalf("expected not ignored before IgnoreDirectory")
	}

	if err := store.IgnoreDirectory(ctx, "/library/weird-folder", "user requested"); err != nil {
		t.Fatalf("IgnoreDirectory: %v", err)
	}
	ignored, err = store.IsIgnored(ctx, "/library/weird-folder")
	if err != nil || !ignored {
		t.Fatalf("expected ignored after IgnoreDirectory, got %v err=%v", ignored, err)
	}
}

func TestDeferredPromptLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.DeferPrompt(ctx, "/library/ambiguous-album", "ambiguous"); err != nil {
		t.Fatalf("DeferPrompt: %v", err)
	}
	deferred, err := store.ListDeferredPrompts(ctx)
	if err != nil {
		t.Fatalf("ListDeferredPrompts: %v", err)
	}
	if len(deferred) != 1 || deferred[0].DirectoryPath != "/library/ambiguous-album" {
		t.Fatalf("expected one deferred prompt, got %+v", deferred)
	}

	if err := store.ClearDeferredPrompt(ctx, "/library/ambiguous-album"); err != nil {
		t.Fatalf("ClearDeferredPrompt: %v", err)
	}
	deferred, err = store.ListDeferredPrompts(ctx)
	if err != nil {
		t.Fatalf("ListDeferredPrompts after clear: %v", err)
	}
	if len(deferred) != 0 {
		t.Fatalf("expected deferred prompt cleared, got %+v", deferred)
	}
}

package organizer

import (
	"os"
	"path/filepath"
	"testing"

	"resolverd/internal/domain"
)

func TestTargetPathLayout(t *testing.T) {
	org := New("/music")
	meta := domain.TrackMetadata{Path: "/incoming/01.flac", Title: "So What", TrackNumber: 1}

	got, err := org.TargetPath(meta, "Miles Davis", "Kind of Blue")
	if err != nil {
		t.Fatalf("TargetPath: %v", err)
	}
	want := filepath.Join("/music", "Miles Davis", "Kind of Blue", "01 - So What.flac")
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestTargetPathUsesDiscSubdirectoryForMultiDiscReleases(t *testing.T) {
	org := New("/music")
	meta := domain.TrackMetadata{Path: "/incoming/02.flac", Title: "Track Two", TrackNumber: 2, DiscNumber: 2}

	got, err := org.TargetPath(meta, "Artist", "Double Album")
	if err != nil {
		t.Fatalf("TargetPath: %v", err)
	}
	want := filepath.Join("/music", "Artist", "Double Album", "Disc 2", "02 - Track Two.flac")
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMoveIsIdempotentOnSamePath(t *testing.T) {
	org := New("/music")
	dir := t.TempDir()
	path := filepath.Join(dir, "a.flac")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := org.Move(path, path); err != nil {
		t.Fatalf("expected same-path move to be a no-op, got %v", err)
	}
}

func TestMoveCreatesParentDirectories(t *testing.T) {
	org := New("/music")
	dir := t.TempDir()
	src := filepath.Join(dir, "a.flac")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	dst := filepath.Join(dir, "Artist", "Album", "a.flac")

	if err := org.Move(src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected file at new nested path: %v", err)
	}
	if _, err := os.Stat(src); err == nil {
		t.Fatalf("expected source to no longer exist")
	}
}

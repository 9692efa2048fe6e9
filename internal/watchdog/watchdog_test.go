package watchdog

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestIsAudioFile(t *testing.T) {
	cases := map[string]bool{
		"track.flac": true,
		"track.mp3":  true,
		"track.m4a":  true,
		"cover.jpg":  false,
		"readme.txt": false,
	}
	for name, want := range cases {
		if got := IsAudioFile(name); got != want {
			t.Fatalf("IsAudioFile(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestScanRootGroupsByAlbumAndCollapsesDiscSubfolders(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Artist", "Album", "01.flac"))
	mustWrite(t, filepath.Join(root, "Artist", "Album", "Disc 2", "01.flac"))
	mustWrite(t, filepath.Join(root, "Artist", "Other Album", "01.flac"))
	mustWrite(t, filepath.Join(root, "Artist", "Album", "cover.jpg"))

	batches, err := ScanRoot(root)
	if err != nil {
		t.Fatalf("ScanRoot: %v", err)
	}

	got := make(map[string]int)
	for _, b := range batches {
		got[b.DirectoryPath] = len(b.Files)
	}

	album := filepath.Join(root, "Artist", "Album")
	other := filepath.Join(root, "Artist", "Other Album")

	if got[album] != 2 {
		t.Fatalf("expected disc subfolder collapsed into album root with 2 files, got %d (batches=%+v)", got[album], keys(got))
	}
	if got[other] != 1 {
		t.Fatalf("expected 1 file in other album, got %d", got[other])
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package resolver

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"resolverd/internal/domain"
)

// TestJournalRecordRedactsFingerprintAndMatchesShape decodes the appended
// JSONL line back into a generic map and diffs it against the expected
// shape with go-cmp, the same comparison style other example repos in
// the pack use for readable test failures on nested structures.
func TestJournalRecordRedactsFingerprintAndMatchesShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	journal, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}

	plan := &domain.PlannedUpdate{
		Meta: &domain.TrackMetadata{
			Path:        "/library/Artist/Album/01.flac",
			Title:       "Track One",
			Album:       "Album",
			Artist:      "Artist",
			AlbumArtist: "Artist",
			TrackNumber: 1,
			Fingerprint: "deadbeef",
		},
		Score:      0.92,
		TagChanges: map[string]domain.TagChange{"TITLE": {Old: "track one", New: "Track One"}},
		TargetPath: "/library/Artist/Album/01 - Track One.flac",
	}

	if err := journal.Record(plan, "/incoming/01.flac"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	journal.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("expected one journal line")
	}

	var got map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal journal line: %v", err)
	}

	want := map[string]any{
		"path":        "/library/Artist/Album/01.flac",
		"match_score": 0.92,
		"meta": map[string]any{
			"title":        "Track One",
			"album":        "Album",
			"artist":       "Artist",
			"album_artist": "Artist",
			"track_number": float64(1),
			"disc_number":  float64(0),
			"fingerprint":  "<omitted>",
		},
		"tag_changes": map[string]any{
			"TITLE": map[string]any{"Old": "track one", "New": "Track One"},
		},
		"relocate_from": "/incoming/01.flac",
		"relocate_to":   "/library/Artist/Album/01 - Track One.flac",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("journal line mismatch (-want +got):\n%s", diff)
	}
}

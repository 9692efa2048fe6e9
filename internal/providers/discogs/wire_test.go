package discogs

import "testing"

func TestSplitDiscogsTitle(t *testing.T) {
	title, artist := splitDiscogsTitle("Miles Davis - Kind Of Blue")
	if artist != "Miles Davis" || title != "Kind Of Blue" {
		t.Fatalf("got artist=%q title=%q", artist, title)
	}
}

func TestParseDuration(t *testing.T) {
	if got := parseDuration("9:04"); got != 544 {
		t.Fatalf("expected 544 seconds, got %v", got)
	}
	if got := parseDuration(""); got != 0 {
		t.Fatalf("expected 0 for empty duration, got %v", got)
	}
}

func TestDiscogsTrackPositionMultiDisc(t *testing.T) {
	disc, track := discogsTrackPosition("2-3", 0)
	if disc != 2 || track != 3 {
		t.Fatalf("expected disc=2 track=3, got disc=%d track=%d", disc, track)
	}
}

func TestDiscogsTrackPositionVinylSide(t *testing.T) {
	disc, track := discogsTrackPosition("A1", 0)
	if disc != 1 || track != 1 {
		t.Fatalf("expected disc=1 track=1, got disc=%d track=%d", disc, track)
	}
}

func TestWireReleaseToReleaseDataComputesDiscCount(t *testing.T) {
	r := wireRelease{
		ID:    12345,
		Title: "Kind Of Blue",
		Tracklist: []wireTrack{
			{Position: "1-1", Title: "So What", Duration: "9:04"},
			{Position: "2-1", Title: "Flamenco Sketches", Duration: "9:26"},
		},
	}
	data := wireReleaseToReleaseData(r)
	if data.DiscCount != 2 {
		t.Fatalf("expected 2 discs, got %d", data.DiscCount)
	}
	if len(data.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(data.Tracks))
	}
}

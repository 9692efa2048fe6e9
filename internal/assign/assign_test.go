package assign

import "testing"

func exactTitleSim(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

func exactDurationSim(a, b float64) float64 {
	if a == b {
		return 1
	}
	return 0
}

func TestAssignMusicBrainzExactMatch(t *testing.T) {
	files := []FileFeatures{
		{Title: "So What", TrackNumber: 1, DiscNumber: 1, DurationSecs: 545, HaveDuration: true},
		{Title: "Freddie Freeloader", TrackNumber: 2, DiscNumber: 1, DurationSecs: 592, HaveDuration: true},
	}
	tracks := []TrackFeatures{
		{RecordingID: "r1", Title: "So What", Number: 1, DiscNumber: 1, DurationSecs: 545, HaveDuration: true},
		{RecordingID: "r2", Title: "Freddie Freeloader", Number: 2, DiscNumber: 1, DurationSecs: 592, HaveDuration: true},
	}

	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.Pairings) != 2 {
		t.Fatalf("expected 2 pairings, got %d: %+v", len(result.Pairings), result.Pairings)
	}
	if len(result.UnassignedFiles) != 0 {
		t.Fatalf("expected no unassigned files, got %v", result.UnassignedFiles)
	}
	seen := make(map[int]bool)
	for _, p := range result.Pairings {
		if seen[p.TrackIndex] {
			t.Fatalf("track %d claimed twice: assignment is not injective", p.TrackIndex)
		}
		seen[p.TrackIndex] = true
		if p.Score < MBAcceptThreshold {
			t.Fatalf("pairing %+v below accept threshold", p)
		}
	}
}

func TestAssignNMoreFilesThanTracksLeavesExactDifferenceUnassigned(t *testing.T) {
	files := []FileFeatures{
		{Title: "Track A", TrackNumber: 1, DurationSecs: 100, HaveDuration: true},
		{Title: "Track B", TrackNumber: 2, DurationSecs: 100, HaveDuration: true},
		{Title: "Track C", TrackNumber: 3, DurationSecs: 100, HaveDuration: true},
	}
	tracks := []TrackFeatures{
		{RecordingID: "r1", Title: "Track A", Number: 1, DurationSecs: 100, HaveDuration: true},
	}

	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.UnassignedFiles) != len(files)-len(tracks) {
		t.Fatalf("expected %d unassigned files, got %d", len(files)-len(tracks), len(result.UnassignedFiles))
	}
}

func TestAssignMoreTracksThanFilesAssignsAllFilesNoDuplicates(t *testing.T) {
	files := []FileFeatures{
		{Title: "Track A", TrackNumber: 1, DurationSecs: 100, HaveDuration: true},
	}
	tracks := []TrackFeatures{
		{RecordingID: "r1", Title: "Track A", Number: 1, DurationSecs: 100, HaveDuration: true},
		{RecordingID: "r2", Title: "Track B", Number: 2, DurationSecs: 200, HaveDuration: true},
	}

	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.Pairings) != 1 {
		t.Fatalf("expected exactly 1 pairing, got %d", len(result.Pairings))
	}
	if len(result.UnassignedFiles) != 0 {
		t.Fatalf("expected 0 unassigned files, got %v", result.UnassignedFiles)
	}
}

func TestAssignBelowRejectionFloorLeavesAllUnassigned(t *testing.T) {
	files := []FileFeatures{
		{Title: "Completely Different Name", TrackNumber: 99},
	}
	tracks := []TrackFeatures{
		{RecordingID: "r1", Title: "Nothing Alike", Number: 1},
	}

	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.Pairings) != 0 {
		t.Fatalf("expected no pairings below rejection floor, got %+v", result.Pairings)
	}
	if len(result.UnassignedFiles) != 1 {
		t.Fatalf("expected file to remain unassigned, got %v", result.UnassignedFiles)
	}
}

// TestAssignVinylSideLabelsNormalized mirrors spec.md Scenario E: track
// numbers are pre-normalized (side letters A/B become 1/2) by the caller
// before reaching this package; assign only sees integers.
func TestAssignVinylSideLabelsNormalized(t *testing.T) {
	files := []FileFeatures{
		{Title: "Side A Song", TrackNumber: 1, DurationSecs: 300, HaveDuration: true},
		{Title: "Side B Song", TrackNumber: 2, DurationSecs: 320, HaveDuration: true},
	}
	tracks := []TrackFeatures{
		{RecordingID: "r1", Title: "Side A Song", Number: 1, DurationSecs: 300, HaveDuration: true},
		{RecordingID: "r2", Title: "Side B Song", Number: 2, DurationSecs: 320, HaveDuration: true},
	}
	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.Pairings) != 2 {
		t.Fatalf("expected both vinyl-side tracks assigned, got %d", len(result.Pairings))
	}
	for _, p := range result.Pairings {
		if p.Score < MBAcceptThreshold {
			t.Fatalf("pairing score %v below accept threshold %v", p.Score, MBAcceptThreshold)
		}
	}
}

func TestAssignMultiDiscTrackNumbering(t *testing.T) {
	files := []FileFeatures{
		{Title: "Disc 1 Track 1", TrackNumber: 1, DiscNumber: 1, DurationSecs: 200, HaveDuration: true},
		{Title: "Disc 2 Track 1", TrackNumber: 1, DiscNumber: 2, DurationSecs: 210, HaveDuration: true},
	}
	tracks := []TrackFeatures{
		{RecordingID: "d1t1", Title: "Disc 1 Track 1", Number: 1, DiscNumber: 1, DurationSecs: 200, HaveDuration: true},
		{RecordingID: "d2t1", Title: "Disc 2 Track 1", Number: 1, DiscNumber: 2, DurationSecs: 210, HaveDuration: true},
	}
	result := AssignMusicBrainz(files, tracks, exactTitleSim, exactDurationSim)
	if len(result.Pairings) != 2 {
		t.Fatalf("expected disc-aware disambiguation to assign both tracks, got %d", len(result.Pairings))
	}
	gotTrack := make(map[int]int)
	for _, p := range result.Pairings {
		gotTrack[p.FileIndex] = p.TrackIndex
	}
	if gotTrack[0] == gotTrack[1] {
		t.Fatalf("disc 1 and disc 2 track 1 must not collapse onto the same release track")
	}
}

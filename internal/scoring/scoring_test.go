package scoring

import (
	"testing"

	"resolverd/internal/domain"
)

func TestAdjustScoresIdempotent(t *testing.T) {
	candidates := []Candidate{
		{ReleaseKey: "musicbrainz:r1", Provider: domain.ProviderMusicBrainz, BaseScore: 0.7, Example: &domain.ReleaseExample{
			Title: "Kind of Blue", Artist: "Miles Davis", Date: "1959-08-17", TrackTotal: 5,
		}},
		{ReleaseKey: "discogs:12345", Provider: domain.ProviderDiscogs, BaseScore: 0.6, Example: &domain.ReleaseExample{
			Title: "Kind of Blue (Reissue)", Artist: "Miles Davis", Date: "1997-01-01", TrackTotal: 5,
		}},
	}
	ctx := Context{
		DirTrackCount: 5,
		DirYear:       1959,
		DirectoryPath: "/music/Miles Davis/Kind of Blue",
		PendingTitles: []string{"So What", "Freddie Freeloader"},
	}

	once := AdjustScores(candidates, ctx)
	twice := AdjustScores(candidates, ctx)

	for k, v := range once {
		if twice[k] != v {
			t.Fatalf("AdjustScores not idempotent for %s: %v != %v", k, v, twice[k])
		}
	}
}

func TestBestCandidatePicksHighestAndIsMember(t *testing.T) {
	adjusted := map[string]float64{
		"musicbrainz:a": 0.82,
		"discogs:b":     0.70,
	}
	best, score, ambiguous := BestCandidate(adjusted)
	if best != "musicbrainz:a" {
		t.Fatalf("expected musicbrainz:a, got %s", best)
	}
	if score != 0.82 {
		t.Fatalf("expected score 0.82, got %v", score)
	}
	if len(ambiguous) != 1 || ambiguous[0] != "musicbrainz:a" {
		t.Fatalf("expected only the best candidate within ambiguity cutoff, got %v", ambiguous)
	}
}

func TestBestCandidateAmbiguityWindow(t *testing.T) {
	adjusted := map[string]float64{
		"musicbrainz:a": 0.88,
		"discogs:b":     0.85,
		"discogs:c":     0.70,
	}
	_, _, ambiguous := BestCandidate(adjusted)
	if len(ambiguous) != 2 {
		t.Fatalf("expected 2 candidates within 0.05 cutoff, got %v", ambiguous)
	}
}

func TestTrackCountRatioBonus(t *testing.T) {
	cases := []struct {
		dir, release int
		want         float64
	}{
		{10, 10, 0.08},
		{9, 10, 0.05},
		{8, 10, 0.02},
		{7, 10, 0.02},
		{5, 10, -0.07},
		{3, 10, -0.12},
	}
	for _, c := range cases {
		got := trackCountRatioBonus(float64(c.dir), float64(c.release))
		if got != c.want {
			t.Errorf("trackCountRatioBonus(%d,%d) = %v, want %v", c.dir, c.release, got, c.want)
		}
	}
}

func TestTitleSimilarityIdenticalIsOne(t *testing.T) {
	if sim := TitleSimilarity("So What", "so what"); sim != 1 {
		t.Fatalf("expected case-insensitive identical titles to score 1, got %v", sim)
	}
}

func TestConsensusHintDropsWithoutMajority(t *testing.T) {
	hints := []TagHint{{Value: "Jazz"}, {Value: "Rock"}, {Value: ""}}
	value, weight := consensusHint(hints)
	if value != "" || weight != 0 {
		t.Fatalf("expected no consensus with <2 non-empty or no majority, got %q/%v", value, weight)
	}
}

func TestConsensusHintRequiresAtLeastTwoNonEmpty(t *testing.T) {
	hints := []TagHint{{Value: "Jazz", Strong: true}}
	value, _ := consensusHint(hints)
	if value != "" {
		t.Fatalf("expected no consensus with only 1 non-empty hint, got %q", value)
	}
}

func TestCoverage(t *testing.T) {
	pending := []string{"So What", "Freddie Freeloader", "Blue in Green"}
	releaseTracks := []string{"So What", "Freddie Freeloader"}
	cov := Coverage(pending, releaseTracks)
	if cov < 0.65 || cov > 0.67 {
		t.Fatalf("expected coverage ~2/3, got %v", cov)
	}
}

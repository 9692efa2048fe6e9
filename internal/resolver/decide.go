package resolver

import (
	"sort"
	"strings"

	"resolverd/internal/domain"
	"resolverd/internal/scoring"
)

// DecisionOutcome enumerates the possible results of Decide, mirroring
// the state machine of spec.md §4.3.
type DecisionOutcome int

const (
	OutcomeNoCandidates DecisionOutcome = iota
	OutcomeAutoDecided
	OutcomeAmbiguous
	OutcomeLowCoverage
)

// Decision is the result of running the release decision logic for one
// directory.
type Decision struct {
	Outcome       DecisionOutcome
	BestKey       string
	BestScore     float64
	Ambiguous     []string
	Coverage      float64
}

// CanonicalSignature is the ordered (normalized_title, duration_seconds)
// sequence used by the equivalent-release collapse rule (spec.md §4.3
// step 2).
type CanonicalSignature struct {
	Tracks []SignatureTrack
}

// SignatureTrack is one entry of a CanonicalSignature.
type SignatureTrack struct {
	NormalizedTitle string
	DurationSeconds float64
}

// BuildCanonicalSignature derives a CanonicalSignature from a release's
// tracks, ordered by (disc, number).
func BuildCanonicalSignature(tracks []domain.ReleaseTrack) CanonicalSignature {
	sorted := make([]domain.ReleaseTrack, len(tracks))
	copy(sorted, tracks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DiscNumber != sorted[j].DiscNumber {
			return sorted[i].DiscNumber < sorted[j].DiscNumber
		}
		return sorted[i].Number < sorted[j].Number
	})
	sig := CanonicalSignature{Tracks: make([]SignatureTrack, len(sorted))}
	for i, t := range sorted {
		sig.Tracks[i] = SignatureTrack{
			NormalizedTitle: normalizeForSignature(t.Title),
			DurationSeconds: roundToSecond(t.DurationSeconds),
		}
	}
	return sig
}

func (s CanonicalSignature) Equal(other CanonicalSignature) bool {
	if len(s.Tracks) != len(other.Tracks) {
		return false
	}
	for i := range s.Tracks {
		if s.Tracks[i].NormalizedTitle != other.Tracks[i].NormalizedTitle {
			return false
		}
		if roundToSecond(s.Tracks[i].DurationSeconds) != roundToSecond(other.Tracks[i].DurationSeconds) {
			return false
		}
	}
	return true
}

func roundToSecond(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int64(v + 0.5))
}

func normalizeForSignature(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// CollapseEquivalentReleases implements spec.md §4.3 step 2: if every
// candidate in ambiguous shares the same canonical signature, collapse to
// one, preferring MusicBrainz over Discogs.
func CollapseEquivalentReleases(ambiguous []string, signatures map[string]CanonicalSignature, providerOf map[string]domain.Provider) (collapsedTo string, collapsed bool) {
	if len(ambiguous) < 2 {
		return "", false
	}
	first, ok := signatures[ambiguous[0]]
	if !ok {
		return "", false
	}
	for _, key := range ambiguous[1:] {
		sig, ok := signatures[key]
		if !ok || !sig.Equal(first) {
			return "", false
		}
	}

	winner := ambiguous[0]
	for _, key := range ambiguous[1:] {
		if providerOf[key] == domain.ProviderMusicBrainz && providerOf[winner] != domain.ProviderMusicBrainz {
			winner = key
		}
	}
	return winner, true
}

// BestFitOverride implements spec.md §4.3 step 4: if the best fit ratio
// is ≥0.92, the runner-up's fit is at least 0.07 lower, and the winner's
// score ≥0.5, the winner is taken outright.
func BestFitOverride(ambiguous []string, adjusted map[string]float64, fitRatio map[string]float64) (winner string, ok bool) {
	if len(ambiguous) < 2 {
		return "", false
	}
	sorted := make([]string, len(ambiguous))
	copy(sorted, ambiguous)
	sort.Slice(sorted, func(i, j int) bool { return fitRatio[sorted[i]] > fitRatio[sorted[j]] })

	best := sorted[0]
	secondBest := sorted[1]
	if fitRatio[best] >= 0.92 && fitRatio[best]-fitRatio[secondBest] >= 0.07 && adjusted[best] >= 0.5 {
		return best, true
	}
	return "", false
}

// Decide runs the release decision logic of spec.md §4.3 against already
// score-adjusted candidates, up through the ambiguity/low-coverage
// determination. Equivalent-release collapse and singleton-home preference
// are applied afterwards by the pipeline, since they need cache/home
// lookups this pure function does not have access to; the pipeline does
// not call BestFitOverride, so no best-fit override is applied.
func Decide(adjusted map[string]float64, coverage float64, isSingleton bool) Decision {
	if len(adjusted) == 0 {
		return Decision{Outcome: OutcomeNoCandidates}
	}

	bestKey, bestScore, ambiguous := scoring.BestCandidate(adjusted)

	lowCoverageThreshold := 0.7
	if isSingleton {
		lowCoverageThreshold = -1 // effectively disabled, per spec.md §4.3 step 5
	}
	if coverage < lowCoverageThreshold {
		return Decision{Outcome: OutcomeLowCoverage, BestKey: bestKey, BestScore: bestScore, Ambiguous: ambiguous, Coverage: coverage}
	}

	if len(ambiguous) > 1 {
		return Decision{Outcome: OutcomeAmbiguous, BestKey: bestKey, BestScore: bestScore, Ambiguous: ambiguous, Coverage: coverage}
	}

	return Decision{Outcome: OutcomeAutoDecided, BestKey: bestKey, BestScore: bestScore, Ambiguous: ambiguous, Coverage: coverage}
}

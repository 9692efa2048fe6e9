package resolver

import (
	"context"

	"resolverd/internal/domain"
)

// supportFactorDenominator bounds the divisor in the MusicBrainz support
// factor formula of spec.md §4.1 stage 6: min(6, dir_track_count), never
// less than 2.
func supportFactorDenominator(dirTrackCount int) int {
	d := dirTrackCount
	if d > 6 {
		d = 6
	}
	if d < 2 {
		d = 2
	}
	return d
}

// CollectMusicBrainzCandidates groups matched pending results by release
// id and computes each candidate's base score as
// avg(result_score) * support_factor, per spec.md §4.1 stage 6.
func CollectMusicBrainzCandidates(pending []*domain.PendingResult, dirTrackCount int, isSingleton bool) map[string]float64 {
	type accum struct {
		sum   float64
		count int
	}
	byRelease := make(map[string]*accum)

	for _, p := range pending {
		if p == nil || p.Result == nil || p.Result.Provider != domain.ProviderMusicBrainz || p.Result.ReleaseID == "" {
			continue
		}
		key := domain.ReleaseKey(domain.ProviderMusicBrainz, p.Result.ReleaseID)
		a, ok := byRelease[key]
		if !ok {
			a = &accum{}
			byRelease[key] = a
		}
		a.sum += p.Result.Score
		a.count++
	}

	scores := make(map[string]float64, len(byRelease))
	for key, a := range byRelease {
		avg := a.sum / float64(a.count)
		supportFactor := 1.0
		if !isSingleton {
			denom := float64(supportFactorDenominator(dirTrackCount))
			supportFactor = float64(a.count) / denom
			if supportFactor > 1 {
				supportFactor = 1
			}
		}
		scores[key] = avg * supportFactor
	}
	return scores
}

// CollectDiscogsCandidates runs a Discogs search using the first pending
// track's metadata and returns candidate base scores (default 0.5 if the
// provider does not supply one) plus their examples, per spec.md §4.1
// stage 6.
func CollectDiscogsCandidates(ctx context.Context, provider ReleaseProvider, pending []*domain.PendingResult, limit int) (scores map[string]float64, examples map[string]*domain.ReleaseExample, err error) {
	scores = make(map[string]float64)
	examples = make(map[string]*domain.ReleaseExample)
	if provider == nil || len(pending) == 0 || pending[0] == nil {
		return scores, examples, nil
	}

	meta := pending[0].Meta
	results, err := provider.SearchReleaseCandidates(ctx, meta.Artist, meta.Album, limit)
	if err != nil {
		return nil, nil, err
	}

	const defaultDiscogsScore = 0.5
	for i := range results {
		ex := results[i]
		key := ex.ReleaseKey
		if key == "" {
			key = domain.ReleaseKey(domain.ProviderDiscogs, "")
		}
		scores[key] = defaultDiscogsScore
		examples[key] = &ex
	}
	return scores, examples, nil
}

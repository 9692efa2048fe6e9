package resolver

import (
	"context"
	"math"
	"path/filepath"

	"resolverd/internal/cache"
	"resolverd/internal/domain"
)

// ReleaseHomeLookup is the subset of internal/cache.Store the
// release-home logic needs, kept as an interface so this file's pure
// decision functions are testable without a real database.
type ReleaseHomeLookup interface {
	ReleaseHome(ctx context.Context, releaseKey string) (cache.ReleaseHome, bool, error)
}

// candidateHome pairs a release key with its recorded home, for
// PreferHomeCandidate's ranking.
type candidateHome struct {
	ReleaseKey string
	Home       cache.ReleaseHome
}

// PreferHomeCandidate implements spec.md §4.3 step 3: among ambiguous
// candidates, prefer the one whose release has an existing on-disk home,
// and among those, the one whose home track count best matches
// dirTrackCount.
func PreferHomeCandidate(ctx context.Context, ambiguous []string, lookup ReleaseHomeLookup, dirTrackCount int) (string, bool) {
	var withHomes []candidateHome
	for _, key := range ambiguous {
		if home, ok, err := lookup.ReleaseHome(ctx, key); err == nil && ok {
			withHomes = append(withHomes, candidateHome{ReleaseKey: key, Home: home})
		}
	}
	if len(withHomes) == 0 {
		return "", false
	}

	best := withHomes[0]
	bestDelta := math.Abs(float64(best.Home.TrackCount - dirTrackCount))
	for _, c := range withHomes[1:] {
		delta := math.Abs(float64(c.Home.TrackCount - dirTrackCount))
		if delta < bestDelta {
			best, bestDelta = c, delta
		}
	}
	return best.ReleaseKey, true
}

// RelocateIntoHome rewrites each plan's TargetPath to live inside home,
// preserving the file's base name, per spec.md §4.1 stage 13.
func RelocateIntoHome(plans []*domain.PlannedUpdate, home string) []*domain.PlannedUpdate {
	for _, p := range plans {
		if p == nil {
			continue
		}
		base := filepath.Base(p.TargetPath)
		if p.TargetPath == "" {
			base = filepath.Base(p.Meta.Path)
		}
		p.TargetPath = filepath.Join(home, base)
	}
	return plans
}

// ReprocessQueue collects album roots that need to be re-scanned because
// a singleton relocated into their home, per spec.md §4.1 stage 15. It is
// NOT forced-prompt on re-entry, per the Open Question decision recorded
// in DESIGN.md.
type ReprocessQueue struct {
	pending []string
}

// ScheduleReprocess enqueues homeDir for reprocessing.
func (q *ReprocessQueue) ScheduleReprocess(homeDir string) {
	q.pending = append(q.pending, homeDir)
}

// Drain returns and clears the queued directories.
func (q *ReprocessQueue) Drain() []string {
	out := q.pending
	q.pending = nil
	return out
}

// Package acoustid is a thin fingerprint-lookup capability: the resolver
// core calls it for stage 1 of the MusicBrainz enrichment cascade
// (spec.md §4.6 — "AcoustID fingerprint + duration → recording id"), but
// fingerprint generation and the AcoustID web API are explicitly out of
// scope ("does not generate acoustic fingerprints itself" — spec.md §1
// Non-goals). This package defines the capability interface and a stub
// implementation that always reports no match, the way the teacher's
// internal/api/spotify exposes a capability the rest of the program calls
// through an interface rather than a concrete type.
package acoustid

import (
	"context"

	"resolverd/internal/domain"
)

// Lookup is the fingerprint-lookup capability the resolver's enrichment
// cascade depends on.
type Lookup interface {
	// MatchFingerprint returns a recording id and confidence for a
	// (fingerprint, duration) pair, or found=false if nothing matched.
	MatchFingerprint(ctx context.Context, fingerprint string, durationSeconds float64) (recordingID string, confidence float64, found bool, err error)
}

// NoopLookup never has a fingerprint to check against (no fingerprinting
// library is wired — see DESIGN.md) and always reports no match, so the
// cascade falls through to metadata search.
type NoopLookup struct{}

// MatchFingerprint implements Lookup.
func (NoopLookup) MatchFingerprint(_ context.Context, fingerprint string, _ float64) (string, float64, bool, error) {
	if fingerprint == "" {
		return "", 0, false, nil
	}
	return "", 0, false, nil
}

// EnrichWithFingerprint applies stage 1 of the MusicBrainz cascade: if
// meta already carries a fingerprint (produced by an external
// fingerprinting capability before the track enters the pipeline), try
// to resolve it to a recording id before falling through to metadata
// search.
func EnrichWithFingerprint(ctx context.Context, lookup Lookup, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	if meta.Fingerprint == "" {
		return nil, nil
	}
	recordingID, confidence, found, err := lookup.MatchFingerprint(ctx, meta.Fingerprint, meta.DurationSeconds)
	if err != nil || !found {
		return nil, err
	}
	return &domain.LookupResult{
		Provider:    domain.ProviderMusicBrainz,
		RecordingID: recordingID,
		Score:       confidence,
		Source:      domain.MatchSourceFingerprint,
	}, nil
}

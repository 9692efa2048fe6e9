package resolver

import (
	"resolverd/internal/domain"
)

// BuildPlan computes tag_changes (a diff between desired and current
// tags) and target_path for one matched pending result, dropping tracks
// with no changes, per spec.md §4.1 stage 12.
func BuildPlan(pending *domain.PendingResult, relocator Relocator, albumArtist, albumName string) (*domain.PlannedUpdate, error) {
	if pending == nil || pending.Meta == nil {
		return nil, nil
	}

	desired := desiredTags(pending.Meta)
	changes := diffTags(pending.ExistingTags, desired)

	targetPath := pending.Meta.Path
	if relocator != nil {
		tp, err := relocator.TargetPath(*pending.Meta, albumArtist, albumName)
		if err != nil {
			return nil, err
		}
		targetPath = tp
	}

	plan := &domain.PlannedUpdate{
		Meta:       pending.Meta,
		Score:      pending.Meta.MatchConfidence,
		TagChanges: changes,
		TargetPath: targetPath,
	}
	if !plan.HasChanges() {
		return nil, nil
	}
	return plan, nil
}

// desiredTags renders the fields the resolver manages into an
// uppercase-keyed tag map, the same convention existingTags snapshots
// use.
func desiredTags(meta *domain.TrackMetadata) map[string]string {
	out := map[string]string{
		"TITLE":       meta.Title,
		"ALBUM":       meta.Album,
		"ARTIST":      meta.Artist,
		"ALBUMARTIST": meta.AlbumArtist,
	}
	if meta.Composer != "" {
		out["COMPOSER"] = meta.Composer
	}
	if meta.Conductor != "" {
		out["CONDUCTOR"] = meta.Conductor
	}
	if meta.Genre != "" {
		out["GENRE"] = meta.Genre
	}
	for k, v := range meta.Extra {
		out[k] = v
	}
	return out
}

func diffTags(existing, desired map[string]string) map[string]domain.TagChange {
	changes := make(map[string]domain.TagChange)
	for field, newValue := range desired {
		if newValue == "" {
			continue
		}
		oldValue := existing[field]
		if oldValue != newValue {
			changes[field] = domain.TagChange{Old: oldValue, New: newValue}
		}
	}
	return changes
}

package resolver

import (
	"encoding/json"
	"fmt"
	"os"

	"resolverd/internal/domain"
)

// journalRecord is one line of the dry-run JSONL journal, per spec.md §6.
type journalRecord struct {
	Path         string                      `json:"path"`
	Meta         journalMeta                 `json:"meta"`
	MatchScore   float64                     `json:"match_score"`
	TagChanges   map[string]domain.TagChange `json:"tag_changes,omitempty"`
	RelocateFrom string                      `json:"relocate_from,omitempty"`
	RelocateTo   string                      `json:"relocate_to,omitempty"`
}

// journalMeta snapshots TrackMetadata with fingerprint fields redacted to
// "<omitted>", keeping the journal compact per spec.md §6.
type journalMeta struct {
	Title       string `json:"title"`
	Album       string `json:"album"`
	Artist      string `json:"artist"`
	AlbumArtist string `json:"album_artist"`
	TrackNumber int    `json:"track_number"`
	DiscNumber  int    `json:"disc_number"`
	Fingerprint string `json:"fingerprint"`
}

const redacted = "<omitted>"

// Journal appends dry-run records to a JSONL file, one Encoder.Encode
// call per planned update, matching spec.md §6's append-only format.
type Journal struct {
	file *os.File
	enc  *json.Encoder
}

// OpenJournal opens (creating/truncating-never, append-mode) the journal
// file at path.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Journal{file: f, enc: json.NewEncoder(f)}, nil
}

// Close closes the underlying file handle.
func (j *Journal) Close() error { return j.file.Close() }

// Record appends one planned update to the journal. relocateFrom is
// empty when no relocation is planned.
func (j *Journal) Record(plan *domain.PlannedUpdate, relocateFrom string) error {
	if plan == nil {
		return nil
	}
	rec := journalRecord{
		Path: plan.Meta.Path,
		Meta: journalMeta{
			Title:       plan.Meta.Title,
			Album:       plan.Meta.Album,
			Artist:      plan.Meta.Artist,
			AlbumArtist: plan.Meta.AlbumArtist,
			TrackNumber: plan.Meta.TrackNumber,
			DiscNumber:  plan.Meta.DiscNumber,
			Fingerprint: redacted,
		},
		MatchScore: plan.Score,
		TagChanges: plan.TagChanges,
	}
	if relocateFrom != "" && relocateFrom != plan.TargetPath {
		rec.RelocateFrom = relocateFrom
		rec.RelocateTo = plan.TargetPath
	}
	return j.enc.Encode(rec)
}

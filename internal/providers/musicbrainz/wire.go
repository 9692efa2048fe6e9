package musicbrainz

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"resolverd/internal/domain"
)

// The wire* types below mirror the shapes the teacher's
// internal/api/musicbrainz/client.go decodes (Artist, ArtistCredit,
// MediaTrack, Media, Track, Release), trimmed to the fields the
// resolver's contract actually consumes.

type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireArtistCredit struct {
	Artist wireArtist `json:"artist"`
}

type wireMediaTrack struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Title  string `json:"title"`
	Length int    `json:"length"` // milliseconds
}

type wireMedia struct {
	Format   string           `json:"format"`
	Position int              `json:"position"`
	Tracks   []wireMediaTrack `json:"tracks"`
}

type wireReleaseGroup struct {
	ID string `json:"id"`
}

type wireRelease struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Date         string             `json:"date"`
	ArtistCredit []wireArtistCredit `json:"artist-credit"`
	ReleaseGroup wireReleaseGroup   `json:"release-group"`
	Media        []wireMedia        `json:"media"`
}

type wireRecordingRelease struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Date  string      `json:"date"`
	Media []wireMedia `json:"media"`
}

type wireRecording struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Score        int                    `json:"score"`
	Length       int                    `json:"length"`
	ArtistCredit []wireArtistCredit     `json:"artist-credit"`
	Releases     []wireRecordingRelease `json:"releases"`
}

type recordingSearchResponse struct {
	Recordings []wireRecording `json:"recordings"`
}

type releaseSearchResponse struct {
	Releases []wireRelease `json:"releases"`
}

func artistCreditName(credits []wireArtistCredit) string {
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		names = append(names, c.Artist.Name)
	}
	return strings.Join(names, ", ")
}

func recordingToLookupResult(rec wireRecording) *domain.LookupResult {
	result := &domain.LookupResult{
		Provider:    domain.ProviderMusicBrainz,
		RecordingID: rec.ID,
		Title:       rec.Title,
		Artist:      artistCreditName(rec.ArtistCredit),
		Score:       float64(rec.Score) / 100.0,
	}
	if len(rec.Releases) > 0 {
		result.ReleaseID = rec.Releases[0].ID
		result.Album = rec.Releases[0].Title
	}
	return result
}

func releaseToExample(r wireRelease) domain.ReleaseExample {
	trackTotal := 0
	formats := make([]string, 0, len(r.Media))
	for _, m := range r.Media {
		trackTotal += len(m.Tracks)
		if m.Format != "" {
			formats = append(formats, m.Format)
		}
	}
	return domain.ReleaseExample{
		ReleaseKey: domain.ReleaseKey(domain.ProviderMusicBrainz, r.ID),
		Provider:   domain.ProviderMusicBrainz,
		Title:      r.Title,
		Artist:     artistCreditName(r.ArtistCredit),
		Date:       r.Date,
		TrackTotal: trackTotal,
		DiscCount:  len(r.Media),
		Formats:    formats,
	}
}

// trackNumberPattern extracts a leading integer from a MusicBrainz track
// "number" field, which can be a plain integer ("3") or a vinyl side
// label ("A", "B2"); only the digit run is normalized here, per spec.md
// §4.4's "internal normalization yields numbers 1, 2" for Scenario E —
// letter-only labels (pure "A"/"B" with no digit) fall through to
// sequential position within the medium, assigned by the caller.
var trackNumberPattern = regexp.MustCompile(`\d+`)

func normalizedTrackNumber(raw string, sequentialPosition int) int {
	if m := trackNumberPattern.FindString(raw); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return sequentialPosition
}

func wireReleaseToReleaseData(r wireRelease) *domain.ReleaseData {
	data := &domain.ReleaseData{
		ReleaseID:   r.ID,
		Provider:    domain.ProviderMusicBrainz,
		AlbumTitle:  r.Title,
		AlbumArtist: artistCreditName(r.ArtistCredit),
		ReleaseDate: r.Date,
		DiscCount:   len(r.Media),
		Claimed:     make(map[string]struct{}),
	}
	for discIdx, m := range r.Media {
		discNumber := m.Position
		if discNumber == 0 {
			discNumber = discIdx + 1
		}
		if m.Format != "" {
			data.Formats = append(data.Formats, m.Format)
		}
		for trackIdx, t := range m.Tracks {
			data.Tracks = append(data.Tracks, domain.ReleaseTrack{
				RecordingID:     t.ID,
				DiscNumber:      discNumber,
				Number:          normalizedTrackNumber(t.Number, trackIdx+1),
				Title:           t.Title,
				DurationSeconds: float64(t.Length) / 1000.0,
			})
		}
	}
	return data
}

var pathTokenSplitter = regexp.MustCompile(`[\s_\-]+`)

// guessFromPath implements the path-guess enrichment strategy (stage 3 of
// spec.md §4.6's MusicBrainz cascade): treat the file's parent directory
// name as "artist - album" and the file's stem as the title, the same
// loose heuristic the teacher's search.go falls back to when tags are
// absent.
func guessFromPath(path string) (artist, title string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	title = strings.TrimSpace(pathTokenSplitter.ReplaceAllString(stem, " "))

	parent := filepath.Base(filepath.Dir(path))
	if idx := strings.Index(parent, " - "); idx >= 0 {
		artist = strings.TrimSpace(parent[:idx])
	}
	return artist, title
}

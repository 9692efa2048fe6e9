// Package tagio is the tag read/write capability of spec.md §1: each
// supported container format gets its own implementation of
// resolver.TagIO, selected by file extension. The FLAC implementation
// adapts the teacher's write-only metadata.go (itself rewritten in
// internal/core/downloader/metadata.go as a MetadataProcessor) to also
// read tags back out of a library file, which the downloader never
// needed to do.
package tagio

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"resolverd/internal/domain"
)

// FLAC is the resolver.TagIO implementation for .flac files, built on
// go-flac/flacvorbis/flacpicture exactly as the teacher's FLAC writer is.
type FLAC struct{}

// NewFLAC returns a ready-to-use FLAC tag I/O capability.
func NewFLAC() *FLAC { return &FLAC{} }

// vorbisFieldOrder mirrors the field order the teacher's addField calls
// write in, so a diff of two resolver runs over the same file reads the
// same way a diff of two teacher runs would.
var vorbisFieldOrder = []string{
	flacvorbis.FIELD_TITLE,
	flacvorbis.FIELD_ARTIST,
	flacvorbis.FIELD_ALBUM,
	"ALBUMARTIST",
	flacvorbis.FIELD_TRACKNUMBER,
	"TOTALTRACKS",
	"DISCNUMBER",
	"TOTALDISCS",
	flacvorbis.FIELD_DATE,
	"YEAR",
	"ORIGINALDATE",
	"GENRE",
	"COMPOSER",
	"CONDUCTOR",
	"WORK",
	"MOVEMENT",
	"PERFORMER",
	"ISRC",
	"COPYRIGHT",
	"LABEL",
	"CATALOGNUMBER",
	"MUSICBRAINZ_TRACKID",
	"MUSICBRAINZ_ALBUMID",
	"MUSICBRAINZ_RELEASETRACKID",
	"ENCODER",
	"ENCODING",
	"SOURCE",
	"LENGTH",
}

// ReadTags parses the file's Vorbis comment block (if any) into an
// uppercase-keyed map and the subset of TrackMetadata the resolver cares
// about. A file with no comment block yet (freshly ripped, untagged)
// returns an empty map and a zero-value TrackMetadata, not an error.
func (FLAC) ReadTags(path string) (map[string]string, domain.TrackMetadata, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, domain.TrackMetadata{}, fmt.Errorf("parse flac: %w", err)
	}

	meta := domain.TrackMetadata{Path: path}
	tags := make(map[string]string)

	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			comment, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			for _, raw := range comment.Comments {
				key, value, ok := splitVorbisComment(raw)
				if !ok {
					continue
				}
				tags[key] = value
			}
		case flac.StreamInfo:
			if seconds, ok := streamInfoDuration(block.Data); ok {
				meta.DurationSeconds = seconds
			}
		}
	}

	applyTagsToMetadata(tags, &meta)
	return tags, meta, nil
}

// WriteTags applies tagChanges to path's Vorbis comment block. The whole
// block is rebuilt from the merged (existing ∪ changed) field set, the
// same "strip and rewrite clean" approach the teacher's AddMetadata
// takes, except starting from what's already on disk instead of from
// scratch. An empty TagChange.New deletes that field.
func (f FLAC) WriteTags(path string, tagChanges map[string]domain.TagChange) error {
	if len(tagChanges) == 0 {
		return nil
	}

	file, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	merged := make(map[string]string)
	var kept []*flac.MetaDataBlock
	for _, block := range file.Meta {
		if block.Type == flac.VorbisComment {
			if comment, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
				for _, raw := range comment.Comments {
					if key, value, ok := splitVorbisComment(raw); ok {
						merged[key] = value
					}
				}
			}
			continue
		}
		kept = append(kept, block)
	}

	for field, change := range tagChanges {
		field = strings.ToUpper(field)
		if change.New == "" {
			delete(merged, field)
			continue
		}
		merged[field] = change.New
	}

	comment := flacvorbis.New()
	for _, field := range vorbisFieldOrder {
		if value, ok := merged[field]; ok {
			comment.Add(field, value)
			delete(merged, field)
		}
	}
	// Anything not in the canonical order (unrecognized Extra fields)
	// still gets written, just appended after the known fields.
	remaining := make([]string, 0, len(merged))
	for field := range merged {
		remaining = append(remaining, field)
	}
	sort.Strings(remaining)
	for _, field := range remaining {
		comment.Add(field, merged[field])
	}

	vorbisBlock := comment.Marshal()
	file.Meta = append(kept, &vorbisBlock)

	if err := file.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

// WriteCoverArt replaces the file's picture block with coverData,
// preferring the front-cover picture type and falling back to a generic
// "other" picture type on encode failure, exactly as the teacher's
// addCoverArt does.
func (FLAC) WriteCoverArt(path string, coverData []byte) error {
	if len(coverData) == 0 {
		return nil
	}
	file, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	var kept []*flac.MetaDataBlock
	for _, block := range file.Meta {
		if block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	file.Meta = kept

	mime := detectImageFormat(coverData)
	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", coverData, mime)
	if err != nil {
		picture, err = flacpicture.NewFromImageData(flacpicture.PictureTypeOther, "Cover", coverData, mime)
		if err != nil {
			return fmt.Errorf("encode cover art: %w", err)
		}
	}
	block := picture.Marshal()
	file.Meta = append(file.Meta, &block)

	if err := file.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func splitVorbisComment(raw string) (key, value string, ok bool) {
	idx := strings.IndexByte(raw, '=')
	if idx < 0 {
		return "", "", false
	}
	return strings.ToUpper(raw[:idx]), raw[idx+1:], true
}

// applyTagsToMetadata fills in the TrackMetadata fields the resolver
// models explicitly; everything else stays in the caller's tags map for
// Extra.
func applyTagsToMetadata(tags map[string]string, meta *domain.TrackMetadata) {
	meta.Title = tags[flacvorbis.FIELD_TITLE]
	meta.Artist = tags[flacvorbis.FIELD_ARTIST]
	meta.Album = tags[flacvorbis.FIELD_ALBUM]
	meta.AlbumArtist = tags["ALBUMARTIST"]
	meta.Composer = tags["COMPOSER"]
	meta.Conductor = tags["CONDUCTOR"]
	meta.Work = tags["WORK"]
	meta.Movement = tags["MOVEMENT"]
	meta.Genre = tags["GENRE"]

	if performer, ok := tags["PERFORMER"]; ok {
		for _, name := range strings.Split(performer, "; ") {
			meta.AddPerformer(strings.TrimSpace(name))
		}
	}

	if n, err := strconv.Atoi(tags[flacvorbis.FIELD_TRACKNUMBER]); err == nil {
		meta.TrackNumber = n
	}
	if n, err := strconv.Atoi(tags["DISCNUMBER"]); err == nil {
		meta.DiscNumber = n
	}
	if n, err := strconv.Atoi(tags["TOTALTRACKS"]); err == nil {
		meta.TrackTotal = n
	}

	meta.Extra = make(map[string]string)
	modeled := map[string]bool{
		flacvorbis.FIELD_TITLE: true, flacvorbis.FIELD_ARTIST: true, flacvorbis.FIELD_ALBUM: true,
		"ALBUMARTIST": true, "COMPOSER": true, "CONDUCTOR": true, "WORK": true, "MOVEMENT": true,
		"GENRE": true, "PERFORMER": true, flacvorbis.FIELD_TRACKNUMBER: true, "DISCNUMBER": true,
		"TOTALTRACKS": true,
	}
	for key, value := range tags {
		if !modeled[key] {
			meta.Extra[key] = value
		}
	}
}

// streamInfoDuration computes the track duration in seconds from a raw
// STREAMINFO block, per the FLAC format: bytes 10-17 pack a 20-bit sample
// rate, 3-bit (channels-1), 5-bit (bits-per-sample-1), and 36-bit total
// sample count into a single big-endian 64-bit field. The teacher's
// writer never needed this; only the resolver's per-track scoring and
// assignment stages (which compare durations against provider data) do.
func streamInfoDuration(data []byte) (seconds float64, ok bool) {
	if len(data) < 18 {
		return 0, false
	}
	combined := binary.BigEndian.Uint64(data[10:18])
	sampleRate := (combined >> 44) & 0xFFFFF
	totalSamples := combined & 0xFFFFFFFFF
	if sampleRate == 0 {
		return 0, false
	}
	return float64(totalSamples) / float64(sampleRate), true
}

// detectImageFormat sniffs the MIME type of raw cover art bytes, exactly
// as the teacher's detectImageFormat does.
func detectImageFormat(data []byte) string {
	if len(data) < 4 {
		return "image/jpeg"
	}
	switch {
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

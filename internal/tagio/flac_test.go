package tagio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"resolverd/internal/domain"
)

func TestSplitVorbisComment(t *testing.T) {
	key, value, ok := splitVorbisComment("ALBUMARTIST=Miles Davis")
	if !ok || key != "ALBUMARTIST" || value != "Miles Davis" {
		t.Fatalf("got key=%q value=%q ok=%v", key, value, ok)
	}
	if _, _, ok := splitVorbisComment("not a comment"); ok {
		t.Fatalf("expected malformed comment to be rejected")
	}
}

func TestApplyTagsToMetadataSplitsPerformers(t *testing.T) {
	tags := map[string]string{
		"TITLE":       "So What",
		"ARTIST":      "Miles Davis",
		"ALBUMARTIST": "Miles Davis",
		"PERFORMER":   "John Coltrane; Bill Evans",
		"TRACKNUMBER": "1",
		"DISCNUMBER":  "1",
		"ISRC":        "USMI10500001",
	}
	var meta domain.TrackMetadata
	applyTagsToMetadata(tags, &meta)

	if meta.Title != "So What" || meta.Artist != "Miles Davis" {
		t.Fatalf("unexpected modeled fields: %+v", meta)
	}
	if len(meta.Performers) != 2 || meta.Performers[0] != "John Coltrane" || meta.Performers[1] != "Bill Evans" {
		t.Fatalf("unexpected performers split: %+v", meta.Performers)
	}
	if meta.TrackNumber != 1 || meta.DiscNumber != 1 {
		t.Fatalf("unexpected track/disc number: %+v", meta)
	}
	if meta.Extra["ISRC"] != "USMI10500001" {
		t.Fatalf("expected unmodeled ISRC field preserved in Extra, got %+v", meta.Extra)
	}
	if _, stillThere := meta.Extra["TITLE"]; stillThere {
		t.Fatalf("modeled field TITLE should not leak into Extra")
	}
}

func TestStreamInfoDuration(t *testing.T) {
	// Build a synthetic STREAMINFO payload: 44.1kHz, stereo, 16-bit,
	// total_samples chosen so duration comes out to exactly 2 seconds.
	const sampleRate = 44100
	const totalSamples = sampleRate * 2

	data := make([]byte, 18)
	var packed uint64
	packed |= uint64(sampleRate) << 44
	packed |= uint64(1) << 41 // channels-1 = 1 (stereo)
	packed |= uint64(15) << 36 // bits-per-sample-1 = 15 (16-bit)
	packed |= uint64(totalSamples)
	binary.BigEndian.PutUint64(data[10:18], packed)

	seconds, ok := streamInfoDuration(data)
	if !ok {
		t.Fatalf("expected a parseable STREAMINFO block")
	}
	if seconds != 2.0 {
		t.Fatalf("expected 2.0s duration, got %v", seconds)
	}

	if _, ok := streamInfoDuration(make([]byte, 4)); ok {
		t.Fatalf("expected short block to be rejected")
	}
}

func TestDetectImageFormat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0x00, 0x00}, "image/jpeg"},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBP")...), "image/webp"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"unknown defaults to jpeg", []byte{0x00, 0x00}, "image/jpeg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectImageFormat(tc.data); got != tc.want {
				t.Fatalf("detectImageFormat(%s) = %s, want %s", tc.name, got, tc.want)
			}
		})
	}
}

// TestReadTagsOnInvalidFileReturnsError mirrors the teacher's own
// metadata_test.go approach of exercising error handling against a
// deliberately invalid FLAC file, since a real encoded fixture isn't
// available to this test suite.
func TestReadTagsOnInvalidFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-really.flac")
	if err := os.WriteFile(path, []byte("fLaC"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	_, _, err := NewFLAC().ReadTags(path)
	if err == nil {
		t.Fatalf("expected an error parsing a truncated FLAC stream")
	}
}

func TestWriteTagsNoChangesIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "untouched.flac")
	if err := os.WriteFile(path, []byte("fLaC"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}

	if err := NewFLAC().WriteTags(path, nil); err != nil {
		t.Fatalf("expected empty tagChanges to be a no-op, got %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected file untouched by a no-op write")
	}
}

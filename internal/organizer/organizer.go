// Package organizer is the relocation/target-path capability of
// spec.md §1, generalizing the teacher's download-time path layout
// (artistDir/albumDir/"NN - Title.flac" in downloader.go) from "lay out
// a freshly downloaded album" into "relocate an already-tagged library
// file to the path its resolved release implies".
package organizer

import (
	"fmt"
	"os"
	"path/filepath"

	"resolverd/internal/domain"
	"resolverd/internal/shared"
)

const maxFilenameBytes = 255

// Organizer is the resolver.Relocator implementation. LibraryRoot is the
// configured root all target paths are rooted under.
type Organizer struct {
	LibraryRoot string
}

// New returns an Organizer rooted at libraryRoot.
func New(libraryRoot string) *Organizer {
	return &Organizer{LibraryRoot: libraryRoot}
}

// TargetPath computes "<root>/<AlbumArtist>/<AlbumName>[/Disc N]/NN -
// Title.ext", matching the teacher's "<artistDir>/<albumDir>/NN -
// Title.flac" shape but adding a "Disc N" subdirectory for tracks whose
// disc number is greater than 1; disc-1 tracks stay directly in the album
// directory whatever the release's disc count.
func (o *Organizer) TargetPath(meta domain.TrackMetadata, albumArtist, albumName string) (string, error) {
	if albumArtist == "" {
		albumArtist = meta.AlbumArtist
	}
	if albumName == "" {
		albumName = meta.Album
	}

	dir := filepath.Join(o.LibraryRoot, shared.SanitizeFileName(albumArtist), shared.SanitizeFileName(albumName))
	if meta.DiscNumber > 1 {
		dir = filepath.Join(dir, fmt.Sprintf("Disc %d", meta.DiscNumber))
	}

	ext := filepath.Ext(meta.Path)
	if ext == "" {
		ext = ".flac"
	}

	stem := trackFileStem(meta.TrackNumber, meta.Title)
	name := shared.TruncateFileName(stem, ext, maxFilenameBytes)
	return filepath.Join(dir, name), nil
}

// trackFileStem mirrors the teacher's GetTrackFilename, minus the
// extension (added separately so TruncateFileName can budget for it).
func trackFileStem(trackNumber int, title string) string {
	sanitized := shared.SanitizeFileName(title)
	if trackNumber == 0 {
		return sanitized
	}
	return fmt.Sprintf("%02d - %s", trackNumber, sanitized)
}

// Move relocates src to dst, creating dst's parent directory as needed.
// A same-path move is a no-op, satisfying the idempotence spec.md §1
// requires. Cross-device renames fall back to copy-then-unlink per
// spec.md §7's move-failure handling table.
func (o *Organizer) Move(src, dst string) error {
	if src == dst {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("organizer: create target dir: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		if !isCrossDevice(err) {
			return fmt.Errorf("organizer: move %s -> %s: %w", src, dst, err)
		}
		if err := copyThenUnlink(src, dst); err != nil {
			return fmt.Errorf("organizer: cross-device move %s -> %s: %w", src, dst, err)
		}
	}
	return nil
}

func copyThenUnlink(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := copyAll(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

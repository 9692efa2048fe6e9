package tagio

import (
	"fmt"
	"path/filepath"
	"strings"

	"resolverd/internal/domain"
)

// ErrUnsupportedContainer is returned by the stub implementations' ReadTags
// and WriteTags for a container format the resolver can enumerate but
// neither reads nor writes tags for.
var ErrUnsupportedContainer = fmt.Errorf("tagio: unsupported container for writing")

// Facade dispatches ReadTags/WriteTags to the per-extension implementation,
// satisfying resolver.TagIO itself so the pipeline only ever holds one
// TagIO value regardless of how many container formats a library mixes.
type Facade struct {
	flac *FLAC
	id3  *ID3
	mp4  *MP4
}

// NewFacade returns a Facade with all supported container implementations
// wired in.
func NewFacade() *Facade {
	return &Facade{flac: NewFLAC(), id3: NewID3(), mp4: NewMP4()}
}

func (f *Facade) pick(path string) (interface {
	ReadTags(string) (map[string]string, domain.TrackMetadata, error)
	WriteTags(string, map[string]domain.TagChange) error
}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return f.flac, nil
	case ".mp3":
		return f.id3, nil
	case ".m4a", ".mp4", ".alac":
		return f.mp4, nil
	default:
		return nil, fmt.Errorf("tagio: unrecognized container extension %q", filepath.Ext(path))
	}
}

func (f *Facade) ReadTags(path string) (map[string]string, domain.TrackMetadata, error) {
	impl, err := f.pick(path)
	if err != nil {
		return nil, domain.TrackMetadata{}, err
	}
	return impl.ReadTags(path)
}

func (f *Facade) WriteTags(path string, tagChanges map[string]domain.TagChange) error {
	impl, err := f.pick(path)
	if err != nil {
		return err
	}
	return impl.WriteTags(path, tagChanges)
}

// Package resolver drives the per-directory pipeline (spec.md §4.1): the
// 15 ordered stages from album batching through finalize. It depends on
// internal/cache, internal/scoring, internal/assign, and the provider
// adapters, plus a handful of small capability ports for concerns the
// spec explicitly keeps external (tag I/O, prompting, relocation,
// fingerprinting). Collecting those ports here generalizes the
// teacher's internal/interfaces package — itself a response to the
// original daemon's private-helper reach-through described in spec.md
// §9 — into the "DaemonServices" shape the expanded spec calls for.
package resolver

import (
	"context"

	"resolverd/internal/domain"
)

// ReleaseProvider is satisfied by both internal/providers/musicbrainz
// and internal/providers/discogs; it is the four-operation contract of
// spec.md §4.6.
type ReleaseProvider interface {
	Enrich(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error)
	Supplement(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error)
	SearchReleaseCandidates(ctx context.Context, artistHint, albumHint string, limit int) ([]domain.ReleaseExample, error)
	GetRelease(ctx context.Context, releaseID string) (*domain.ReleaseData, error)
}

// TagIO is the tag read/write capability, abstracted per spec.md §1
// ("tag reading/writing for specific container formats... abstracted as
// a tag I/O capability").
type TagIO interface {
	// ReadTags returns the existing tags on path as an uppercase-keyed
	// map, and partially-filled TrackMetadata fields it could parse.
	ReadTags(path string) (existingTags map[string]string, meta domain.TrackMetadata, err error)
	// WriteTags applies tagChanges (field -> new value) to the file at
	// path. Implementations must not partially write: either every
	// change lands or none does.
	WriteTags(path string, tagChanges map[string]domain.TagChange) error
}

// Relocator is the "relocate file" capability of spec.md §1, with the
// idempotence the spec requires (a repeated relocate to the same target
// is a no-op).
type Relocator interface {
	// TargetPath computes the desired path for meta under the
	// organizer's naming scheme.
	TargetPath(meta domain.TrackMetadata, albumArtist, albumName string) (string, error)
	// Move relocates a file from src to dst, creating parent directories
	// as needed. If dst already equals src, Move is a no-op.
	Move(src, dst string) error
}

// Option is the prompt vocabulary of spec.md §6: a single candidate
// presented to the operator.
type Option struct {
	Provider     domain.Provider
	ReleaseID    string
	DisplayLabel string
	Score        float64
	Diagnostics  []string
}

// PromptChoice is what the operator's input resolves to, using the
// reserved single-character vocabulary of spec.md §6.
type PromptChoice struct {
	Skip      bool
	Delete    bool
	Archive   bool
	Ignore    bool
	Forced    bool
	Provider  domain.Provider
	ReleaseID string
}

// Prompter is the terminal prompt capability of spec.md §1.
type Prompter interface {
	// Choose presents options for directoryPath and blocks until the
	// operator responds.
	Choose(directoryPath string, options []Option) (PromptChoice, error)
}

// Notifier is an optional post-apply collaborator (e.g. telling a media
// server to rescan); it must never block or fail the apply.
type Notifier interface {
	NotifyLibraryScan(ctx context.Context) error
}

package domain

import "errors"

// Sentinel errors surfaced to callers of the resolver, mirroring the
// teacher's shared.ErrDownloadCancelled / shared.ErrNoItemsSelected style of
// exported, comparable errors instead of ad-hoc fmt.Errorf strings.
var (
	// ErrNoReleaseCandidates is returned when a directory yields no
	// candidates and neither an interactive prompt nor deferral applies.
	ErrNoReleaseCandidates = errors.New("no release candidates")

	// ErrDeferred is returned (not logged as a failure) when a directory's
	// decision was postponed to the deferred-prompt queue.
	ErrDeferred = errors.New("directory resolution deferred")

	// ErrDirectoryUnchanged signals the hash-unchanged skip path; it is a
	// non-error condition surfaced so callers can distinguish "already
	// resolved, nothing to do" from "failed".
	ErrDirectoryUnchanged = errors.New("directory hash unchanged since last resolution")

	// ErrPlanFailed marks a PlannedUpdate whose apply failed and whose
	// move (if any) was rolled back.
	ErrPlanFailed = errors.New("plan failed to apply")
)

// ErrKind classifies an error into one of the kinds enumerated in the
// resolver's error-handling design, independent of the concrete error type
// any one collaborator raises.
type ErrKind int

const (
	ErrKindUnknown ErrKind = iota
	ErrKindTransientNetwork
	ErrKindNotFound
	ErrKindMalformedResponse
	ErrKindTagReadFailure
	ErrKindTagWriteFailure
	ErrKindMoveFailureSameFS
	ErrKindMoveFailureOther
	ErrKindFilenameTooLong
	ErrKindCacheCorruption
	ErrKindConfigInvalid
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindTransientNetwork:
		return "transient_network"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindMalformedResponse:
		return "malformed_response"
	case ErrKindTagReadFailure:
		return "tag_read_failure"
	case ErrKindTagWriteFailure:
		return "tag_write_failure"
	case ErrKindMoveFailureSameFS:
		return "move_failure_same_fs"
	case ErrKindMoveFailureOther:
		return "move_failure_other"
	case ErrKindFilenameTooLong:
		return "filename_too_long"
	case ErrKindCacheCorruption:
		return "cache_corruption"
	case ErrKindConfigInvalid:
		return "config_invalid"
	default:
		return "unknown"
	}
}

// SkipReason is one of the well-known diagnostic strings recorded when a
// directory is skipped, matching the names used in spec.md/audit payloads.
type SkipReason string

const (
	SkipDirectoryHashUnchanged    SkipReason = "directory_hash_unchanged"
	SkipDirectoryAlreadyProcessed SkipReason = "directory_already_processed"
	SkipNoReleaseCandidates       SkipReason = "no_release_candidates"
	SkipLowCoverage               SkipReason = "low_coverage"
	SkipUnexpectedFailure         SkipReason = "unexpected_failure"
	SkipOperatorDeleted           SkipReason = "operator_deleted"
	SkipOperatorArchived          SkipReason = "operator_archived"
	SkipOperatorIgnored           SkipReason = "operator_ignored"
)

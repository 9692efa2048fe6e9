package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"resolverd/internal/assign"
	"resolverd/internal/audit"
	"resolverd/internal/cache"
	"resolverd/internal/domain"
	"resolverd/internal/scoring"
	"resolverd/internal/shared"
)

// SpotifyHintSource is the capability internal/providers/spotifyhint
// satisfies: a best-effort, always-weak lookup of a directory's
// canonical artist/album spelling. Declared here (rather than imported
// directly) so resolver never depends on the Spotify SDK itself.
type SpotifyHintSource interface {
	Hint(ctx context.Context, artistGuess, albumGuess string) (artist, album string, found bool, err error)
}

// Pipeline holds every collaborator ProcessDirectory needs: the cache
// store, provider adapters keyed by provider, and the capability ports
// of ports.go. This is the "DaemonServices port" value object the
// expanded spec calls for, replacing the original daemon's
// reach-through-private-helpers design (spec.md §9).
type Pipeline struct {
	Store     *cache.Store
	Audit     *audit.Log
	Providers map[domain.Provider]ReleaseProvider
	TagIO     TagIO
	Relocator Relocator
	Prompter  Prompter
	Notifier  Notifier
	Logger    shared.Logger
	Warnings  *shared.WarningCollector
	SpotifyHints SpotifyHintSource

	DiscogsEnabled    bool
	Interactive       bool
	DeferPrompts      bool
	OrganizerEnabled  bool
	DryRunJournalPath string
	DryRun            bool

	reprocess *ReprocessQueue
}

// Outcome is the terminal result of ProcessDirectory, per spec.md §4.1's
// contract: "(a) a set of applied plans, (b) a skip with a recorded
// reason, or (c) a deferred entry."
type Outcome struct {
	State       State
	SkipReason  domain.SkipReason
	AppliedPlans int
	Deferred     bool
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// ProcessDirectory runs the 15-stage pipeline of spec.md §4.1 against
// batch. It is idempotent: calling it a second time with an unchanged
// directory and unchanged cache is a no-op (invariant 1 of spec.md §8).
func (p *Pipeline) ProcessDirectory(ctx context.Context, batch domain.DirectoryBatch, forcePrompt bool) (Outcome, error) {
	dctx := domain.NewDirectoryContext(batch.DirectoryPath, forcePrompt)
	dctx.DirTrackCount = len(batch.Files)
	dctx.IsSingleton = len(batch.Files) == 1

	// Stage 2: directory hash & skip policies.
	hash, err := DirectoryHash(batch.Files)
	if err != nil {
		return p.recordSkip(ctx, dctx, domain.SkipUnexpectedFailure, err)
	}
	dctx.DirectoryHash = hash

	if !forcePrompt {
		if ignored, err := p.Store.IsIgnored(ctx, batch.DirectoryPath); err == nil && ignored {
			dctx.Diagnose(string(domain.SkipOperatorIgnored))
			return Outcome{State: StateSkipped, SkipReason: domain.SkipOperatorIgnored}, nil
		}
		if cachedHash, found, err := p.Store.DirectoryHash(ctx, batch.DirectoryPath); err == nil && found && cachedHash == hash {
			if _, releaseFound, err := p.Store.DirectoryRelease(ctx, batch.DirectoryPath); err == nil && releaseFound {
				dctx.Diagnose(string(domain.SkipDirectoryHashUnchanged))
				return Outcome{State: StateSkipped, SkipReason: domain.SkipDirectoryHashUnchanged}, nil
			}
		}
		if p.OrganizerEnabled {
			allProcessed := true
			for _, f := range batch.Files {
				if processed, err := p.isFileProcessed(ctx, f); err != nil || !processed {
					allProcessed = false
					break
				}
			}
			if allProcessed && len(batch.Files) > 0 {
				dctx.Diagnose(string(domain.SkipDirectoryAlreadyProcessed))
				return Outcome{State: StateSkipped, SkipReason: domain.SkipDirectoryAlreadyProcessed}, nil
			}
		}
	}

	// Stage 3: initialize from cache.
	p.initializeFromCache(ctx, dctx)

	// Stage 4: analyze.
	dctx.DirYear = inferYear(batch.DirectoryPath)

	// Stage 5: per-track enrichment.
	for _, path := range batch.Files {
		pending, err := p.enrichTrack(ctx, dctx, path)
		if err != nil {
			p.Warnings.AddProviderLookupWarning("enrichment", path, err.Error())
		}
		dctx.Files = append(dctx.Files, pending)
	}

	// Stage 6: candidate sources.
	p.collectCandidates(ctx, dctx)

	// Stage 7: score adjustment.
	adjusted := p.adjustScores(ctx, dctx)

	// Stage 8: release decision.
	coverage := p.computeCoverage(dctx, adjusted)
	decision := Decide(adjusted, coverage, dctx.IsSingleton)
	decision = p.refineDecision(ctx, dctx, decision)

	switch decision.Outcome {
	case OutcomeNoCandidates:
		return p.handleNoCandidates(ctx, dctx)
	case OutcomeLowCoverage:
		return p.handleLowCoverage(ctx, dctx, decision)
	case OutcomeAmbiguous:
		return p.handleAmbiguous(ctx, dctx, decision)
	}

	dctx.BestReleaseKey = decision.BestKey

	// Stage 9: finalize release.
	if err := p.finalizeRelease(ctx, dctx); err != nil {
		return p.recordSkip(ctx, dctx, domain.SkipUnexpectedFailure, err)
	}

	// Stage 10: assign tracks.
	p.assignTracks(dctx)

	// Stage 11: unmatched policy.
	if len(dctx.Unmatched) > 0 && p.Interactive {
		p.Logger.Warning(fmt.Sprintf("%d unmatched tracks in %s", len(dctx.Unmatched), batch.DirectoryPath))
	}

	// Stage 12-13: plan construction + transforms.
	plans := p.buildPlans(dctx)

	homeDir, relocating := p.maybeRelocateIntoHome(ctx, dctx, plans)
	if relocating {
		plans = RelocateIntoHome(plans, homeDir)
	}

	// Stage 14: apply.
	applied := 0
	if p.DryRun {
		journal, err := OpenJournal(p.DryRunJournalPath)
		if err == nil {
			for _, plan := range plans {
				_ = journal.Record(plan, plan.Meta.Path)
			}
			journal.Close()
		}
	} else {
		for _, plan := range plans {
			result := ApplyPlan(ctx, p.Store, p.Relocator, p.TagIO, plan)
			if result.Applied {
				applied++
			} else if result.Err != nil {
				p.Warnings.AddTagWriteWarning(plan.Meta.Path, result.Err.Error())
			}
		}
		if applied > 0 && p.Notifier != nil {
			_ = p.Notifier.NotifyLibraryScan(ctx)
		}
	}

	// Stage 15: finalize directory.
	p.finalizeDirectory(ctx, dctx)
	if relocating {
		p.scheduleReprocess(homeDir)
	}

	p.Audit.Append(ctx, "directory_complete", map[string]any{
		"directory":           batch.DirectoryPath,
		"release_key":         dctx.BestReleaseKey,
		"applied_provider":    string(dctx.AppliedProvider),
		"applied_release_id":  dctx.AppliedReleaseID,
		"planned_count":       len(plans),
		"unmatched_count":     len(dctx.Unmatched),
		"applied_plans":       applied,
	})

	return Outcome{State: StateComplete, AppliedPlans: applied}, nil
}

func (p *Pipeline) isFileProcessed(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return p.Store.IsProcessed(ctx, path, info.ModTime().UnixNano(), info.Size())
}

func (p *Pipeline) recordSkip(ctx context.Context, dctx *domain.DirectoryContext, reason domain.SkipReason, cause error) (Outcome, error) {
	dctx.Diagnose(string(reason))
	p.Audit.Append(ctx, "directory_complete", map[string]any{
		"directory":   dctx.DirectoryPath,
		"skip_reason": string(reason),
	})
	if cause != nil {
		p.Logger.Error(fmt.Sprintf("%s: %v", dctx.DirectoryPath, cause))
	}
	return Outcome{State: StateSkipped, SkipReason: reason}, nil
}

func (p *Pipeline) initializeFromCache(ctx context.Context, dctx *domain.DirectoryContext) {
	if provider, releaseID, score, found, err := p.Store.DirectoryRelease(ctx, dctx.DirectoryPath); err == nil && found {
		dctx.ForcedProvider = provider
		dctx.ForcedReleaseID = releaseID
		dctx.ForcedReleaseScore = score
		return
	}
	if provider, releaseID, score, found, err := p.Store.HashRelease(ctx, dctx.DirectoryHash); err == nil && found {
		dctx.ForcedProvider = provider
		dctx.ForcedReleaseID = releaseID
		dctx.ForcedReleaseScore = score
	}
}

func inferYear(directoryPath string) int {
	segments := []string{filepath.Base(directoryPath), filepath.Base(filepath.Dir(directoryPath))}
	for _, seg := range segments {
		if m := yearPattern.FindString(seg); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				return y
			}
		}
	}
	return 0
}

func (p *Pipeline) enrichTrack(ctx context.Context, dctx *domain.DirectoryContext, path string) (*domain.PendingResult, error) {
	existingTags, meta, err := p.TagIO.ReadTags(path)
	if err != nil {
		p.Warnings.AddTagReadWarning(path, err.Error())
		existingTags = map[string]string{}
		meta = domain.TrackMetadata{Path: path}
	}
	meta.Path = path

	pending := &domain.PendingResult{Meta: &meta, ExistingTags: existingTags}

	mb, hasMB := p.Providers[domain.ProviderMusicBrainz]
	if !hasMB {
		return pending, nil
	}

	if dctx.HasForcedRelease() {
		pending.Result = &domain.LookupResult{
			Provider:  dctx.ForcedProvider,
			ReleaseID: dctx.ForcedReleaseID,
			Score:     dctx.ForcedReleaseScore,
			Source:    domain.MatchSourceReleaseMemory,
		}
		pending.Matched = true
		return pending, nil
	}

	result, err := mb.Enrich(ctx, meta)
	if err != nil {
		return pending, err
	}
	if result == nil {
		result, err = mb.Supplement(ctx, meta)
		if err != nil {
			return pending, err
		}
	}
	if result != nil {
		pending.Result = result
		pending.Matched = true
	}
	return pending, nil
}

func (p *Pipeline) collectCandidates(ctx context.Context, dctx *domain.DirectoryContext) {
	mbScores := CollectMusicBrainzCandidates(dctx.Files, dctx.DirTrackCount, dctx.IsSingleton)
	for k, v := range mbScores {
		dctx.ReleaseScores[k] = v
	}

	if dctx.HasForcedRelease() {
		key := domain.ReleaseKey(dctx.ForcedProvider, dctx.ForcedReleaseID)
		dctx.ReleaseScores[key] = dctx.ForcedReleaseScore
	}

	if p.DiscogsEnabled {
		if discogsProvider, ok := p.Providers[domain.ProviderDiscogs]; ok {
			scores, examples, err := CollectDiscogsCandidates(ctx, discogsProvider, dctx.Files, 5)
			if err == nil {
				for k, v := range scores {
					dctx.ReleaseScores[k] = v
					dctx.ReleaseExamples[k] = examples[k]
				}
			}
		}
	}
}

func (p *Pipeline) adjustScores(ctx context.Context, dctx *domain.DirectoryContext) map[string]float64 {
	candidates := make([]scoring.Candidate, 0, len(dctx.ReleaseScores))
	for key, base := range dctx.ReleaseScores {
		provider, _, _ := domain.SplitReleaseKey(key)
		candidates = append(candidates, scoring.Candidate{
			ReleaseKey: key,
			Provider:   provider,
			BaseScore:  base,
			Example:    dctx.ReleaseExamples[key],
		})
	}

	titles := make([]string, 0, len(dctx.Files))
	for _, f := range dctx.Files {
		if f != nil && f.Meta != nil && f.Meta.Title != "" {
			titles = append(titles, f.Meta.Title)
		}
	}

	artistHints := collectHints(dctx.Files, func(m *domain.TrackMetadata) string { return m.Artist })
	albumHints := collectHints(dctx.Files, func(m *domain.TrackMetadata) string { return m.Album })
	artistHints, albumHints = p.addSpotifyHint(ctx, dctx, artistHints, albumHints)

	scoringCtx := scoring.Context{
		DirTrackCount: dctx.DirTrackCount,
		DirYear:       dctx.DirYear,
		DirectoryPath: dctx.DirectoryPath,
		PendingTitles: titles,
		ArtistHints:   artistHints,
		AlbumHints:    albumHints,
	}
	return scoring.AdjustScores(candidates, scoringCtx)
}

// addSpotifyHint appends one extra, always-weak TagHint pair sourced from
// Spotify's catalog, if a hint source is configured and the existing
// (strong or weak) hints give it enough of a guess to search with. A
// Spotify lookup failure is not a pipeline error: it just means no extra
// hint gets added.
func (p *Pipeline) addSpotifyHint(ctx context.Context, dctx *domain.DirectoryContext, artistHints, albumHints []scoring.TagHint) ([]scoring.TagHint, []scoring.TagHint) {
	if p.SpotifyHints == nil {
		return artistHints, albumHints
	}

	artistGuess := firstNonEmptyHint(artistHints)
	albumGuess := firstNonEmptyHint(albumHints)
	if albumGuess == "" {
		albumGuess = filepath.Base(dctx.DirectoryPath)
	}

	artist, album, found, err := p.SpotifyHints.Hint(ctx, artistGuess, albumGuess)
	if err != nil || !found {
		return artistHints, albumHints
	}
	if artist != "" {
		artistHints = append(artistHints, scoring.TagHint{Value: artist, Strong: false})
	}
	if album != "" {
		albumHints = append(albumHints, scoring.TagHint{Value: album, Strong: false})
	}
	return artistHints, albumHints
}

func firstNonEmptyHint(hints []scoring.TagHint) string {
	for _, h := range hints {
		if h.Value != "" {
			return h.Value
		}
	}
	return ""
}

func collectHints(files []*domain.PendingResult, field func(*domain.TrackMetadata) string) []scoring.TagHint {
	hints := make([]scoring.TagHint, 0, len(files))
	for _, f := range files {
		if f == nil || f.Meta == nil {
			continue
		}
		strong := len(f.ExistingTags) > 0
		hints = append(hints, scoring.TagHint{Value: field(f.Meta), Strong: strong})
	}
	return hints
}

func (p *Pipeline) computeCoverage(dctx *domain.DirectoryContext, adjusted map[string]float64) float64 {
	if len(adjusted) == 0 {
		return 0
	}
	bestKey, _, _ := scoring.BestCandidate(adjusted)
	example := dctx.ReleaseExamples[bestKey]
	var releaseTitles []string
	if example != nil {
		releaseTitles = []string{example.Title}
	}
	var titles []string
	for _, f := range dctx.Files {
		if f != nil && f.Meta != nil {
			titles = append(titles, f.Meta.Title)
		}
	}
	if len(releaseTitles) == 0 {
		matched := 0
		for _, f := range dctx.Files {
			if f != nil && f.Matched {
				matched++
			}
		}
		if len(dctx.Files) == 0 {
			return 0
		}
		return float64(matched) / float64(len(dctx.Files))
	}
	return scoring.Coverage(titles, releaseTitles)
}

func (p *Pipeline) refineDecision(ctx context.Context, dctx *domain.DirectoryContext, decision Decision) Decision {
	if decision.Outcome != OutcomeAmbiguous || len(decision.Ambiguous) < 2 {
		return decision
	}

	signatures := make(map[string]CanonicalSignature)
	providerOf := make(map[string]domain.Provider)
	for _, key := range decision.Ambiguous {
		provider, releaseID, err := domain.SplitReleaseKey(key)
		if err != nil {
			continue
		}
		providerOf[key] = provider
		if prov, ok := p.Providers[provider]; ok {
			if release, err := prov.GetRelease(ctx, releaseID); err == nil && release != nil {
				signatures[key] = BuildCanonicalSignature(release.Tracks)
			}
		}
	}
	if winner, collapsed := CollapseEquivalentReleases(decision.Ambiguous, signatures, providerOf); collapsed {
		return Decision{Outcome: OutcomeAutoDecided, BestKey: winner, BestScore: decision.BestScore, Coverage: decision.Coverage}
	}

	if dctx.IsSingleton && !dctx.HasForcedRelease() {
		if winner, ok := PreferHomeCandidate(ctx, decision.Ambiguous, p.Store, dctx.DirTrackCount); ok {
			return Decision{Outcome: OutcomeAutoDecided, BestKey: winner, BestScore: decision.BestScore, Coverage: decision.Coverage}
		}
	}

	return decision
}

func (p *Pipeline) handleNoCandidates(ctx context.Context, dctx *domain.DirectoryContext) (Outcome, error) {
	if p.Interactive {
		choice, err := p.Prompter.Choose(dctx.DirectoryPath, nil)
		if err == nil {
			if outcome, handled := p.applyOperatorDisposition(ctx, dctx, choice); handled {
				return outcome, nil
			}
			if choice.Forced {
				dctx.ForcedProvider = choice.Provider
				dctx.ForcedReleaseID = choice.ReleaseID
				dctx.BestReleaseKey = domain.ReleaseKey(choice.Provider, choice.ReleaseID)
				if err := p.finalizeRelease(ctx, dctx); err == nil {
					return Outcome{State: StateComplete}, nil
				}
			}
		}
	} else if p.DeferPrompts {
		_ = p.Store.DeferPrompt(ctx, dctx.DirectoryPath, string(domain.SkipNoReleaseCandidates))
		return Outcome{State: StateSkipped, Deferred: true}, nil
	}
	return p.recordSkip(ctx, dctx, domain.SkipNoReleaseCandidates, nil)
}

func (p *Pipeline) handleLowCoverage(ctx context.Context, dctx *domain.DirectoryContext, decision Decision) (Outcome, error) {
	if p.Interactive {
		choice, err := p.Prompter.Choose(dctx.DirectoryPath, nil)
		if err == nil {
			if outcome, handled := p.applyOperatorDisposition(ctx, dctx, choice); handled {
				return outcome, nil
			}
			if choice.Forced {
				dctx.ForcedProvider = choice.Provider
				dctx.ForcedReleaseID = choice.ReleaseID
				dctx.BestReleaseKey = domain.ReleaseKey(choice.Provider, choice.ReleaseID)
				if err := p.finalizeRelease(ctx, dctx); err == nil {
					return Outcome{State: StateComplete}, nil
				}
			}
		}
	} else if p.DeferPrompts && !dctx.ForcePrompt {
		_ = p.Store.DeferPrompt(ctx, dctx.DirectoryPath, string(domain.SkipLowCoverage))
		return Outcome{State: StateSkipped, Deferred: true}, nil
	}
	return p.recordSkip(ctx, dctx, domain.SkipLowCoverage, nil)
}

func (p *Pipeline) handleAmbiguous(ctx context.Context, dctx *domain.DirectoryContext, decision Decision) (Outcome, error) {
	if !p.Interactive && p.DeferPrompts {
		_ = p.Store.DeferPrompt(ctx, dctx.DirectoryPath, "ambiguous")
		return Outcome{State: StateSkipped, Deferred: true}, nil
	}
	if p.Interactive {
		options := make([]Option, 0, len(decision.Ambiguous))
		for _, key := range decision.Ambiguous {
			provider, releaseID, _ := domain.SplitReleaseKey(key)
			options = append(options, Option{Provider: provider, ReleaseID: releaseID, DisplayLabel: key})
		}
		choice, err := p.Prompter.Choose(dctx.DirectoryPath, options)
		if err == nil {
			if outcome, handled := p.applyOperatorDisposition(ctx, dctx, choice); handled {
				return outcome, nil
			}
			if choice.Forced {
				dctx.ForcedProvider = choice.Provider
				dctx.ForcedReleaseID = choice.ReleaseID
				dctx.BestReleaseKey = domain.ReleaseKey(choice.Provider, choice.ReleaseID)
				if err := p.finalizeRelease(ctx, dctx); err == nil {
					return Outcome{State: StateComplete}, nil
				}
			}
			if choice.Skip {
				return p.recordSkip(ctx, dctx, domain.SkipUnexpectedFailure, nil)
			}
		}
	}
	return p.recordSkip(ctx, dctx, domain.SkipUnexpectedFailure, nil)
}

// applyOperatorDisposition handles the delete/archive/ignore prompt
// outcomes of spec.md §6, which apply the same way regardless of which
// decision state (no candidates, low coverage, ambiguous) triggered the
// prompt. handled is false when choice carries none of the three, so
// callers fall through to their own Forced/Skip handling.
func (p *Pipeline) applyOperatorDisposition(ctx context.Context, dctx *domain.DirectoryContext, choice PromptChoice) (Outcome, bool) {
	switch {
	case choice.Delete:
		if err := p.deleteDirectoryFiles(dctx); err != nil {
			p.Logger.Error("delete %s: %v", dctx.DirectoryPath, err)
		}
		outcome, _ := p.recordSkip(ctx, dctx, domain.SkipOperatorDeleted, nil)
		return outcome, true
	case choice.Archive:
		if err := p.archiveDirectory(dctx); err != nil {
			p.Logger.Error("archive %s: %v", dctx.DirectoryPath, err)
		}
		outcome, _ := p.recordSkip(ctx, dctx, domain.SkipOperatorArchived, nil)
		return outcome, true
	case choice.Ignore:
		if err := p.Store.IgnoreDirectory(ctx, dctx.DirectoryPath, "operator_requested"); err != nil {
			p.Logger.Error("ignore %s: %v", dctx.DirectoryPath, err)
		}
		outcome, _ := p.recordSkip(ctx, dctx, domain.SkipOperatorIgnored, nil)
		return outcome, true
	default:
		return Outcome{}, false
	}
}

// deleteDirectoryFiles removes every file the batch found in dctx, then
// best-effort removes the now-empty directory itself.
func (p *Pipeline) deleteDirectoryFiles(dctx *domain.DirectoryContext) error {
	var firstErr error
	for _, f := range dctx.Files {
		if f.Meta == nil || f.Meta.Path == "" {
			continue
		}
		if err := os.Remove(f.Meta.Path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = os.Remove(dctx.DirectoryPath)
	return firstErr
}

// archiveDirectory relocates the whole directory out of the scan path into
// a sibling .archived folder, so it stops being picked up by future scans
// without deleting anything.
func (p *Pipeline) archiveDirectory(dctx *domain.DirectoryContext) error {
	target := filepath.Join(filepath.Dir(dctx.DirectoryPath), ".archived", filepath.Base(dctx.DirectoryPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("archive: mkdir: %w", err)
	}
	if err := os.Rename(dctx.DirectoryPath, target); err != nil {
		return fmt.Errorf("archive: rename: %w", err)
	}
	return nil
}

func (p *Pipeline) finalizeRelease(ctx context.Context, dctx *domain.DirectoryContext) error {
	provider, releaseID, err := domain.SplitReleaseKey(dctx.BestReleaseKey)
	if err != nil {
		if dctx.ForcedProvider != "" {
			provider, releaseID = dctx.ForcedProvider, dctx.ForcedReleaseID
		} else {
			return err
		}
	}

	prov, ok := p.Providers[provider]
	if !ok {
		return fmt.Errorf("finalize: no provider configured for %s", provider)
	}

	release, err := prov.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release == nil {
		return fmt.Errorf("finalize: release %s not found", dctx.BestReleaseKey)
	}

	dctx.AppliedProvider = provider
	dctx.AppliedReleaseID = releaseID
	dctx.AlbumName = release.AlbumTitle
	dctx.AlbumArtist = release.AlbumArtist
	dctx.ActiveRelease = release

	score := dctx.ReleaseScores[dctx.BestReleaseKey]
	if err := p.Store.SetDirectoryRelease(ctx, dctx.DirectoryPath, provider, releaseID, score); err != nil {
		return err
	}
	return p.Store.SetHashRelease(ctx, dctx.DirectoryHash, provider, releaseID, score)
}

func (p *Pipeline) assignTracks(dctx *domain.DirectoryContext) {
	if dctx.ActiveRelease == nil {
		return
	}

	files := make([]assign.FileFeatures, len(dctx.Files))
	for i, f := range dctx.Files {
		if f == nil || f.Meta == nil {
			continue
		}
		files[i] = assign.FileFeatures{
			Title:        f.Meta.Title,
			TrackNumber:  f.Meta.TrackNumber,
			DiscNumber:   f.Meta.DiscNumber,
			DurationSecs: f.Meta.DurationSeconds,
			HaveDuration: f.Meta.DurationSeconds > 0,
		}
		if f.Result != nil {
			files[i].RecordingIDHit = f.Result.RecordingID
		}
	}

	tracks := make([]assign.TrackFeatures, len(dctx.ActiveRelease.Tracks))
	for i, t := range dctx.ActiveRelease.Tracks {
		tracks[i] = assign.TrackFeatures{
			RecordingID:  t.RecordingID,
			Title:        t.Title,
			Number:       t.Number,
			DiscNumber:   t.DiscNumber,
			DurationSecs: t.DurationSeconds,
			HaveDuration: t.DurationSeconds > 0,
		}
	}

	var result assign.Result
	if dctx.AppliedProvider == domain.ProviderDiscogs {
		result = assign.AssignDiscogs(files, tracks, scoring.TitleSimilarity, scoring.DurationSimilarity)
	} else {
		result = assign.AssignMusicBrainz(files, tracks, scoring.TitleSimilarity, scoring.DurationSimilarity)
	}

	for _, pairing := range result.Pairings {
		pending := dctx.Files[pairing.FileIndex]
		track := dctx.ActiveRelease.Tracks[pairing.TrackIndex]
		dctx.ActiveRelease.Claim(track.RecordingID)
		if pending.Meta.TrackNumber == 0 {
			pending.Meta.TrackNumber = track.Number
		}
		if pending.Meta.DiscNumber == 0 {
			pending.Meta.DiscNumber = track.DiscNumber
		}
		pending.Matched = true
		pending.Meta.MatchConfidence = pairing.Score
	}

	for _, idx := range result.UnassignedFiles {
		dctx.Unmatched = append(dctx.Unmatched, dctx.Files[idx])
	}
}

func (p *Pipeline) buildPlans(dctx *domain.DirectoryContext) []*domain.PlannedUpdate {
	var plans []*domain.PlannedUpdate
	for _, f := range dctx.Files {
		if f == nil || !f.Matched {
			continue
		}
		var relocator Relocator
		if p.OrganizerEnabled {
			relocator = p.Relocator
		}
		plan, err := BuildPlan(f, relocator, dctx.AlbumArtist, dctx.AlbumName)
		if err != nil {
			p.Warnings.AddTagWriteWarning(f.Meta.Path, err.Error())
			continue
		}
		if plan != nil {
			plans = append(plans, plan)
		}
	}
	dctx.PlannedUpdates = plans
	return plans
}

func (p *Pipeline) maybeRelocateIntoHome(ctx context.Context, dctx *domain.DirectoryContext, plans []*domain.PlannedUpdate) (string, bool) {
	if !dctx.IsSingleton || dctx.BestReleaseKey == "" {
		return "", false
	}
	home, found, err := p.Store.ReleaseHome(ctx, dctx.BestReleaseKey)
	if err != nil || !found {
		return "", false
	}
	dctx.ReleaseHomeDir = home.DirectoryPath
	return home.DirectoryPath, true
}

func (p *Pipeline) scheduleReprocess(homeDir string) {
	if p.reprocess == nil {
		p.reprocess = &ReprocessQueue{}
	}
	p.reprocess.ScheduleReprocess(homeDir)
}

// DrainReprocessQueue returns and clears directories scheduled for
// reprocessing by singleton-into-home relocations.
func (p *Pipeline) DrainReprocessQueue() []string {
	if p.reprocess == nil {
		return nil
	}
	return p.reprocess.Drain()
}

func (p *Pipeline) finalizeDirectory(ctx context.Context, dctx *domain.DirectoryContext) {
	_ = p.Store.SetDirectoryHash(ctx, dctx.DirectoryPath, dctx.DirectoryHash)
	if dctx.BestReleaseKey != "" {
		trackCount := len(dctx.Files) - len(dctx.Unmatched)
		home := cache.ReleaseHome{DirectoryPath: dctx.DirectoryPath, TrackCount: trackCount, DirectoryHash: dctx.DirectoryHash}
		existing, found, err := p.Store.ReleaseHome(ctx, dctx.BestReleaseKey)
		shouldWrite := true
		if err == nil && found {
			if existingHashMatches(ctx, p.Store, existing) && existing.TrackCount >= trackCount {
				shouldWrite = false
			}
		}
		if shouldWrite {
			_ = p.Store.SetReleaseHome(ctx, dctx.BestReleaseKey, home)
		}
	}
}

func existingHashMatches(ctx context.Context, store *cache.Store, home cache.ReleaseHome) bool {
	currentHash, found, err := store.DirectoryHash(ctx, home.DirectoryPath)
	if err != nil || !found {
		return false
	}
	return currentHash == home.DirectoryHash
}

// Package app wires together the config, cache, provider, tag I/O,
// prompt, organizer, and watchdog collaborators into one resolver.Pipeline,
// the way the teacher's cmd/dab-downloader root command builds a
// serviceContainer once and hands it to every subcommand. cmd/resolverd's
// commands depend only on this package, never on the individual internal
// packages directly, so every entrypoint assembles the pipeline the same
// way.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"

	"resolverd/internal/audit"
	"resolverd/internal/cache"
	"resolverd/internal/config"
	"resolverd/internal/domain"
	"resolverd/internal/organizer"
	"resolverd/internal/prompt"
	"resolverd/internal/providers/discogs"
	"resolverd/internal/providers/musicbrainz"
	"resolverd/internal/providers/spotifyhint"
	"resolverd/internal/resolver"
	"resolverd/internal/shared"
	"resolverd/internal/tagio"
	"resolverd/internal/watchdog"
)

// App bundles every long-lived collaborator a cmd/resolverd command needs,
// plus the assembled Pipeline itself.
type App struct {
	Config   *config.Config
	Store    *cache.Store
	Logger   shared.Logger
	Warnings *shared.WarningCollector
	Pipeline *resolver.Pipeline
}

// Build loads configFile, opens the cache, constructs every provider and
// capability adapter, and returns a ready App. Callers must call
// Close when done.
func Build(configFile string) (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := shared.NewConsoleLogger()
	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("app: open cache: %w", err)
	}

	providers := map[domain.Provider]resolver.ReleaseProvider{}

	mbCfg := musicbrainz.DefaultConfig()
	if cfg.MusicBrainzBaseURL != "" {
		mbCfg.BaseURL = cfg.MusicBrainzBaseURL
	}
	if cfg.MusicBrainzUserAgent != "" {
		mbCfg.UserAgent = cfg.MusicBrainzUserAgent
	}
	mbCfg.MaxRetries = cfg.NetworkRetries
	mbCfg.InitialDelay = cfg.InitialBackoff
	mbCfg.MaxDelay = cfg.MaxBackoff
	providers[domain.ProviderMusicBrainz] = musicbrainz.NewClient(mbCfg, cfg.NetworkCooldown)

	if cfg.DiscogsEnabled {
		dgCfg := discogs.DefaultConfig()
		if cfg.DiscogsBaseURL != "" {
			dgCfg.BaseURL = cfg.DiscogsBaseURL
		}
		dgCfg.Token = cfg.DiscogsToken
		dgCfg.MaxRetries = cfg.NetworkRetries
		dgCfg.InitialDelay = cfg.InitialBackoff
		dgCfg.MaxDelay = cfg.MaxBackoff
		providers[domain.ProviderDiscogs] = discogs.NewClient(dgCfg, cfg.NetworkCooldown)
	}

	var relocator resolver.Relocator
	if cfg.OrganizerEnabled && len(cfg.LibraryRoots) > 0 {
		relocator = organizer.New(cfg.LibraryRoots[0])
	}

	var notifier resolver.Notifier = organizer.NoopNotifier{}
	if cfg.NavidromeNotify && cfg.NavidromeURL != "" {
		n, err := organizer.NewNavidromeNotifier(cfg.NavidromeURL, cfg.NavidromeUsername, cfg.NavidromePassword, logger)
		if err != nil {
			logger.Warning("app: navidrome notifier disabled, authentication failed: %v", err)
		} else {
			notifier = n
		}
	}

	warnings := shared.NewWarningCollector(true)

	var spotifyHints resolver.SpotifyHintSource
	if cfg.SpotifyHintsEnabled && cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		src, err := spotifyhint.New(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			logger.Warning("app: spotify hint source disabled, authentication failed: %v", err)
		} else {
			spotifyHints = src
		}
	}

	pipeline := &resolver.Pipeline{
		Store:             store,
		Audit:             audit.NewLog(store, logger),
		Providers:         providers,
		TagIO:             tagio.NewFacade(),
		Relocator:         relocator,
		SpotifyHints:      spotifyHints,
		Prompter:          prompt.NewTerminal(logger),
		Notifier:          notifier,
		Logger:            logger,
		Warnings:          warnings,
		DiscogsEnabled:    cfg.DiscogsEnabled,
		Interactive:       cfg.Interactive,
		DeferPrompts:      cfg.DeferPrompts,
		OrganizerEnabled:  cfg.OrganizerEnabled && relocator != nil,
		DryRunJournalPath: cfg.DryRunJournalPath,
		DryRun:            cfg.DryRun,
	}

	return &App{Config: cfg, Store: store, Logger: logger, Warnings: warnings, Pipeline: pipeline}, nil
}

// Close releases the cache handle.
func (a *App) Close() error {
	return a.Store.Close()
}

// ProcessBatches runs every batch through a bounded worker pool, exactly
// as spec.md §5 requires: concurrency 1 whenever interactive mode might
// prompt, so two workers never contend for the terminal at once.
func (a *App) ProcessBatches(ctx context.Context, batches []domain.DirectoryBatch, forcePrompt bool) error {
	concurrency := a.Config.WorkerConcurrency
	if a.Config.Interactive {
		concurrency = 1
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var bar *pb.ProgressBar
	if shared.IsTTY() {
		bar = pb.New(len(batches))
		bar.SetWriter(os.Stdout)
		bar.SetTemplateString(`{{ string . "prefix" }} {{ bar . }} {{ percent . }} | {{ counters . }}`)
		bar.Set("prefix", "Resolving directories:")
		bar.Start()
	}

	pool := resolver.NewPool(ctx, concurrency)
	for _, batch := range batches {
		batch := batch
		pool.Submit(batch.DirectoryPath, func(ctx context.Context) error {
			outcome, err := a.Pipeline.ProcessDirectory(ctx, batch, forcePrompt)
			if bar != nil {
				bar.Increment()
			}
			if err != nil {
				a.Logger.Error("resolve %s: %v", batch.DirectoryPath, err)
				return nil
			}
			a.Logger.Info("%s: %s", batch.DirectoryPath, outcome.State)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		if bar != nil {
			bar.Finish()
		}
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	for _, dir := range a.Pipeline.DrainReprocessQueue() {
		a.Logger.Info("reprocessing %s after relocation into release home", dir)
		reprocessBatches, err := watchdog.ScanRoot(dir)
		if err != nil {
			a.Logger.Error("reprocess %s: rescan failed: %v", dir, err)
			continue
		}
		for _, batch := range reprocessBatches {
			outcome, err := a.Pipeline.ProcessDirectory(ctx, batch, false)
			if err != nil {
				a.Logger.Error("reprocess %s: %v", batch.DirectoryPath, err)
				continue
			}
			a.Logger.Info("%s: %s (reprocessed)", batch.DirectoryPath, outcome.State)
		}
	}
	return nil
}

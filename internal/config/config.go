// Package config loads and validates resolverd's settings. It generalizes
// the teacher's flat JSON Config (internal/config/config.go) into a layered
// viper-backed loader, since the resolver has substantially more tunables
// (provider credentials, retry/backoff knobs, worker concurrency, cache
// location) than the teacher's file warranted a richer loader for.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// NamingMasks holds folder and file naming masks, carried over verbatim
// from the teacher's NamingOptions. They are defaulted, loaded and saved
// with the config; organizer.TargetPath uses a fixed layout and does not
// read them.
type NamingMasks struct {
	AlbumFolderMask  string `mapstructure:"album_folder_mask"`
	EpFolderMask     string `mapstructure:"ep_folder_mask"`
	SingleFolderMask string `mapstructure:"single_folder_mask"`
	FileMask         string `mapstructure:"file_mask"`
}

// DefaultNamingMasks returns the teacher's default naming masks, unchanged.
func DefaultNamingMasks() NamingMasks {
	return NamingMasks{
		AlbumFolderMask:  "{artist}/{artist} - {album} ({year})",
		EpFolderMask:     "{artist}/EPs/{artist} - {album} ({year})",
		SingleFolderMask: "{artist}/Singles/{artist} - {album} ({year})",
		FileMask:         "{track_number} - {artist} - {title}",
	}
}

// Config holds all of resolverd's settings.
type Config struct {
	// Library roots and formats
	LibraryRoots        []string `mapstructure:"library_roots"`
	SupportedExtensions []string `mapstructure:"supported_extensions"`

	// Cache
	CachePath string `mapstructure:"cache_path"`

	// Provider credentials / endpoints
	MusicBrainzBaseURL   string `mapstructure:"musicbrainz_base_url"`
	MusicBrainzUserAgent string `mapstructure:"musicbrainz_user_agent"`
	DiscogsBaseURL       string `mapstructure:"discogs_base_url"`
	DiscogsToken         string `mapstructure:"discogs_token"`
	DiscogsEnabled       bool   `mapstructure:"discogs_enabled"`

	// Spotify hint source (optional, weak-hint only — see SPEC_FULL §2.2)
	SpotifyClientID     string `mapstructure:"spotify_client_id"`
	SpotifyClientSecret string `mapstructure:"spotify_client_secret"`
	SpotifyHintsEnabled bool   `mapstructure:"spotify_hints_enabled"`

	// Navidrome/Subsonic rescan notification (optional, fire-and-forget)
	NavidromeURL      string `mapstructure:"navidrome_url"`
	NavidromeUsername string `mapstructure:"navidrome_username"`
	NavidromePassword string `mapstructure:"navidrome_password"`
	NavidromeNotify   bool   `mapstructure:"navidrome_notify"`

	// Retry / backoff
	NetworkRetries  int           `mapstructure:"network_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	NetworkCooldown time.Duration `mapstructure:"network_cooldown"`

	// Concurrency
	WorkerConcurrency int `mapstructure:"worker_concurrency"`

	// Interaction
	Interactive  bool `mapstructure:"interactive"`
	DeferPrompts bool `mapstructure:"defer_prompts"`

	// Organizer
	OrganizerEnabled bool        `mapstructure:"organizer_enabled"`
	NamingMasks      NamingMasks `mapstructure:"naming"`

	// Apply semantics
	DryRun            bool   `mapstructure:"dry_run"`
	DryRunJournalPath string `mapstructure:"dry_run_journal_path"`
}

// Default returns sensible defaults, mirroring the teacher's
// ConfigService.GetDefaultConfig.
func Default() *Config {
	return &Config{
		SupportedExtensions: []string{".flac", ".mp3", ".m4a", ".ogg"},
		CachePath:           "./resolverd.db",
		MusicBrainzBaseURL:  "https://musicbrainz.org/ws/2/",
		MusicBrainzUserAgent: "resolverd/1.0 ( resolverd@example.invalid )",
		DiscogsBaseURL:      "https://api.discogs.com",
		NetworkRetries:      5,
		InitialBackoff:      2 * time.Second,
		MaxBackoff:          60 * time.Second,
		NetworkCooldown:     30 * time.Second,
		WorkerConcurrency:   4,
		Interactive:         true,
		DeferPrompts:        true,
		OrganizerEnabled:    true,
		NamingMasks:         DefaultNamingMasks(),
	}
}

// Load reads configFile (if it exists) layered over environment variables
// prefixed RESOLVERD_ and the defaults above, generalizing the teacher's
// LoadConfig/SaveConfig pair into viper's merge-then-unmarshal flow.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("RESOLVERD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyNamingDefaults()
	return cfg, nil
}

func (cfg *Config) applyNamingDefaults() {
	defaults := DefaultNamingMasks()
	if cfg.NamingMasks.AlbumFolderMask == "" {
		cfg.NamingMasks.AlbumFolderMask = defaults.AlbumFolderMask
	}
	if cfg.NamingMasks.EpFolderMask == "" {
		cfg.NamingMasks.EpFolderMask = defaults.EpFolderMask
	}
	if cfg.NamingMasks.SingleFolderMask == "" {
		cfg.NamingMasks.SingleFolderMask = defaults.SingleFolderMask
	}
	if cfg.NamingMasks.FileMask == "" {
		cfg.NamingMasks.FileMask = defaults.FileMask
	}
}

// Validate fails fast with a message naming the offending field, per
// spec.md §7's "Configuration missing/invalid" handling.
func (cfg *Config) Validate() error {
	if len(cfg.LibraryRoots) == 0 {
		return fmt.Errorf("config: library_roots must contain at least one path")
	}
	if cfg.CachePath == "" {
		return fmt.Errorf("config: cache_path is required")
	}
	if cfg.WorkerConcurrency <= 0 {
		return fmt.Errorf("config: worker_concurrency must be positive")
	}
	if cfg.DiscogsEnabled && cfg.DiscogsToken == "" {
		return fmt.Errorf("config: discogs_token is required when discogs_enabled is true")
	}
	return nil
}

// Save writes cfg to path as YAML via viper, mirroring the teacher's
// SaveConfig.
func Save(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("library_roots", cfg.LibraryRoots)
	v.Set("supported_extensions", cfg.SupportedExtensions)
	v.Set("cache_path", cfg.CachePath)
	v.Set("musicbrainz_base_url", cfg.MusicBrainzBaseURL)
	v.Set("musicbrainz_user_agent", cfg.MusicBrainzUserAgent)
	v.Set("discogs_base_url", cfg.DiscogsBaseURL)
	v.Set("discogs_token", cfg.DiscogsToken)
	v.Set("discogs_enabled", cfg.DiscogsEnabled)
	v.Set("spotify_client_id", cfg.SpotifyClientID)
	v.Set("spotify_client_secret", cfg.SpotifyClientSecret)
	v.Set("spotify_hints_enabled", cfg.SpotifyHintsEnabled)
	v.Set("navidrome_url", cfg.NavidromeURL)
	v.Set("navidrome_username", cfg.NavidromeUsername)
	v.Set("navidrome_password", cfg.NavidromePassword)
	v.Set("navidrome_notify", cfg.NavidromeNotify)
	v.Set("network_retries", cfg.NetworkRetries)
	v.Set("initial_backoff", cfg.InitialBackoff.String())
	v.Set("max_backoff", cfg.MaxBackoff.String())
	v.Set("network_cooldown", cfg.NetworkCooldown.String())
	v.Set("worker_concurrency", cfg.WorkerConcurrency)
	v.Set("interactive", cfg.Interactive)
	v.Set("defer_prompts", cfg.DeferPrompts)
	v.Set("organizer_enabled", cfg.OrganizerEnabled)
	v.Set("dry_run", cfg.DryRun)
	v.Set("dry_run_journal_path", cfg.DryRunJournalPath)
	v.Set("naming", map[string]string{
		"album_folder_mask":  cfg.NamingMasks.AlbumFolderMask,
		"ep_folder_mask":     cfg.NamingMasks.EpFolderMask,
		"single_folder_mask": cfg.NamingMasks.SingleFolderMask,
		"file_mask":          cfg.NamingMasks.FileMask,
	})

	if err := v.SafeWriteConfig(); err != nil {
		if writeErr := v.WriteConfig(); writeErr != nil {
			return fmt.Errorf("failed to write config file: %w", writeErr)
		}
	}
	return nil
}

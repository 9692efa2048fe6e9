// Package musicbrainz adapts the MusicBrainz web service to the
// resolver's provider contract (spec.md §4.6): enrich, supplement,
// search_release_candidates, get_release. The HTTP plumbing (rate
// limiting via golang.org/x/time/rate, request building, JSON decoding)
// is adapted directly from the teacher's internal/api/musicbrainz/client.go;
// what changes is the public surface, which now speaks the resolver's
// contract instead of ad-hoc GetTrackMetadata/SearchTrack methods.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"resolverd/internal/domain"
	"resolverd/internal/shared"
)

const (
	defaultBaseURL    = "https://musicbrainz.org/ws/2/"
	defaultUserAgent  = "resolverd/1.0 ( resolverd@example.invalid )"
	defaultTimeout    = 30 * time.Second
	defaultRateLimit  = 333 * time.Millisecond // MusicBrainz allows ~3 requests/sec
	defaultBurstLimit = 6
)

// Config holds the MusicBrainz client's tunables, threaded from
// internal/config.
type Config struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	RateLimit    time.Duration
	BurstLimit   int
	Debug        bool
}

// DefaultConfig returns sensible defaults, mirroring the teacher's
// musicbrainz.DefaultConfig.
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		MaxRetries:   5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
	}
}

// Client is a MusicBrainz provider adapter.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
	cooldown    *shared.NetworkCooldown
}

// NewClient builds a client from cfg, installing a network cooldown
// policy per spec.md §4.6/§9's "tiny state machine" requirement.
func NewClient(cfg Config, cooldownWindow time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		config:      cfg,
		rateLimiter: rate.NewLimiter(rate.Every(cfg.RateLimit), cfg.BurstLimit),
		cooldown:    shared.NewNetworkCooldown(cooldownWindow),
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("musicbrainz: rate limiter: %w", err)
	}

	reqURL, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{StatusCode: http.StatusGatewayTimeout, Status: "Gateway Timeout", Message: err.Error()}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, &shared.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Message: message}
	}
	return body, nil
}

// getWithRetryAndCooldown runs get through the retry-then-cooldown policy.
// If the cooldown is active, it returns (nil, nil) immediately — the
// provider contract's "calls return None during cooldown" behavior.
func (c *Client) getWithRetryAndCooldown(ctx context.Context, path string) ([]byte, error) {
	if c.cooldown.Active() {
		return nil, nil
	}
	var result []byte
	err := c.cooldown.Call(ctx, c.config.MaxRetries, c.config.InitialDelay, c.config.MaxDelay, c.config.Debug, func() error {
		body, getErr := c.get(ctx, path)
		if getErr != nil {
			return getErr
		}
		result = body
		return nil
	})
	if err == shared.ErrCooldownActive() {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Enrich implements the provider contract's enrich(meta) operation: an
// attempt to identify a single track, following the MusicBrainz cascade
// of spec.md §4.6: (1) AcoustID handled upstream by
// internal/providers/acoustid, (2) metadata search, (3) path-guess
// search, (4) release-memory match. This client implements stages 2-3;
// stage 4 (release-memory) is applied by the resolver pipeline, which has
// the batch-wide release context this client does not.
func (c *Client) Enrich(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	if res, err := c.searchByMetadata(ctx, meta.Artist, meta.Album, meta.Title); err == nil && res != nil {
		res.Source = domain.MatchSourceMetadata
		return res, nil
	}
	return c.searchByPathGuess(ctx, meta)
}

// Supplement implements supplement(meta): fill missing fields only, never
// overwriting what enrichment or existing tags already populated.
func (c *Client) Supplement(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	if meta.Artist == "" && meta.Title == "" {
		return nil, nil
	}
	return c.searchByMetadata(ctx, meta.Artist, meta.Album, meta.Title)
}

func (c *Client) searchByMetadata(ctx context.Context, artist, album, title string) (*domain.LookupResult, error) {
	if artist == "" || title == "" {
		return nil, nil
	}
	query := buildTrackSearchQuery(artist, album, title)
	path := fmt.Sprintf("recording?query=%s&limit=1&fmt=json", url.QueryEscape(query))
	body, err := c.getWithRetryAndCooldown(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var searchResult recordingSearchResponse
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode recording search: %w", err)
	}
	if len(searchResult.Recordings) == 0 {
		return nil, nil
	}
	return recordingToLookupResult(searchResult.Recordings[0]), nil
}

func (c *Client) searchByPathGuess(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	guessArtist, guessTitle := guessFromPath(meta.Path)
	if guessArtist == "" && guessTitle == "" {
		return nil, nil
	}
	res, err := c.searchByMetadata(ctx, guessArtist, "", guessTitle)
	if err != nil || res == nil {
		return res, err
	}
	res.Source = domain.MatchSourceGuess
	return res, nil
}

// SearchReleaseCandidates implements search_release_candidates(artist_hint,
// album_hint, limit).
func (c *Client) SearchReleaseCandidates(ctx context.Context, artistHint, albumHint string, limit int) ([]domain.ReleaseExample, error) {
	if artistHint == "" && albumHint == "" {
		return nil, nil
	}
	query := buildReleaseSearchQuery(artistHint, albumHint)
	path := fmt.Sprintf("release?query=%s&limit=%d&fmt=json", url.QueryEscape(query), limit)
	body, err := c.getWithRetryAndCooldown(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var searchResult releaseSearchResponse
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode release search: %w", err)
	}

	examples := make([]domain.ReleaseExample, 0, len(searchResult.Releases))
	for _, r := range searchResult.Releases {
		examples = append(examples, releaseToExample(r))
	}
	return examples, nil
}

// GetRelease implements get_release(id) → ReleaseData.
func (c *Client) GetRelease(ctx context.Context, releaseID string) (*domain.ReleaseData, error) {
	path := fmt.Sprintf("release/%s?inc=recordings+artist-credits+release-groups+media&fmt=json", releaseID)
	body, err := c.getWithRetryAndCooldown(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var r wireRelease
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("musicbrainz: decode release: %w", err)
	}
	return wireReleaseToReleaseData(r), nil
}

func buildTrackSearchQuery(artist, album, title string) string {
	if album == "" {
		return fmt.Sprintf("artist:%q AND recording:%q", artist, title)
	}
	return fmt.Sprintf("artist:%q AND release:%q AND recording:%q", artist, album, title)
}

func buildReleaseSearchQuery(artist, album string) string {
	switch {
	case artist != "" && album != "":
		return fmt.Sprintf("artist:%q AND release:%q", artist, album)
	case album != "":
		return fmt.Sprintf("release:%q", album)
	default:
		return fmt.Sprintf("artist:%q", artist)
	}
}

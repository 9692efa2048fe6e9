// Package discogs adapts the Discogs database API to the resolver's
// provider contract (spec.md §4.6). The response shapes (Release, Track,
// Artist, Label, search results) are grounded on
// cehbz-classical-tagger's internal/discogs client in the retrieval
// pack; the retry/cooldown/rate-limiting plumbing reuses the same
// golang.org/x/time/rate + shared.NetworkCooldown pattern as
// internal/providers/musicbrainz so both providers are driven by one
// policy shape, per spec.md §9's "tiny state machine, not re-implemented
// per provider" design note.
package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"resolverd/internal/domain"
	"resolverd/internal/shared"
)

const defaultBaseURL = "https://api.discogs.com"

// Config holds the Discogs client's tunables.
type Config struct {
	BaseURL      string
	Token        string
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	RateLimit    time.Duration
	BurstLimit   int
	Debug        bool
}

// DefaultConfig returns sensible defaults; Discogs' unauthenticated rate
// limit is 25/minute, authenticated 60/minute — the conservative
// unauthenticated spacing is used whether or not a token is set.
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    "resolverd/1.0",
		Timeout:      30 * time.Second,
		MaxRetries:   5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		RateLimit:    time.Minute / 25,
		BurstLimit:   2,
	}
}

// Client is a Discogs provider adapter.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
	cooldown    *shared.NetworkCooldown
}

// NewClient builds a client from cfg.
func NewClient(cfg Config, cooldownWindow time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		config:      cfg,
		rateLimiter: rate.NewLimiter(rate.Every(cfg.RateLimit), cfg.BurstLimit),
		cooldown:    shared.NewNetworkCooldown(cooldownWindow),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("discogs: rate limiter: %w", err)
	}

	u, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("discogs: parse url: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("discogs: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discogs: read body: %w", err)
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

func (c *Client) getWithRetryAndCooldown(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.cooldown.Active() {
		return nil, nil
	}
	var result []byte
	err := c.cooldown.Call(ctx, c.config.MaxRetries, c.config.InitialDelay, c.config.MaxDelay, c.config.Debug, func() error {
		body, getErr := c.get(ctx, path, query)
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

// Enrich implements enrich(meta) for Discogs: a single-track lookup is
// not meaningful against Discogs' release-oriented search, so Discogs
// only ever participates as a release-level candidate source
// (internal/resolver/candidates.go calls SearchReleaseCandidates /
// GetRelease directly); Enrich always returns (nil, nil), matching
// spec.md §4.6's "provider not found is a non-error, cascade to next
// strategy" handling.
func (c *Client) Enrich(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	return nil, nil
}

// Supplement mirrors Enrich's no-op: Discogs never supplements
// individual track fields.
func (c *Client) Supplement(ctx context.Context, meta domain.TrackMetadata) (*domain.LookupResult, error) {
	return nil, nil
}

// SearchReleaseCandidates implements search_release_candidates for
// Discogs.
func (c *Client) SearchReleaseCandidates(ctx context.Context, artistHint, albumHint string, limit int) ([]domain.ReleaseExample, error) {
	if artistHint == "" && albumHint == "" {
		return nil, nil
	}
	q := url.Values{}
	if artistHint != "" {
		q.Set("artist", artistHint)
	}
	if albumHint != "" {
		q.Set("release_title", albumHint)
	}
	q.Set("type", "release")
	q.Set("per_page", strconv.Itoa(limit))

	body, err := c.getWithRetryAndCooldown(ctx, "/database/search", q)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("discogs: decode search response: %w", err)
	}

	examples := make([]domain.ReleaseExample, 0, len(resp.Results))
	for _, r := range resp.Results {
		examples = append(examples, searchResultToExample(r))
	}
	return examples, nil
}

// GetRelease implements get_release(id) for Discogs.
func (c *Client) GetRelease(ctx context.Context, releaseID string) (*domain.ReleaseData, error) {
	body, err := c.getWithRetryAndCooldown(ctx, "/releases/"+releaseID, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var r wireRelease
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("discogs: decode release: %w", err)
	}
	return wireReleaseToReleaseData(r), nil
}

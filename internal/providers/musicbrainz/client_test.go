package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		UserAgent:    "resolverd-test/1.0",
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		RateLimit:    time.Millisecond,
		BurstLimit:   10,
		Debug:        false,
	}
}

func TestNewClientUsesDefaults(t *testing.T) {
	c := NewClient(DefaultConfig(), 30*time.Second)
	if c.config.BaseURL != defaultBaseURL {
		t.Errorf("expected BaseURL %s, got %s", defaultBaseURL, c.config.BaseURL)
	}
}

// TestRetryThenCooldown mirrors spec.md Scenario F: after network_retries
// failures the client trips its cooldown, and subsequent calls return nil
// immediately without hitting the network again, extending the teacher's
// table-driven client_test.go style to the resolver's cooldown policy.
func TestRetryThenCooldown(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL+"/"), time.Minute)

	_, err := client.searchByMetadata(context.Background(), "Artist", "", "Title")
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	firstHits := hits
	if firstHits == 0 {
		t.Fatal("expected at least one request to reach the server")
	}

	if !client.cooldown.Active() {
		t.Fatal("expected cooldown to be active after exhausting retries on a transient error")
	}

	body, err := client.searchByMetadata(context.Background(), "Artist", "", "Title")
	if err != nil {
		t.Fatalf("expected nil error while cooldown is active, got %v", err)
	}
	if body != nil {
		t.Fatalf("expected nil result while cooldown is active, got %+v", body)
	}
	if hits != firstHits {
		t.Fatalf("expected no additional network calls during cooldown, got %d new hits", hits-firstHits)
	}
}

func TestSearchByMetadataEmptyInputsShortCircuit(t *testing.T) {
	client := NewClient(testConfig("http://unused.invalid/"), time.Minute)
	res, err := client.searchByMetadata(context.Background(), "", "", "")
	if err != nil || res != nil {
		t.Fatalf("expected (nil, nil) for empty artist/title, got (%v, %v)", res, err)
	}
}

func TestGuessFromPath(t *testing.T) {
	artist, title := guessFromPath("/music/Miles Davis - Kind of Blue/01 - So_What.flac")
	if artist != "Miles Davis" {
		t.Errorf("expected artist 'Miles Davis', got %q", artist)
	}
	if title == "" {
		t.Error("expected a non-empty guessed title")
	}
}

func TestNormalizedTrackNumber(t *testing.T) {
	cases := []struct {
		raw      string
		sequential int
		want     int
	}{
		{"3", 1, 3},
		{"A1", 5, 1},
		{"B", 2, 2}, // no digit: fall back to sequential position
	}
	for _, c := range cases {
		got := normalizedTrackNumber(c.raw, c.sequential)
		if got != c.want {
			t.Errorf("normalizedTrackNumber(%q, %d) = %d, want %d", c.raw, c.sequential, got, c.want)
		}
	}
}

package spotifyhint

import (
	"context"
	"testing"
)

func TestHintReturnsNotFoundWithoutNetworkCallWhenGuessesEmpty(t *testing.T) {
	var s *Source // client is nil; Hint must not dereference it for empty guesses
	artist, album, found, err := s.Hint(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false for empty guesses, got artist=%q album=%q", artist, album)
	}
}

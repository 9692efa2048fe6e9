package prompt

import (
	"testing"

	"resolverd/internal/domain"
	"resolverd/internal/resolver"
)

func testOptions() []resolver.Option {
	return []resolver.Option{
		{Provider: domain.ProviderMusicBrainz, ReleaseID: "rel-1", DisplayLabel: "Kind of Blue (1959)", Score: 0.9},
		{Provider: domain.ProviderDiscogs, ReleaseID: "999", DisplayLabel: "Kind of Blue (reissue)", Score: 0.7},
	}
}

func TestParseChoiceReservedInputs(t *testing.T) {
	opts := testOptions()

	cases := map[string]resolver.PromptChoice{
		"0": {Skip: true},
		"s": {Skip: true},
		"d": {Delete: true},
		"a": {Archive: true},
		"i": {Ignore: true},
	}
	for input, want := range cases {
		got, err := ParseChoice(input, opts)
		if err != nil {
			t.Fatalf("ParseChoice(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseChoice(%q) = %+v, want %+v", input, got, want)
		}
	}
}

func TestParseChoiceManualOverride(t *testing.T) {
	opts := testOptions()

	got, err := ParseChoice("mb:aaaa-bbbb", opts)
	if err != nil {
		t.Fatalf("ParseChoice: %v", err)
	}
	want := resolver.PromptChoice{Forced: true, Provider: domain.ProviderMusicBrainz, ReleaseID: "aaaa-bbbb"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got, err = ParseChoice("dg:12345", opts)
	if err != nil {
		t.Fatalf("ParseChoice: %v", err)
	}
	want = resolver.PromptChoice{Forced: true, Provider: domain.ProviderDiscogs, ReleaseID: "12345"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseChoiceNumberedSelection(t *testing.T) {
	opts := testOptions()

	got, err := ParseChoice("2", opts)
	if err != nil {
		t.Fatalf("ParseChoice: %v", err)
	}
	want := resolver.PromptChoice{Forced: true, Provider: domain.ProviderDiscogs, ReleaseID: "999"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, err := ParseChoice("99", opts); err == nil {
		t.Fatalf("expected out-of-range selection to error")
	}
	if _, err := ParseChoice("garbage", opts); err == nil {
		t.Fatalf("expected unrecognized input to error")
	}
}

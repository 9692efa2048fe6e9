package tagio

import "testing"

func TestFacadePicksImplementationByExtension(t *testing.T) {
	f := NewFacade()

	cases := map[string]any{
		"/library/track.flac": f.flac,
		"/library/track.mp3":  f.id3,
		"/library/track.m4a":  f.mp4,
	}
	for path, want := range cases {
		got, err := f.pick(path)
		if err != nil {
			t.Fatalf("pick(%s): %v", path, err)
		}
		if got != want {
			t.Fatalf("pick(%s) routed to wrong implementation", path)
		}
	}

	if _, err := f.pick("/library/track.wav"); err == nil {
		t.Fatalf("expected an unrecognized container extension to error")
	}
}

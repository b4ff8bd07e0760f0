package lyrics

import "testing"

func TestParseLyricboxExtractsAndConvertsBreaks(t *testing.T) {
	body := "prefix <div class='lyricbox'>Line one<br />Line&#32;two</div><div class='lyricsbreak'>suffix"

	got, ok := parseLyricbox(body)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := "Line one\nLine two"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseLyricboxMissingMarkers(t *testing.T) {
	if _, ok := parseLyricbox("no markers here"); ok {
		t.Fatal("expected ok=false without lyricbox markers")
	}
}

package cuesheet

import "testing"

func TestParseBasic(t *testing.T) {
	data := `REM DISCID 123456789
PERFORMER "P"
TITLE "D"
FILE "disc.flac" WAVE
  TRACK 01 AUDIO
    TITLE "a"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "b"
    INDEX 01 01:30:00
  TRACK 03 AUDIO
    TITLE "c"
    INDEX 01 05:00:00
`

	cue := Parse(data)

	if cue.Title != "D" || cue.Performer != "P" {
		t.Fatalf("unexpected disc fields: %+v", cue)
	}
	if len(cue.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(cue.Files))
	}

	tracks := cue.Files[0].Tracks
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}

	wantStarts := []float64{0, 90, 300}
	for i, tr := range tracks {
		if tr.Start != wantStarts[i] {
			t.Errorf("track %d: got start %v, want %v", i, tr.Start, wantStarts[i])
		}
		if tr.Performer != "P" {
			t.Errorf("track %d: expected inherited performer 'P', got %q", i, tr.Performer)
		}
	}
}

func TestParseNoFiles(t *testing.T) {
	cue := Parse("TITLE \"D\"\nPERFORMER \"P\"\n")
	if len(cue.Files) != 0 {
		t.Fatalf("expected no files, got %d", len(cue.Files))
	}
}

func TestParseIdempotent(t *testing.T) {
	data := "TITLE \"D\"\nFILE \"f.flac\" WAVE\n  TRACK 01 AUDIO\n    INDEX 01 00:01:10\n"
	a := Parse(data)
	b := Parse(data)

	if a.Title != b.Title || len(a.Files) != len(b.Files) || a.Files[0].Tracks[0].Start != b.Files[0].Tracks[0].Start {
		t.Fatalf("parsing is not idempotent: %+v vs %+v", a, b)
	}
}

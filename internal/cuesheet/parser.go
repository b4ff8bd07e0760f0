// Package cuesheet implements the minimal line-oriented cue sheet parser
// of §4.C: tokenizing, command dispatch and frame-accurate start times.
package cuesheet

import (
	"strconv"
	"strings"
)

// Track is one TRACK entry within a cue File.
type Track struct {
	Number    int
	Title     string
	Performer string
	Start     float64 // seconds, from INDEX 01
}

// File is one FILE entry within a Cue, with its ordered tracks.
type File struct {
	Path   string
	Tracks []Track
}

// Cue is the parsed result of a cue sheet: disc-level title/performer and
// an ordered list of files, each with an ordered list of tracks.
type Cue struct {
	Title     string
	Performer string
	Files     []File
}

// isBareChar reports whether r may appear outside a quoted token.
func isBareChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ':'
}

// tokenizeLine splits a line into space-separated tokens. A
// double-quoted string is one token and preserves internal spaces;
// outside quotes only A-Z a-z 0-9 : are retained.
func tokenizeLine(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasToken = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
			hasToken = hasToken || inQuotes
		case inQuotes:
			cur.WriteRune(r)
		case r == ' ':
			flush()
		case isBareChar(r):
			cur.WriteRune(r)
			hasToken = true
		}
	}
	flush()

	return tokens
}

// Parse parses the text of a cue sheet into a Cue value.
func Parse(text string) Cue {
	var cue Cue

	var curFile *File
	var curTrack *Track

	closeTrack := func() {
		if curTrack != nil && curFile != nil {
			curFile.Tracks = append(curFile.Tracks, *curTrack)
			curTrack = nil
		}
	}
	closeFile := func() {
		closeTrack()
		if curFile != nil {
			cue.Files = append(cue.Files, *curFile)
			curFile = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		tokens := tokenizeLine(line)
		if len(tokens) < 2 {
			continue
		}

		cmd, arg := tokens[0], tokens[1]

		switch {
		case cmd == "TITLE" && curFile == nil:
			cue.Title = arg
		case cmd == "PERFORMER" && curFile == nil:
			cue.Performer = arg

		case cmd == "TITLE" && curTrack != nil:
			curTrack.Title = arg
		case cmd == "PERFORMER" && curTrack != nil:
			curTrack.Performer = arg

		case cmd == "FILE":
			closeFile()
			curFile = &File{Path: arg}

		case cmd == "TRACK" && curFile != nil:
			closeTrack()
			number, _ := strconv.Atoi(arg)
			curTrack = &Track{
				Number:    number,
				Title:     cue.Title,
				Performer: cue.Performer,
			}

		case cmd == "INDEX" && curTrack != nil && arg == "01":
			if len(tokens) >= 3 {
				curTrack.Start = parsePosition(tokens[2])
			}
		}
	}

	closeFile()

	return cue
}

// parsePosition parses an MM:SS:FF position into seconds. One frame is
// 1/75 seconds.
func parsePosition(pos string) float64 {
	parts := strings.Split(pos, ":")
	if len(parts) != 3 {
		return 0
	}

	mins, _ := strconv.Atoi(parts[0])
	secs, _ := strconv.Atoi(parts[1])
	frames, _ := strconv.Atoi(parts[2])

	return float64(mins)*60 + float64(secs) + float64(frames)/75
}

// Package lyrics implements the external lyrics-fetch collaborator: a
// best-effort LyricWiki scraper consulted on a track_lyrics cache miss.
// A fetch failure never aborts the request it serves — it bubbles up as
// "no lyrics found", matching the network error kind of the design's
// error taxonomy (never fatal).
package lyrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "lyrics"})

// ProviderName identifies this collaborator in TrackLyrics.Provider.
const ProviderName = "LyricWiki"

// Result is a successfully fetched lyrics body with its provenance.
type Result struct {
	Lyrics   string
	Provider string
	Source   string
}

const beginMarker = "<div class='lyricbox'>"
const endMarker = "<div class='lyricsbreak'>"

// Fetcher fetches lyrics pages; swappable in tests.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher returns a Fetcher using a default resty client with a
// bounded timeout, matching the "never hold a catalog lock across a
// network call" rule (§5) by keeping this collaborator catalog-agnostic.
func NewFetcher() *Fetcher {
	return &Fetcher{client: resty.New().SetTimeout(10 * time.Second)}
}

// TryFetch attempts to find lyrics for artist/title on LyricWiki, trying
// the exact page first, then the artist's song index, then the primary
// artist name (§ lyrics.rs). ok=false means no lyrics were found or the
// fetch failed; the caller treats either the same way.
func (f *Fetcher) TryFetch(artist, title string) (Result, bool) {
	if r, ok := f.tryPage(fmt.Sprintf("%s:%s", artist, title)); ok {
		return r, true
	}

	songList, err := f.get(fmt.Sprintf("http://lyrics.wikia.com/api.php?func=getArtist&artist=%s&fmt=text", artist))
	if err != nil {
		log.Debugf("cannot fetch song list for '%s': %v", artist, err)
		return Result{}, false
	}

	for _, line := range strings.Split(songList, "\n") {
		if strings.HasSuffix(line, title) {
			if r, ok := f.tryPage(line); ok {
				return r, true
			}
			break
		}
	}

	if primary := strings.SplitN(songList, ":", 2); len(primary) > 0 && primary[0] != "" {
		if r, ok := f.tryPage(fmt.Sprintf("%s:%s", primary[0], title)); ok {
			return r, true
		}
	}

	return Result{}, false
}

func (f *Fetcher) tryPage(page string) (Result, bool) {
	url := "https://lyrics.fandom.com/wiki/" + page

	body, err := f.get(url)
	if err != nil {
		log.Debugf("cannot fetch '%s': %v", url, err)
		return Result{}, false
	}

	lyrics, ok := parseLyricbox(body)
	if !ok {
		return Result{}, false
	}

	return Result{Lyrics: lyrics, Provider: ProviderName, Source: url}, true
}

func (f *Fetcher) get(url string) (string, error) {
	resp, err := f.client.R().Get(url)
	if err != nil {
		return "", errors.Wrapf(err, "cannot fetch '%s'", url)
	}
	if resp.IsError() {
		return "", errors.Errorf("'%s' returned status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}

// parseLyricbox extracts the plain-text lyrics body between LyricWiki's
// lyricbox markers, decoding numeric HTML entities and turning <br />
// tags into newlines, stripping every other tag (§ lyrics.rs).
func parseLyricbox(body string) (string, bool) {
	begin := strings.Index(body, beginMarker)
	if begin < 0 {
		return "", false
	}
	begin += len(beginMarker)

	end := strings.Index(body, endMarker)
	if end < 0 || end < begin {
		return "", false
	}

	section := body[begin:end]

	var out strings.Builder
	i := 0
	for i < len(section) {
		switch section[i] {
		case '&':
			if i+1 < len(section) && section[i+1] == '#' {
				j := i + 2
				for j < len(section) && section[j] != ';' {
					j++
				}
				if cp, err := strconv.Atoi(section[i+2 : j]); err == nil {
					out.WriteRune(rune(cp))
				}
				i = j + 1
				continue
			}
			i++
		case '<':
			j := i
			for j < len(section) && section[j] != '>' {
				j++
			}
			if j < len(section) && section[i:j+1] == "<br />" {
				out.WriteByte('\n')
			}
			i = j + 1
		default:
			out.WriteByte(section[i])
			i++
		}
	}

	return strings.TrimSpace(out.String()), true
}

// Package mediaprobe implements the audio/image probe collaborator of
// §4.B: given a file path, return its logical tracks and embedded images
// with container-level metadata. It never surfaces demuxer errors to the
// scanner — any failure yields an empty result.
package mediaprobe

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "mediaprobe"})

// TrackInfo is one logical track found in a container.
type TrackInfo struct {
	StreamIndex int64
	TrackIndex  *int64
	Number      int64
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Duration    float64 // seconds
}

// ImageInfo is one embedded or standalone image found in a container.
type ImageInfo struct {
	StreamIndex *int64
	Description string
	Width       int64
	Height      int64
}

// Probe reads path's container-level metadata and returns its tracks and
// embedded images. Any demuxer/tag-reading error yields two nil slices,
// never an error — probing is best-effort (§4.B).
func Probe(path string) ([]TrackInfo, []ImageInfo) {
	f, err := os.Open(path)
	if err != nil {
		log.Debugf("cannot open '%s' for probing: %v", path, err)
		return nil, nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Debugf("cannot read tags from '%s': %v", path, err)
		return nil, nil
	}

	number, _ := m.Track()

	albumArtist := strings.TrimSpace(m.AlbumArtist())

	track := TrackInfo{
		StreamIndex: 0,
		Number:      int64(number),
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		Album:       strings.TrimSpace(m.Album()),
		AlbumArtist: albumArtist,
		Duration:    probeDuration(path),
	}

	var images []ImageInfo
	if pic := m.Picture(); pic != nil {
		if w, h, ok := decodeDimensions(pic.Data); ok {
			images = append(images, ImageInfo{
				StreamIndex: int64Ptr(0),
				Description: "cover",
				Width:       w,
				Height:      h,
			})
		}
	}

	return []TrackInfo{track}, images
}

func int64Ptr(v int64) *int64 { return &v }

// ReadEmbeddedImage returns the raw bytes of the picture tag embedded at
// streamIndex in path's container (§6 external-library contract:
// read_embedded_image(path, stream)). Probe only ever produces
// streamIndex 0 for an embedded image, so any other index is rejected.
func ReadEmbeddedImage(path string, streamIndex int64) ([]byte, bool) {
	if streamIndex != 0 {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		log.Debugf("cannot open '%s' to read embedded image: %v", path, err)
		return nil, false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Debugf("cannot read tags from '%s': %v", path, err)
		return nil, false
	}

	pic := m.Picture()
	if pic == nil {
		return nil, false
	}

	return pic.Data, true
}

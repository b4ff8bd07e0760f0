package scan

import (
	"path/filepath"
	"strings"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/mediaprobe"
)

// imageExtensions lists the extensions the image handler recognises
// (§4.D). ProbeImageDimensions reads only jpeg, png, gif, bmp and tiff;
// a file of any other listed type is skipped by processImage.
var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	"tif": true, "tiff": true, "tga": true, "bmp": true, "ico": true,
	"hdr": true, "pbm": true, "pam": true, "ppm": true, "pgm": true,
}

// processFile dispatches a changed file node by lower-cased extension
// (§4.D process_file): cue sheets, known image extensions, then a
// best-effort audio probe.
func processFile(cat *catalog.Catalog, parent *catalog.Node, node *catalog.Node, fsPath string) (*stat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fsPath)), ".")

	if ext == "cue" {
		return processCue(cat, parent, node, fsPath)
	}
	if imageExtensions[ext] {
		return processImage(cat, node, fsPath)
	}
	return processAudio(cat, node, fsPath)
}

// processImage probes a standalone image file and inserts one Image row
// whose description is the filename stem (§4.D image handler).
func processImage(cat *catalog.Catalog, node *catalog.Node, fsPath string) (*stat, error) {
	width, height, ok := mediaprobe.ProbeImageDimensions(fsPath)
	if !ok {
		log.Debugf("cannot probe image '%s'", fsPath)
		return nil, nil
	}

	description := strings.TrimSuffix(node.Name, filepath.Ext(node.Name))

	if _, err := cat.CreateImage(catalog.Image{
		NodeID:      node.ID,
		StreamIndex: nil,
		Description: description,
		Width:       width,
		Height:      height,
	}); err != nil {
		return nil, err
	}

	return &stat{images: 1}, nil
}

// processAudio probes fsPath via §4.B, resolving or creating an
// Artist/Album per track and inserting every track and embedded image
// found (§4.D audio handler).
func processAudio(cat *catalog.Catalog, node *catalog.Node, fsPath string) (*stat, error) {
	tracks, images := mediaprobe.Probe(fsPath)
	if tracks == nil && images == nil {
		log.Debugf("no handler produced content for '%s'", fsPath)
		return nil, nil
	}

	result := &stat{}

	for _, t := range tracks {
		artist, err := cat.ResolveArtist(t.Artist)
		if err != nil {
			return nil, err
		}

		album, err := cat.ResolveAlbum(node.ID, t.Album)
		if err != nil {
			return nil, err
		}

		var albumArtistID *int64
		var albumArtistName *string
		if t.AlbumArtist != "" {
			aa, err := cat.ResolveArtist(t.AlbumArtist)
			if err != nil {
				return nil, err
			}
			albumArtistID = &aa.ID
			albumArtistName = &t.AlbumArtist
		}

		if _, err := cat.CreateTrack(catalog.Track{
			NodeID:          node.ID,
			StreamIndex:     t.StreamIndex,
			TrackIndex:      t.TrackIndex,
			Number:          t.Number,
			Title:           t.Title,
			ArtistID:        artist.ID,
			ArtistName:      t.Artist,
			AlbumID:         album.ID,
			AlbumName:       t.Album,
			AlbumArtistID:   albumArtistID,
			AlbumArtistName: albumArtistName,
			Length:          t.Duration,
		}); err != nil {
			return nil, err
		}
		result.tracks++
	}

	for _, img := range images {
		if _, err := cat.CreateImage(catalog.Image{
			NodeID:      node.ID,
			StreamIndex: img.StreamIndex,
			Description: img.Description,
			Width:       img.Width,
			Height:      img.Height,
		}); err != nil {
			return nil, err
		}
		result.images++
	}

	return result, nil
}

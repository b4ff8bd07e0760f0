package scan

import (
	"os"
	"strings"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/cuesheet"
	"github.com/mipimipi/musicd/internal/mediaprobe"
)

// processCue parses the cue sheet at fsPath and, for each FILE entry,
// rebuilds the referenced sibling audio node as a set of virtual tracks
// sliced at the cue's INDEX 01 positions (§4.D cue handler). The sibling
// is marked master_id = node.ID so a direct scan of it is a no-op.
func processCue(cat *catalog.Catalog, parent *catalog.Node, node *catalog.Node, fsPath string) (*stat, error) {
	data, err := os.ReadFile(fsPath)
	if err != nil {
		return nil, err
	}

	cue := cuesheet.Parse(string(data))
	if len(cue.Files) == 0 {
		log.Debugf("no FILE entries in cue sheet '%s'", fsPath)
		return nil, nil
	}

	result := &stat{}

	for _, file := range cue.Files {
		if len(file.Tracks) == 0 {
			continue
		}

		sibling, siblingFSPath, siblingModified, err := prepareNode(cat, parent, file.Path)
		if err != nil {
			log.Debugf("cannot resolve cue FILE '%s': %v", file.Path, err)
			continue
		}

		siblingTracks, _ := mediaprobe.Probe(siblingFSPath)
		if len(siblingTracks) == 0 {
			log.Debugf("cannot probe cue FILE '%s', skipping", file.Path)
			continue
		}
		probe := siblingTracks[0]

		tracks := buildCueTracks(cue, file, sibling.ID, probe)

		if err := cat.ClearNode(sibling.ID); err != nil {
			return nil, err
		}

		for i := range tracks {
			artist, err := cat.ResolveArtist(tracks[i].ArtistName)
			if err != nil {
				return nil, err
			}
			tracks[i].ArtistID = artist.ID

			album, err := cat.ResolveAlbum(sibling.ID, tracks[i].AlbumName)
			if err != nil {
				return nil, err
			}
			tracks[i].AlbumID = album.ID

			if tracks[i].AlbumArtistName != nil {
				albumArtist, err := cat.ResolveArtist(*tracks[i].AlbumArtistName)
				if err != nil {
					return nil, err
				}
				tracks[i].AlbumArtistID = &albumArtist.ID
			}

			if _, err := cat.CreateTrack(tracks[i]); err != nil {
				return nil, err
			}
			result.tracks++
		}

		if err := cat.SetMaster(sibling.ID, node.ID); err != nil {
			return nil, err
		}
		if err := cat.SetModified(sibling.ID, siblingModified); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// buildCueTracks turns one cue File's tracks into catalog Track values
// with artist/album left unresolved, start taken verbatim from the cue
// and length computed in reverse from each track's successor.
func buildCueTracks(cue cuesheet.Cue, file cuesheet.File, siblingNodeID int64, probe mediaprobe.TrackInfo) []catalog.Track {
	tracks := make([]catalog.Track, len(file.Tracks))

	var albumArtistName *string
	if performer := strings.TrimSpace(cue.Performer); performer != "" {
		albumArtistName = &performer
	}

	for i, ct := range file.Tracks {
		start := ct.Start
		tracks[i] = catalog.Track{
			NodeID:          siblingNodeID,
			StreamIndex:     probe.StreamIndex,
			TrackIndex:      probe.TrackIndex,
			Start:           &start,
			Number:          int64(ct.Number),
			Title:           strings.TrimSpace(ct.Title),
			ArtistName:      strings.TrimSpace(ct.Performer),
			AlbumName:       strings.TrimSpace(cue.Title),
			AlbumArtistName: albumArtistName,
		}
	}

	last := probe.Duration
	for i := len(tracks) - 1; i >= 0; i-- {
		start := *tracks[i].Start
		tracks[i].Length = last - start
		last = start
	}

	return tracks
}

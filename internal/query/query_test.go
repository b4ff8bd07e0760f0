package query_test

import (
	"path/filepath"
	"testing"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/query"
)

func newFixture(t *testing.T) *catalog.Catalog {
	t.Helper()

	source, err := catalog.OpenSource(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	cat, err := source.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	root, err := cat.CreateNode(catalog.Node{Type: catalog.NodeDirectory, Name: "music", Path: "music"})
	if err != nil {
		t.Fatalf("CreateNode root: %v", err)
	}
	fileNode, err := cat.CreateNode(catalog.Node{Type: catalog.NodeFile, ParentID: &root.ID, Name: "01.flac", Path: "music/01.flac"})
	if err != nil {
		t.Fatalf("CreateNode file: %v", err)
	}

	artist, err := cat.CreateArtist("X")
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}
	album, err := cat.CreateAlbum("Y")
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}

	if _, err := cat.CreateTrack(catalog.Track{
		NodeID: fileNode.ID, Number: 1, Title: "T1",
		ArtistID: artist.ID, ArtistName: "X", AlbumID: album.ID, AlbumName: "Y", Length: 180,
	}); err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}

	return cat
}

func TestTracksSearch(t *testing.T) {
	cat := newFixture(t)

	total, items, err := query.Tracks(cat.DB(), query.Params{"search": "T1"})
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("got total=%d len=%d, want 1 and 1", total, len(items))
	}
	if items[0].Title != "T1" || items[0].ArtistName != "X" || items[0].AlbumName != "Y" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestTracksSearchMiss(t *testing.T) {
	cat := newFixture(t)

	total, items, err := query.Tracks(cat.DB(), query.Params{"search": "nope"})
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("got total=%d len=%d, want 0 and 0", total, len(items))
	}
}

func TestArtistsFilterByNameIgnoresCase(t *testing.T) {
	cat := newFixture(t)

	total, items, err := query.Artists(cat.DB(), query.Params{"name": "x"})
	if err != nil {
		t.Fatalf("Artists: %v", err)
	}
	if total != 1 || items[0].TrackCount != 1 {
		t.Fatalf("got total=%d track_count=%d, want 1 and 1", total, items[0].TrackCount)
	}
}

func TestAlbumsPagination(t *testing.T) {
	cat := newFixture(t)

	total, items, err := query.Albums(cat.DB(), query.Params{"limit": "0", "offset": "0"})
	if err != nil {
		t.Fatalf("Albums: %v", err)
	}
	if total != 1 || len(items) != 0 {
		t.Fatalf("got total=%d len=%d, want total 1 with a zero-limit empty page", total, len(items))
	}
}

func TestNodesParentIDNull(t *testing.T) {
	cat := newFixture(t)

	total, items, err := query.Nodes(cat.DB(), query.Params{"parent_id": "null"})
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "music" {
		t.Fatalf("got total=%d items=%+v, want the single root-level node", total, items)
	}
}

package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

const trackColumns = "track_id, node_id, stream_index, track_index, start, number, title, " +
	"artist_id, artist_name, album_id, album_name, album_artist_id, album_artist_name, length"

func scanTrack(row interface{ Scan(...any) error }) (Track, error) {
	var t Track
	if err := row.Scan(
		&t.ID, &t.NodeID, &t.StreamIndex, &t.TrackIndex, &t.Start, &t.Number, &t.Title,
		&t.ArtistID, &t.ArtistName, &t.AlbumID, &t.AlbumName, &t.AlbumArtistID, &t.AlbumArtistName, &t.Length,
	); err != nil {
		return Track{}, err
	}
	return t, nil
}

// CreateTrack inserts t and returns the record with its assigned id.
func (c *Catalog) CreateTrack(t Track) (Track, error) {
	res, err := c.db.Exec(
		"INSERT INTO Track (node_id, stream_index, track_index, start, number, title, artist_id, "+
			"artist_name, album_id, album_name, album_artist_id, album_artist_name, length) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.NodeID, t.StreamIndex, t.TrackIndex, t.Start, t.Number, t.Title,
		t.ArtistID, t.ArtistName, t.AlbumID, t.AlbumName, t.AlbumArtistID, t.AlbumArtistName, t.Length,
	)
	if err != nil {
		return Track{}, errors.Wrapf(err, "cannot create track '%s'", t.Title)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Track{}, errors.Wrap(err, "cannot read new track id")
	}
	t.ID = id
	return t, nil
}

// Track returns the track with the given id.
func (c *Catalog) Track(id int64) (Track, bool, error) {
	row := c.db.QueryRow("SELECT "+trackColumns+" FROM Track WHERE track_id = ?", id)
	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return Track{}, false, nil
	}
	if err != nil {
		return Track{}, false, errors.Wrapf(err, "cannot get track %d", id)
	}
	return t, true, nil
}

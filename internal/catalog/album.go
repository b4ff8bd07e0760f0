package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

const albumColumns = "album_id, name, artist_id, artist_name, image_id"

func scanAlbum(row interface{ Scan(...any) error }) (Album, error) {
	var a Album
	if err := row.Scan(&a.ID, &a.Name, &a.ArtistID, &a.ArtistName, &a.ImageID); err != nil {
		return Album{}, err
	}
	return a, nil
}

// CreateAlbum inserts a new, as yet unattributed album named name.
func (c *Catalog) CreateAlbum(name string) (Album, error) {
	res, err := c.db.Exec("INSERT INTO Album (name) VALUES (?)", name)
	if err != nil {
		return Album{}, errors.Wrapf(err, "cannot create album '%s'", name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Album{}, errors.Wrap(err, "cannot read new album id")
	}

	log.Debugf("created album %d '%s'", id, name)
	return Album{ID: id, Name: name}, nil
}

// FindAlbum returns an existing Album that either (a) already has a track
// in the same directory as trackNodeID and shares albumName, or (b) has no
// tracks at all and shares albumName; otherwise ok=false (§4.A). This is
// what makes cue-driven pre-created albums re-attachable across rescans.
func (c *Catalog) FindAlbum(trackNodeID int64, albumName string) (Album, bool, error) {
	row := c.db.QueryRow(
		`SELECT `+albumColumns+`
		FROM Album
		INNER JOIN Track sibling_track ON sibling_track.album_id = Album.album_id
		INNER JOIN Node sibling_node ON sibling_node.node_id = sibling_track.node_id
		INNER JOIN Node track_node ON track_node.node_id = ?
		WHERE Album.name = ?
			AND sibling_node.parent_id IS track_node.parent_id
		LIMIT 1`,
		trackNodeID, albumName,
	)

	a, err := scanAlbum(row)
	if err == nil {
		return a, true, nil
	}
	if err != sql.ErrNoRows {
		return Album{}, false, errors.Wrapf(err, "cannot find album '%s' near node %d", albumName, trackNodeID)
	}

	row = c.db.QueryRow(
		`SELECT `+albumColumns+`
		FROM Album
		LEFT OUTER JOIN Track ON Track.album_id = Album.album_id
		WHERE Track.track_id IS NULL AND Album.name = ?
		LIMIT 1`,
		albumName,
	)

	a, err = scanAlbum(row)
	if err == sql.ErrNoRows {
		return Album{}, false, nil
	}
	if err != nil {
		return Album{}, false, errors.Wrapf(err, "cannot find unused album '%s'", albumName)
	}
	return a, true, nil
}

// ResolveAlbum finds or creates an album for a track under trackNodeID,
// matching the teacher's find-then-create idiom.
func (c *Catalog) ResolveAlbum(trackNodeID int64, albumName string) (Album, error) {
	if a, ok, err := c.FindAlbum(trackNodeID, albumName); err != nil {
		return Album{}, err
	} else if ok {
		return a, nil
	}
	return c.CreateAlbum(albumName)
}

// Album returns the album with the given id.
func (c *Catalog) Album(id int64) (Album, bool, error) {
	row := c.db.QueryRow("SELECT "+albumColumns+" FROM Album WHERE album_id = ?", id)
	a, err := scanAlbum(row)
	if err == sql.ErrNoRows {
		return Album{}, false, nil
	}
	if err != nil {
		return Album{}, false, errors.Wrapf(err, "cannot get album %d", id)
	}
	return a, true, nil
}

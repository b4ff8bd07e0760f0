package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ArtistByName returns the artist with an exact, case-sensitive name
// match, or ok=false if none exists (§3, §4.A).
func (c *Catalog) ArtistByName(name string) (Artist, bool, error) {
	row := c.db.QueryRow("SELECT artist_id, name FROM Artist WHERE name = ?", name)

	var a Artist
	err := row.Scan(&a.ID, &a.Name)
	if err == sql.ErrNoRows {
		return Artist{}, false, nil
	}
	if err != nil {
		return Artist{}, false, errors.Wrapf(err, "cannot get artist '%s'", name)
	}
	return a, true, nil
}

// CreateArtist inserts a new artist named name.
func (c *Catalog) CreateArtist(name string) (Artist, error) {
	res, err := c.db.Exec("INSERT INTO Artist (name) VALUES (?)", name)
	if err != nil {
		return Artist{}, errors.Wrapf(err, "cannot create artist '%s'", name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Artist{}, errors.Wrap(err, "cannot read new artist id")
	}

	log.Debugf("created artist %d '%s'", id, name)
	return Artist{ID: id, Name: name}, nil
}

// ResolveArtist finds or creates the artist named name, matching the
// teacher's find-then-create idiom used throughout the scan handlers.
func (c *Catalog) ResolveArtist(name string) (Artist, error) {
	if a, ok, err := c.ArtistByName(name); err != nil {
		return Artist{}, err
	} else if ok {
		return a, nil
	}
	return c.CreateArtist(name)
}

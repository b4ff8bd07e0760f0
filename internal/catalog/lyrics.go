package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

// TrackLyrics returns the stored lyrics row for track, if any.
func (c *Catalog) TrackLyrics(trackID int64) (TrackLyrics, bool, error) {
	row := c.db.QueryRow(
		"SELECT track_id, lyrics, provider, source, modified FROM TrackLyrics WHERE track_id = ?",
		trackID,
	)

	var tl TrackLyrics
	err := row.Scan(&tl.TrackID, &tl.Lyrics, &tl.Provider, &tl.Source, &tl.Modified)
	if err == sql.ErrNoRows {
		return TrackLyrics{}, false, nil
	}
	if err != nil {
		return TrackLyrics{}, false, errors.Wrapf(err, "cannot get lyrics for track %d", trackID)
	}
	return tl, true, nil
}

// SetTrackLyrics inserts or replaces the lyrics row for a track, stamping
// modified with the catalog's clock (§3: lyrics are created lazily on
// first request and persisted).
func (c *Catalog) SetTrackLyrics(trackID int64, lyrics, provider, source *string) (TrackLyrics, error) {
	now := c.clock.Now().Unix()

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO TrackLyrics (track_id, lyrics, provider, source, modified) VALUES (?, ?, ?, ?, ?)",
		trackID, lyrics, provider, source, now,
	)
	if err != nil {
		return TrackLyrics{}, errors.Wrapf(err, "cannot set lyrics for track %d", trackID)
	}

	return TrackLyrics{TrackID: trackID, Lyrics: lyrics, Provider: provider, Source: source, Modified: now}, nil
}

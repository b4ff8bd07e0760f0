package catalog

import "github.com/pkg/errors"

// ProcessNodeUpdates runs the post-directory-scan reconciliation for the
// directory parentID (§4.D): re-derive affected albums' artist, enrol
// candidate cover images and pick each affected album's representative
// cover. Called after any directory whose contents changed.
func (c *Catalog) ProcessNodeUpdates(parentID int64) error {
	if err := c.rederiveAlbumArtists(parentID); err != nil {
		return err
	}
	if err := c.enrolCandidateCovers(parentID); err != nil {
		return err
	}
	return c.chooseRepresentativeCovers(parentID)
}

// rederiveAlbumArtists sets (artist_id, artist_name) on every album with a
// track under parentID to the most-frequent (album_artist_id,
// album_artist_name) among those tracks, falling back to the most-frequent
// (artist_id, artist_name); null candidates are excluded.
func (c *Catalog) rederiveAlbumArtists(parentID int64) error {
	_, err := c.db.Exec(
		`UPDATE Album
		SET artist_id = (
			SELECT id FROM (
				SELECT album_artist_id AS id, count(*) AS n
				FROM Track WHERE Track.album_id = Album.album_id AND album_artist_id IS NOT NULL
				GROUP BY album_artist_id ORDER BY n DESC LIMIT 1
			)
			UNION ALL
			SELECT id FROM (
				SELECT artist_id AS id, count(*) AS n
				FROM Track WHERE Track.album_id = Album.album_id AND artist_id IS NOT NULL
				GROUP BY artist_id ORDER BY n DESC LIMIT 1
			)
			LIMIT 1
		),
		artist_name = (
			SELECT name FROM (
				SELECT album_artist_name AS name, count(*) AS n
				FROM Track WHERE Track.album_id = Album.album_id AND album_artist_name IS NOT NULL
				GROUP BY album_artist_name ORDER BY n DESC LIMIT 1
			)
			UNION ALL
			SELECT name FROM (
				SELECT artist_name AS name, count(*) AS n
				FROM Track WHERE Track.album_id = Album.album_id AND artist_name IS NOT NULL
				GROUP BY artist_name ORDER BY n DESC LIMIT 1
			)
			LIMIT 1
		)
		WHERE Album.album_id IN (
			SELECT Track.album_id FROM Track
			INNER JOIN Node ON Node.node_id = Track.node_id
			WHERE Node.parent_id = ?
		)`,
		parentID,
	)
	return errors.Wrapf(err, "cannot re-derive album artists under node %d", parentID)
}

// enrolCandidateCovers links every image in the neighbourhood of parentID
// (the directory itself and its direct children, depth <= 1) into
// AlbumImage for every album whose tracks live under parentID. At depth 1,
// only neighbourhoods that do not themselves contain tracks are enrolled
// (a dedicated "art" subfolder next to the album folder).
func (c *Catalog) enrolCandidateCovers(parentID int64) error {
	_, err := c.db.Exec(
		`WITH RECURSIVE neighbourhood(node_id, depth) AS (
			VALUES(?, 0)
			UNION ALL
			SELECT Node.node_id, neighbourhood.depth + 1
			FROM Node, neighbourhood
			WHERE neighbourhood.depth < 1 AND Node.parent_id = neighbourhood.node_id
		)
		INSERT OR IGNORE INTO AlbumImage (album_id, image_id)
		SELECT DISTINCT album.album_id, image.image_id
		FROM neighbourhood
		INNER JOIN Node image_node ON image_node.parent_id = neighbourhood.node_id
		INNER JOIN Image image ON image.node_id = image_node.node_id
		INNER JOIN Node track_node ON track_node.parent_id = ?
		INNER JOIN Track track ON track.node_id = track_node.node_id
		INNER JOIN Album album ON album.album_id = track.album_id
		WHERE
			neighbourhood.depth = 0
			OR NOT EXISTS (
				SELECT 1 FROM Node sibling_track_node
				INNER JOIN Track sibling_track ON sibling_track.node_id = sibling_track_node.node_id
				WHERE sibling_track_node.parent_id = neighbourhood.node_id
			)`,
		parentID, parentID,
	)
	return errors.Wrapf(err, "cannot enrol candidate covers under node %d", parentID)
}

// chooseRepresentativeCovers sets album.image_id to the best-ranked
// AlbumImage candidate: ranked first by whether the description matches
// any AlbumImagePattern (yes before no), then by that pattern's rank, then
// by description ascending, case-insensitive (§4.D).
func (c *Catalog) chooseRepresentativeCovers(parentID int64) error {
	_, err := c.db.Exec(
		`UPDATE Album
		SET image_id = (
			SELECT image.image_id
			FROM AlbumImage album_image
			INNER JOIN Image image ON image.image_id = album_image.image_id
			LEFT OUTER JOIN AlbumImagePattern pattern ON image.description LIKE pattern.pattern
			WHERE album_image.album_id = Album.album_id
			ORDER BY
				pattern.rank IS NULL ASC,
				pattern.rank ASC,
				image.description COLLATE NOCASE ASC
			LIMIT 1
		)
		WHERE Album.album_id IN (
			SELECT Track.album_id FROM Track
			INNER JOIN Node ON Node.node_id = Track.node_id
			WHERE Node.parent_id = ?
		)`,
		parentID,
	)
	return errors.Wrapf(err, "cannot choose representative covers under node %d", parentID)
}

package query

import (
	"database/sql"

	"github.com/pkg/errors"
)

// NodeItem is one row of GET /api/nodes, with per-node aggregates (§6).
type NodeItem struct {
	NodeID         int64
	ParentID       *int64
	NodeType       int64
	Name           string
	Path           string
	TrackCount     int64
	ImageCount     int64
	AllTrackCount  int64
	AllImageCount  int64
}

const nodeAggregateColumns = `
	(SELECT COUNT(track_id) FROM Track
		INNER JOIN Node track_node ON track_node.node_id = Track.node_id
		WHERE track_node.parent_id = Node.node_id) AS track_count,
	(SELECT COUNT(image_id) FROM Image
		INNER JOIN Node image_node ON image_node.node_id = Image.node_id
		WHERE image_node.parent_id = Node.node_id) AS image_count`

const nodeSubtreeAggregateColumns = `,
	(SELECT COUNT(track_id) FROM Node AS child_node
		INNER JOIN Track ON Track.node_id = child_node.node_id
		WHERE child_node.path LIKE Node.path || '/%') AS all_track_count,
	(SELECT COUNT(image_id) FROM Node AS child_node
		INNER JOIN Image ON Image.node_id = child_node.node_id
		WHERE child_node.path LIKE Node.path || '/%') AS all_image_count`

// Nodes runs GET /api/nodes (§6). all_track_count/all_image_count are
// populated only when parent_id is present, matching the teacher's
// avoid-the-subtree-scan-when-unfiltered shortcut.
func Nodes(db *sql.DB, p Params) (int64, []NodeItem, error) {
	opts := New()

	hasParentFilter := false
	if v, ok := p.str("parent_id"); ok {
		if v == "null" {
			opts.Filter("Node.parent_id IS NULL")
			hasParentFilter = true
		} else if n, ok := p.int64("parent_id"); ok {
			opts.FilterValue("Node.parent_id = ?", n)
			hasParentFilter = true
		}
	}
	opts.BindRange(p)

	total, err := opts.Total(db, "SELECT COUNT(Node.node_id) FROM Node")
	if err != nil {
		return 0, nil, err
	}

	selectCols := "SELECT Node.node_id, Node.parent_id, Node.node_type, Node.name, Node.path, " + nodeAggregateColumns
	if hasParentFilter {
		selectCols += nodeSubtreeAggregateColumns
	} else {
		selectCols += ", 0 AS all_track_count, 0 AS all_image_count"
	}
	selectCols += " FROM Node"

	rows, err := opts.Rows(db, selectCols)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []NodeItem{}
	for rows.Next() {
		var n NodeItem
		var nameB, pathB []byte
		if err := rows.Scan(&n.NodeID, &n.ParentID, &n.NodeType, &nameB, &pathB,
			&n.TrackCount, &n.ImageCount, &n.AllTrackCount, &n.AllImageCount); err != nil {
			return 0, nil, errors.Wrap(err, "cannot scan node row")
		}
		n.Name, n.Path = string(nameB), string(pathB)
		items = append(items, n)
	}
	return total, items, errors.Wrap(rows.Err(), "cannot iterate node rows")
}

// TrackItem is one row of GET /api/tracks (§6).
type TrackItem struct {
	TrackID    int64
	NodeID     int64
	Number     int64
	Title      string
	ArtistID   int64
	ArtistName string
	AlbumID    int64
	AlbumName  string
	Length     float64
	NodePath   string
}

// Tracks runs GET /api/tracks (§6), ordered by album_name, number, title.
func Tracks(db *sql.DB, p Params) (int64, []TrackItem, error) {
	opts := New()

	opts.BindInt(p, "track_id", "Track.track_id = ?")
	opts.BindInt(p, "node_id", "Track.node_id = ?")
	opts.BindInt(p, "number", "Track.number = ?")
	opts.BindLike(p, "title", "Track.title LIKE ? COLLATE NOCASE")
	opts.BindInt(p, "artist_id", "Track.artist_id = ?")
	opts.BindLike(p, "artist_name", "Track.artist_name LIKE ? COLLATE NOCASE")
	opts.BindInt(p, "album_id", "Track.album_id = ?")
	opts.BindLike(p, "album_name", "Track.album_name LIKE ? COLLATE NOCASE")
	opts.Search(p, "Track.title", "Track.artist_name", "Track.album_name")
	opts.OrderBy("Track.album_name, Track.number, Track.title")
	opts.BindRange(p)

	total, err := opts.Total(db, "SELECT COUNT(Track.track_id) FROM Track")
	if err != nil {
		return 0, nil, err
	}

	rows, err := opts.Rows(db, `SELECT
		Track.track_id, Track.node_id, Track.number, Track.title,
		Track.artist_id, Track.artist_name, Track.album_id, Track.album_name, Track.length,
		(SELECT Node.path FROM Node WHERE Node.node_id = Track.node_id) AS node_path
		FROM Track`)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []TrackItem{}
	for rows.Next() {
		var t TrackItem
		var pathB []byte
		if err := rows.Scan(&t.TrackID, &t.NodeID, &t.Number, &t.Title,
			&t.ArtistID, &t.ArtistName, &t.AlbumID, &t.AlbumName, &t.Length, &pathB); err != nil {
			return 0, nil, errors.Wrap(err, "cannot scan track row")
		}
		t.NodePath = string(pathB)
		items = append(items, t)
	}
	return total, items, errors.Wrap(rows.Err(), "cannot iterate track rows")
}

// ArtistItem is one row of GET /api/artists (§6).
type ArtistItem struct {
	ArtistID   int64
	Name       string
	TrackCount int64
}

// Artists runs GET /api/artists (§6), ordered by name.
func Artists(db *sql.DB, p Params) (int64, []ArtistItem, error) {
	opts := New()

	opts.BindInt(p, "artist_id", "Artist.artist_id = ?")
	opts.BindLike(p, "name", "Artist.name LIKE ? COLLATE NOCASE")
	opts.BindLike(p, "search", "Artist.name LIKE ? COLLATE NOCASE")
	opts.OrderBy("Artist.name")
	opts.BindRange(p)

	total, err := opts.Total(db, "SELECT COUNT(Artist.artist_id) FROM Artist")
	if err != nil {
		return 0, nil, err
	}

	rows, err := opts.Rows(db, `SELECT Artist.artist_id, Artist.name,
		(SELECT count(Track.track_id) FROM Track WHERE Track.artist_id = Artist.artist_id) AS track_count
		FROM Artist`)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []ArtistItem{}
	for rows.Next() {
		var a ArtistItem
		if err := rows.Scan(&a.ArtistID, &a.Name, &a.TrackCount); err != nil {
			return 0, nil, errors.Wrap(err, "cannot scan artist row")
		}
		items = append(items, a)
	}
	return total, items, errors.Wrap(rows.Err(), "cannot iterate artist rows")
}

// AlbumItem is one row of GET /api/albums (§6).
type AlbumItem struct {
	AlbumID    int64
	Name       string
	ArtistID   *int64
	ArtistName *string
	ImageID    *int64
	TrackCount int64
}

// Albums runs GET /api/albums (§6), ordered by artist_name, name.
func Albums(db *sql.DB, p Params) (int64, []AlbumItem, error) {
	opts := New()

	opts.BindInt(p, "album_id", "Album.album_id = ?")
	opts.BindLike(p, "name", "Album.name LIKE ? COLLATE NOCASE")
	opts.BindInt(p, "artist_id", "Album.artist_id = ?")
	opts.BindLike(p, "artist_name", "Album.artist_name LIKE ? COLLATE NOCASE")
	opts.Search(p, "Album.name", "Album.artist_name")
	opts.OrderBy("Album.artist_name, Album.name")
	opts.BindRange(p)

	total, err := opts.Total(db, "SELECT COUNT(Album.album_id) FROM Album")
	if err != nil {
		return 0, nil, err
	}

	rows, err := opts.Rows(db, `SELECT Album.album_id, Album.name, Album.artist_id, Album.artist_name, Album.image_id,
		(SELECT count(Track.track_id) FROM Track WHERE Track.album_id = Album.album_id) AS track_count
		FROM Album`)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []AlbumItem{}
	for rows.Next() {
		var a AlbumItem
		if err := rows.Scan(&a.AlbumID, &a.Name, &a.ArtistID, &a.ArtistName, &a.ImageID, &a.TrackCount); err != nil {
			return 0, nil, errors.Wrap(err, "cannot scan album row")
		}
		items = append(items, a)
	}
	return total, items, errors.Wrap(rows.Err(), "cannot iterate album rows")
}

// ImageItem is one row of GET /api/images (§6).
type ImageItem struct {
	ImageID     int64
	NodeID      int64
	Description string
}

// Images runs GET /api/images (§6). album_id matches against AlbumImage.
// description matches exactly rather than the general %value% rule:
// original_source's image lookup keys off the same seed-pattern strings
// it writes, so exact match is what the original does here.
func Images(db *sql.DB, p Params) (int64, []ImageItem, error) {
	opts := New()

	opts.BindInt(p, "image_id", "Image.image_id = ?")
	opts.BindInt(p, "node_id", "Image.node_id = ?")
	opts.BindEqualStr(p, "description", "Image.description = ?")
	opts.BindInt(p, "album_id",
		`(SELECT album_id FROM AlbumImage
			WHERE AlbumImage.album_id = ? AND AlbumImage.image_id = Image.image_id LIMIT 1) IS NOT NULL`)
	opts.BindRange(p)

	total, err := opts.Total(db, "SELECT COUNT(Image.image_id) FROM Image")
	if err != nil {
		return 0, nil, err
	}

	rows, err := opts.Rows(db, "SELECT Image.image_id, Image.node_id, Image.description FROM Image")
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := []ImageItem{}
	for rows.Next() {
		var i ImageItem
		if err := rows.Scan(&i.ImageID, &i.NodeID, &i.Description); err != nil {
			return 0, nil, errors.Wrap(err, "cannot scan image row")
		}
		items = append(items, i)
	}
	return total, items, errors.Wrap(rows.Err(), "cannot iterate image rows")
}

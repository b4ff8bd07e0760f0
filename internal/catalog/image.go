package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

const imageColumns = "image_id, node_id, stream_index, description, width, height"

func scanImage(row interface{ Scan(...any) error }) (Image, error) {
	var i Image
	if err := row.Scan(&i.ID, &i.NodeID, &i.StreamIndex, &i.Description, &i.Width, &i.Height); err != nil {
		return Image{}, err
	}
	return i, nil
}

// CreateImage inserts i and returns the record with its assigned id.
func (c *Catalog) CreateImage(i Image) (Image, error) {
	res, err := c.db.Exec(
		"INSERT INTO Image (node_id, stream_index, description, width, height) VALUES (?, ?, ?, ?, ?)",
		i.NodeID, i.StreamIndex, i.Description, i.Width, i.Height,
	)
	if err != nil {
		return Image{}, errors.Wrapf(err, "cannot create image for node %d", i.NodeID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Image{}, errors.Wrap(err, "cannot read new image id")
	}
	i.ID = id
	return i, nil
}

// Image returns the image with the given id.
func (c *Catalog) Image(id int64) (Image, bool, error) {
	row := c.db.QueryRow("SELECT "+imageColumns+" FROM Image WHERE image_id = ?", id)
	i, err := scanImage(row)
	if err == sql.ErrNoRows {
		return Image{}, false, nil
	}
	if err != nil {
		return Image{}, false, errors.Wrapf(err, "cannot get image %d", id)
	}
	return i, true, nil
}

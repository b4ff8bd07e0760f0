package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

const nodeColumns = "node_id, node_type, parent_id, master_id, name, path, modified"

func scanNode(row interface{ Scan(...any) error }) (Node, error) {
	var n Node
	var nameB, pathB []byte
	var nodeType int64

	if err := row.Scan(&n.ID, &nodeType, &n.ParentID, &n.MasterID, &nameB, &pathB, &n.Modified); err != nil {
		return Node{}, err
	}

	n.Type = NodeType(nodeType)
	n.Name = string(nameB)
	n.Path = string(pathB)

	return n, nil
}

// NodeByID returns the node with the given id, or ok=false if none exists.
func (c *Catalog) NodeByID(id int64) (Node, bool, error) {
	row := c.db.QueryRow("SELECT "+nodeColumns+" FROM Node WHERE node_id = ?", id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, errors.Wrapf(err, "cannot get node %d", id)
	}
	return n, true, nil
}

// NodeByName returns the child named name of parent (nil for a root-level
// entry), or ok=false if none exists.
func (c *Catalog) NodeByName(parentID *int64, name string) (Node, bool, error) {
	var row *sql.Row
	if parentID == nil {
		row = c.db.QueryRow("SELECT "+nodeColumns+" FROM Node WHERE parent_id IS NULL AND name = ?", []byte(name))
	} else {
		row = c.db.QueryRow("SELECT "+nodeColumns+" FROM Node WHERE parent_id = ? AND name = ?", *parentID, []byte(name))
	}

	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, errors.Wrapf(err, "cannot get node by name '%s'", name)
	}
	return n, true, nil
}

// NodeByPath returns the node whose virtualised path equals virtualPath.
func (c *Catalog) NodeByPath(virtualPath string) (Node, bool, error) {
	row := c.db.QueryRow("SELECT "+nodeColumns+" FROM Node WHERE path = ?", []byte(virtualPath))
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, errors.Wrapf(err, "cannot get node by path '%s'", virtualPath)
	}
	return n, true, nil
}

// ChildrenOf returns the direct children of parent.
func (c *Catalog) ChildrenOf(parentID int64) ([]Node, error) {
	rows, err := c.db.Query("SELECT "+nodeColumns+" FROM Node WHERE parent_id = ?", parentID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get children of node %d", parentID)
	}
	defer rows.Close()

	var result []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, errors.Wrap(err, "cannot scan child node")
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// CreateNode inserts n and returns the record with its assigned id.
func (c *Catalog) CreateNode(n Node) (Node, error) {
	res, err := c.db.Exec(
		"INSERT INTO Node (node_type, parent_id, master_id, name, path, modified) VALUES (?, ?, ?, ?, ?, ?)",
		int64(n.Type), n.ParentID, n.MasterID, []byte(n.Name), []byte(n.Path), n.Modified,
	)
	if err != nil {
		return Node{}, errors.Wrapf(err, "cannot create node '%s'", n.Path)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Node{}, errors.Wrap(err, "cannot read new node id")
	}

	n.ID = id
	log.Debugf("created node %d '%s'", n.ID, n.Path)
	return n, nil
}

// DeleteNode removes the node row; ON DELETE CASCADE takes its tracks and
// images with it.
func (c *Catalog) DeleteNode(id int64) error {
	if _, err := c.db.Exec("DELETE FROM Node WHERE node_id = ?", id); err != nil {
		return errors.Wrapf(err, "cannot delete node %d", id)
	}
	log.Debugf("deleted node %d", id)
	return nil
}

// SetModified updates the node's last-modified timestamp.
func (c *Catalog) SetModified(id int64, modified int64) error {
	if _, err := c.db.Exec("UPDATE Node SET modified = ? WHERE node_id = ?", modified, id); err != nil {
		return errors.Wrapf(err, "cannot set modified for node %d", id)
	}
	return nil
}

// SetMaster links child as a cue virtual file whose content is owned by
// masterID (the cue sheet's own node).
func (c *Catalog) SetMaster(childID, masterID int64) error {
	if _, err := c.db.Exec("UPDATE Node SET master_id = ? WHERE node_id = ?", masterID, childID); err != nil {
		return errors.Wrapf(err, "cannot set master for node %d", childID)
	}
	return nil
}

// ClearNode deletes a node's tracks and images but preserves the node row
// itself, used before re-deriving a file's content.
func (c *Catalog) ClearNode(id int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "cannot begin clear-node transaction")
	}

	if _, err := tx.Exec("DELETE FROM Track WHERE node_id = ?", id); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "cannot clear tracks of node %d", id)
	}
	if _, err := tx.Exec("DELETE FROM Image WHERE node_id = ?", id); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "cannot clear images of node %d", id)
	}

	return errors.Wrap(tx.Commit(), "cannot commit clear-node transaction")
}

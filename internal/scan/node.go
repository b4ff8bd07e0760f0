package scan

import (
	"os"
	"path"

	"github.com/pkg/errors"

	"github.com/mipimipi/musicd/internal/catalog"
)

// stat accumulates how much catalog content a scan step produced, so the
// caller can decide whether process_node_updates needs to run (§4.D).
type stat struct {
	tracks int
	images int
}

func (s *stat) add(o *stat) {
	if o == nil {
		return
	}
	s.tracks += o.tracks
	s.images += o.images
}

func (s *stat) changed() bool {
	return s != nil && (s.tracks > 0 || s.images > 0)
}

// prepareNode resolves (or creates) the catalog node named name under
// parent, stats its filesystem object and reconciles a stored/on-disk
// kind mismatch by deleting and recreating the row (§4.D step 1 / 2).
func prepareNode(cat *catalog.Catalog, parent *catalog.Node, name string) (catalog.Node, string, int64, error) {
	var parentID *int64
	virtualPath := name
	if parent != nil {
		parentID = &parent.ID
		virtualPath = path.Join(parent.Path, name)
	}

	fsPath, ok := cat.MapFSPath(virtualPath)
	if !ok {
		return catalog.Node{}, "", 0, errors.Errorf("cannot map path '%s'", virtualPath)
	}

	existing, found, err := cat.NodeByName(parentID, name)
	if err != nil {
		return catalog.Node{}, "", 0, err
	}

	info, statErr := os.Stat(fsPath)
	if statErr != nil {
		if found {
			if err := cat.DeleteNode(existing.ID); err != nil {
				return catalog.Node{}, "", 0, err
			}
		}
		return catalog.Node{}, "", 0, errors.Wrapf(statErr, "cannot stat '%s'", fsPath)
	}

	var onDisk catalog.NodeType
	switch {
	case info.IsDir():
		onDisk = catalog.NodeDirectory
	case info.Mode().IsRegular():
		onDisk = catalog.NodeFile
	default:
		onDisk = catalog.NodeOther
	}

	modified := info.ModTime().Unix()

	if found && existing.Type != onDisk {
		if err := cat.DeleteNode(existing.ID); err != nil {
			return catalog.Node{}, "", 0, err
		}
		found = false
	}

	if !found {
		created, err := cat.CreateNode(catalog.Node{
			Type:     onDisk,
			ParentID: parentID,
			Name:     name,
			Path:     virtualPath,
			Modified: 0,
		})
		if err != nil {
			return catalog.Node{}, "", 0, err
		}
		return created, fsPath, modified, nil
	}

	return existing, fsPath, modified, nil
}

// scanNode resolves name under parent and reconciles the catalog with
// its on-disk state, recursing into directories (§4.D).
func scanNode(cat *catalog.Catalog, parent *catalog.Node, name string, cancel <-chan struct{}) (*stat, error) {
	if cancelled(cancel) {
		return nil, errCancelled
	}

	node, fsPath, modified, err := prepareNode(cat, parent, name)
	if err != nil {
		return nil, err
	}

	switch node.Type {
	case catalog.NodeDirectory:
		var result *stat
		if modified == node.Modified {
			result, err = descendKnownChildren(cat, &node, cancel)
		} else {
			result, err = processDirectory(cat, &node, fsPath, cancel)
		}
		if err != nil {
			return nil, err
		}

		if result.changed() {
			if err := cat.ProcessNodeUpdates(node.ID); err != nil {
				return nil, err
			}
		}
		if modified != node.Modified {
			if err := cat.SetModified(node.ID, modified); err != nil {
				return nil, err
			}
		}
		return result, nil

	case catalog.NodeFile:
		if modified == node.Modified {
			return nil, nil
		}
		if parent == nil {
			return nil, errors.Errorf("root node '%s' is not a directory", name)
		}

		var result *stat
		if node.MasterID == nil {
			if err := cat.ClearNode(node.ID); err != nil {
				return nil, err
			}
			result, err = processFile(cat, parent, &node, fsPath)
			if err != nil {
				return nil, err
			}
		}

		if err := cat.SetModified(node.ID, modified); err != nil {
			return nil, err
		}
		return result, nil

	default:
		return nil, nil
	}
}

// descendKnownChildren visits a directory's already-catalogued children
// without re-reading the directory itself, used when the directory's own
// mtime is unchanged but deeper modifications may still exist (§4.D).
func descendKnownChildren(cat *catalog.Catalog, node *catalog.Node, cancel <-chan struct{}) (*stat, error) {
	children, err := cat.ChildrenOf(node.ID)
	if err != nil {
		return nil, err
	}

	total := &stat{}
	for _, child := range children {
		if cancelled(cancel) {
			return nil, errCancelled
		}

		s, err := scanNode(cat, node, child.Name, cancel)
		if err != nil {
			if errors.Is(err, errCancelled) {
				return nil, err
			}
			log.Errorf("node '%s' skipped: %v", child.Path, err)
			continue
		}
		total.add(s)
	}
	return total, nil
}

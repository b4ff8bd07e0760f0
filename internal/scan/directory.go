package scan

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mipimipi/musicd/internal/catalog"
)

// processDirectory enumerates fsPath's on-disk entries and recurses into
// each via scanNode, which resolves or creates the matching catalog
// child. Catalog children no longer present on disk are left alone; they
// are deleted lazily the next time their own stat fails (§4.D).
func processDirectory(cat *catalog.Catalog, node *catalog.Node, fsPath string, cancel <-chan struct{}) (*stat, error) {
	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read directory '%s'", fsPath)
	}

	total := &stat{}
	for _, entry := range entries {
		if cancelled(cancel) {
			return nil, errCancelled
		}

		s, err := scanNode(cat, node, entry.Name(), cancel)
		if err != nil {
			if errors.Is(err, errCancelled) {
				return nil, err
			}
			log.Errorf("entry '%s' in '%s' skipped: %v", entry.Name(), fsPath, err)
			continue
		}
		total.add(s)
	}
	return total, nil
}

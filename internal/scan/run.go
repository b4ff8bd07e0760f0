package scan

import (
	"github.com/pkg/errors"

	"github.com/mipimipi/musicd/internal/catalog"
)

// run executes one full pass over every configured root, in declaration
// order, until cancel is closed or a database/cancellation error occurs
// (§4.D). Per-root errors abort only that root.
func run(cat *catalog.Catalog, cancel <-chan struct{}) error {
	if err := cat.ResetAlbumImagePatterns(); err != nil {
		return errors.Wrap(err, "cannot seed album image patterns")
	}

	total := &stat{}

	for _, root := range cat.Roots() {
		if cancelled(cancel) {
			return nil
		}

		s, err := scanNode(cat, nil, root.Name, cancel)
		if err != nil {
			if errors.Is(err, errCancelled) {
				return nil
			}
			log.Errorf("root '%s' aborted: %v", root.Name, err)
			continue
		}
		total.add(s)
	}

	log.Infof("scan complete: %d tracks, %d images", total.tracks, total.images)
	return nil
}

package catalog

import (
	"database/sql"
	"path"
	"strings"

	"github.com/fwojciec/clock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Source holds everything needed to open independent per-thread Catalog
// handles onto the same sqlite database file (§4.A, §5: catalog handles
// are per-thread; the storage engine itself serializes writers).
type Source struct {
	dbPath string
	roots  []Root
	clock  clock.Clock
}

// OpenSource opens (creating if necessary) the catalog database at dbPath
// and installs its schema. roots are the configured virtual roots used by
// MapFSPath. Returns an error if an existing database has a mismatched
// schema version.
func OpenSource(dbPath string, roots []Root) (*Source, error) {
	log.Tracef("opening catalog '%s'", dbPath)

	db, err := openPragma(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := ensureSchema(db, indexSchema); err != nil {
		return nil, errors.Wrap(err, "cannot install catalog schema")
	}

	return &Source{dbPath: dbPath, roots: roots, clock: clock.New()}, nil
}

// Catalog is a per-thread handle onto the catalog database (§4.A).
type Catalog struct {
	db    *sql.DB
	roots []Root
	clock clock.Clock
}

// Open returns a fresh Catalog handle. Callers on different goroutines
// must each call Open rather than share a handle (§5).
func (s *Source) Open() (*Catalog, error) {
	db, err := openPragma(s.dbPath)
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db, roots: s.roots, clock: s.clock}, nil
}

// Roots returns the virtual roots s was opened with.
func (s *Source) Roots() []Root {
	return s.roots
}

// Close releases the handle's database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// DB exposes the underlying connection for the query layer (§4.I), which
// composes its own SQL rather than going through per-entity accessors.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Roots returns the configured virtual roots.
func (c *Catalog) Roots() []Root {
	return c.roots
}

// MapFSPath translates a virtualised catalog path ("rootName/…/name") into
// an absolute filesystem path, or returns ok=false if the leading
// component does not name a configured root.
func (c *Catalog) MapFSPath(virtualPath string) (string, bool) {
	parts := strings.Split(virtualPath, "/")
	if len(parts) == 0 {
		return "", false
	}

	var root *Root
	for i := range c.roots {
		if c.roots[i].Name == parts[0] {
			root = &c.roots[i]
			break
		}
	}
	if root == nil {
		return "", false
	}

	return path.Join(append([]string{root.Path}, parts[1:]...)...), true
}

// ResetAlbumImagePatterns replaces the AlbumImagePattern table with the
// seed list, run at the start of every scan (§4.D).
func (c *Catalog) ResetAlbumImagePatterns() error {
	if _, err := c.db.Exec("DELETE FROM AlbumImagePattern"); err != nil {
		return errors.Wrap(err, "cannot clear album image patterns")
	}

	st, err := c.db.Prepare("INSERT INTO AlbumImagePattern (rank, pattern) VALUES (?, ?)")
	if err != nil {
		return errors.Wrap(err, "cannot prepare album image pattern insert")
	}
	defer st.Close()

	for i, p := range seedAlbumImagePatterns {
		if _, err := st.Exec(i, p); err != nil {
			return errors.Wrap(err, "cannot insert album image pattern")
		}
	}

	return nil
}

// Package thumbnail implements the bounded, LRU-evicted key->blob store of
// §4.F, keyed by image id and target size.
package thumbnail

import (
	"database/sql"
	"fmt"

	"github.com/fwojciec/clock"
	_ "github.com/mattn/go-sqlite3"
	l "github.com/sirupsen/logrus"

	"github.com/mipimipi/musicd/internal/catalog"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "thumbnail"})

// Cache is the capability consulted by the image-serving path: get_blob
// and set_blob (§9: "dynamic dispatch over cache" — present vs. disabled
// are two implementations of one capability).
type Cache interface {
	GetBlob(key string) ([]byte, bool, error)
	SetBlob(key string, value []byte) error
	Close() error
}

// Key builds the cache key for an image at a given target size, per §6.
func Key(imageID int64, size int) string {
	return fmt.Sprintf("image:%d_%d", imageID, size)
}

// sqliteCache is a bounded LRU cache backed by a sqlite database file.
type sqliteCache struct {
	db      *sql.DB
	maxSize int64
	clock   clock.Clock
}

// Open opens (creating if necessary) the cache database at dbPath with
// the given byte budget and installs its schema.
func Open(dbPath string, maxSize int64) (Cache, error) {
	log.Tracef("opening cache '%s', max_size=%d", dbPath, maxSize)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteCache{db: db, maxSize: maxSize, clock: clock.New()}, nil
}

const cacheSchema = `
CREATE TABLE Cache (
	key TEXT PRIMARY KEY,
	value BLOB,
	size INTEGER,
	last_access INTEGER
);
`

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS Musicd (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var version string
	err := db.QueryRow("SELECT value FROM Musicd WHERE key = 'schema'").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		tx, txErr := db.Begin()
		if txErr != nil {
			return txErr
		}
		if _, execErr := tx.Exec(cacheSchema); execErr != nil {
			tx.Rollback()
			return execErr
		}
		if _, execErr := tx.Exec("INSERT INTO Musicd (key, value) VALUES ('schema', ?)", catalog.SchemaVersion); execErr != nil {
			tx.Rollback()
			return execErr
		}
		return tx.Commit()
	case err != nil:
		return err
	case version != catalog.SchemaVersion:
		return fmt.Errorf("cache schema version %q does not match expected %q", version, catalog.SchemaVersion)
	}
	return nil
}

// GetBlob returns the cached blob for key and touches its last-access
// time, or ok=false on a miss.
func (c *sqliteCache) GetBlob(key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.QueryRow("SELECT value FROM Cache WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if _, err := c.db.Exec("UPDATE Cache SET last_access = ? WHERE key = ?", c.clock.Now().Unix(), key); err != nil {
		return nil, false, err
	}

	return value, true, nil
}

// SetBlob replaces any existing entry for key, then evicts
// least-recently-used entries until total size is within budget (§4.F,
// §8 invariant: Sigma size <= max after every set_blob).
func (c *sqliteCache) SetBlob(key string, value []byte) error {
	now := c.clock.Now().Unix()

	if _, err := c.db.Exec(
		"INSERT OR REPLACE INTO Cache (key, value, size, last_access) VALUES (?, ?, ?, ?)",
		key, value, len(value), now,
	); err != nil {
		return err
	}

	for {
		var total int64
		if err := c.db.QueryRow("SELECT COALESCE(SUM(size), 0) FROM Cache").Scan(&total); err != nil {
			return err
		}
		if total <= c.maxSize {
			return nil
		}

		log.Tracef("cache over budget (%d > %d), evicting one entry", total, c.maxSize)

		if _, err := c.db.Exec(
			"DELETE FROM Cache WHERE rowid = (SELECT rowid FROM Cache ORDER BY last_access ASC, rowid ASC LIMIT 1)",
		); err != nil {
			return err
		}
	}
}

// Close releases the cache's database connection.
func (c *sqliteCache) Close() error {
	return c.db.Close()
}

// disabledCache implements Cache as a no-op: every read is a miss, every
// write is discarded (§4.F, §9).
type disabledCache struct{}

// Disabled returns a Cache that is present for dispatch purposes but
// stores nothing, for when the cache is disabled at construction.
func Disabled() Cache { return disabledCache{} }

func (disabledCache) GetBlob(string) ([]byte, bool, error) { return nil, false, nil }
func (disabledCache) SetBlob(string, []byte) error         { return nil }
func (disabledCache) Close() error                         { return nil }

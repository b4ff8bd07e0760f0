package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ensureSchema installs schemaSQL in a single transaction if the Musicd
// table has no schema row yet, or confirms the stored version matches
// SchemaVersion if it does. A mismatch is fatal (§4.A, §7).
func ensureSchema(db *sql.DB, schemaSQL string) error {
	if _, err := db.Exec(metaSchema); err != nil {
		return errors.Wrap(err, "cannot create schema metadata table")
	}

	var version string
	err := db.QueryRow("SELECT value FROM Musicd WHERE key = 'schema'").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		tx, txErr := db.Begin()
		if txErr != nil {
			return errors.Wrap(txErr, "cannot begin schema install transaction")
		}
		if _, execErr := tx.Exec(schemaSQL); execErr != nil {
			tx.Rollback()
			return errors.Wrap(execErr, "cannot install schema")
		}
		if _, execErr := tx.Exec("INSERT INTO Musicd (key, value) VALUES ('schema', ?)", SchemaVersion); execErr != nil {
			tx.Rollback()
			return errors.Wrap(execErr, "cannot stamp schema version")
		}
		return errors.Wrap(tx.Commit(), "cannot commit schema install")
	case err != nil:
		return errors.Wrap(err, "cannot read schema version")
	case version != SchemaVersion:
		return errors.Errorf("database schema version %q does not match expected %q", version, SchemaVersion)
	}

	return nil
}

// openPragma opens a sqlite database at path with foreign keys and WAL
// journaling enabled, as required by §4.A and §5.
func openPragma(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open sqlite database '%s'", path)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "cannot set pragmas on '%s'", path)
	}

	return db, nil
}

// Package cache is the durable, full-text-searchable aggregated catalog
// (spec.md §4.4, C5). It is built on modernc.org/sqlite, the pure-Go
// CGo-free SQLite driver carried in from the battlewithbytes-pve-appstore
// and quantmind-br-upkg examples, both of which embed a local catalog the
// same way. WAL journal mode gives the reader/writer concurrency spec.md
// §5 requires; FTS5 ships in modernc.org/sqlite's default build.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/logging"
)

// Cache wraps the embedded store. All exported methods are safe for
// concurrent use. The pool holds a single connection, so every read and
// write is serialized through it: a read waits while another caller's
// write transaction is open.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite file at path, switches it to
// WAL journal mode, and applies any pending migrations.
func Open(path string) (*Cache, error) {
	log := logging.Component("cache")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindCacheCorrupt, "opening cache database", err)
	}
	// The cache is the only long-lived shared resource (spec.md §5);
	// one pooled connection serializes all access to it, reads included.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.KindCacheCorrupt, "enabling WAL mode", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.KindCacheCorrupt, "enabling foreign keys", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("cache opened", "path", path)
	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	log := logging.Component("cache")

	if _, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);`); err != nil {
		return errs.Wrap(errs.KindCacheCorrupt, "creating schema_version table", err)
	}

	var current int
	row := c.db.QueryRow(`SELECT version FROM schema_version LIMIT 1;`)
	if err := row.Scan(&current); err != nil {
		current = 0
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := c.db.Begin()
		if err != nil {
			return errs.Wrap(errs.KindCacheCorrupt, "beginning migration transaction", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.KindCacheCorrupt, fmt.Sprintf("applying migration %d", m.version), err)
		}
		if _, err := tx.Exec(`DELETE FROM schema_version;`); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.KindCacheCorrupt, "clearing schema_version", err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (?);`, m.version); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.KindCacheCorrupt, "stamping schema_version", err)
		}
		if err := tx.Commit(); err != nil {
			return errs.Wrap(errs.KindCacheCorrupt, "committing migration", err)
		}
		log.Info("applied cache migration", "version", m.version)
		current = m.version
	}
	return nil
}

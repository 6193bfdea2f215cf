package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

const defaultBatchSize = 2000

// Refresh replaces a provider's entire slice of the catalog, per
// spec.md §4.4: the prior slice is deleted up front, then new rows are
// bulk-inserted in batches, each batch its own commit so a mid-sync
// cancellation leaves exactly the already-committed rows in place
// (spec.md §8 scenario 5) rather than rolling everything back.
func (c *Cache) Refresh(ctx context.Context, provider model.Manager, records <-chan model.Record) (model.SyncMetadata, error) {
	log := logging.Component("cache")
	meta := model.SyncMetadata{Provider: provider, LastSyncStartedAt: time.Now()}

	if err := c.deleteProviderSlice(provider); err != nil {
		return meta, errs.Wrap(errs.KindCacheCorrupt, "clearing prior provider slice", err)
	}

	var (
		batch   []model.Record
		total   int
		aborted bool
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.insertBatch(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

loop:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			break loop
		case rec, ok := <-records:
			if !ok {
				break loop
			}
			batch = append(batch, rec)
			if len(batch) >= defaultBatchSize {
				if err := flush(); err != nil {
					return meta, errs.Wrap(errs.KindProviderParse, "writing batch", err)
				}
			}
		}
	}

	if !aborted {
		if err := flush(); err != nil {
			return meta, errs.Wrap(errs.KindProviderParse, "writing final batch", err)
		}
	}

	meta.LastSyncFinishedAt = time.Now()
	meta.PackageCount = total
	if aborted {
		meta.LastSyncStatus = model.SyncFailed
		meta.ErrorMessage = "cancelled"
		log.Warn("sync aborted", "provider", provider, "committed", total)
	} else {
		meta.LastSyncStatus = model.SyncSuccess
		log.Info("sync finished", "provider", provider, "package_count", total)
	}

	if err := c.writeSyncMetadata(meta); err != nil {
		return meta, errs.Wrap(errs.KindCacheCorrupt, "writing sync metadata", err)
	}

	if aborted {
		return meta, errs.New(errs.KindSyncAborted, fmt.Sprintf("%s sync cancelled after %d rows", provider, total))
	}
	return meta, nil
}

func (c *Cache) deleteProviderSlice(provider model.Manager) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM packages_fts WHERE rowid IN (SELECT rowid FROM packages WHERE manager = ?);
	`, string(provider)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM packages WHERE manager = ?;`, string(provider)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM package_versions WHERE manager = ?;`, string(provider)); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Cache) insertBatch(records []model.Record) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO packages(package_id, manager, name, version, description, publisher, homepage, license, tags_json, search_tokens, last_seen_at, is_installed, installed_version, install_date, install_source, install_location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO packages_fts(rowid, package_id, name, description, tags, search_tokens)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer ftsStmt.Close()

	for _, r := range records {
		r.BuildSearchTokens()
		tagsJSON, err := json.Marshal(r.Tags)
		if err != nil {
			tagsJSON = []byte("[]")
		}

		res, err := stmt.Exec(
			r.PackageID, string(r.Manager), r.Name, r.Version, r.Description,
			r.Publisher, r.Homepage, r.License, string(tagsJSON), r.SearchTokens,
			formatTime(r.LastSeenAt), boolToInt(r.IsInstalled), r.InstalledVersion,
			formatTime(r.InstallDate), string(r.InstallSource), r.InstallLocation,
		)
		if err != nil {
			return err
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := ftsStmt.Exec(rowid, r.PackageID, r.Name, r.Description, strings.Join(r.Tags, " "), r.SearchTokens); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *Cache) writeSyncMetadata(m model.SyncMetadata) error {
	_, err := c.db.Exec(`
		INSERT INTO sync_metadata(provider, last_sync_started_at, last_sync_finished_at, last_sync_status, package_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			last_sync_started_at=excluded.last_sync_started_at,
			last_sync_finished_at=excluded.last_sync_finished_at,
			last_sync_status=excluded.last_sync_status,
			package_count=excluded.package_count,
			error_message=excluded.error_message
	`, string(m.Provider), formatTime(m.LastSyncStartedAt), formatTime(m.LastSyncFinishedAt), string(m.LastSyncStatus), m.PackageCount, m.ErrorMessage)
	return err
}

// UpsertVersions replaces a provider's auxiliary version list, used by
// the WinGet provider to retain every version seen for install
// targeting even though only the latest becomes Record.Version.
func (c *Cache) UpsertVersions(manager model.Manager, versions []model.VersionEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO package_versions(package_id, manager, version) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range versions {
		if _, err := stmt.Exec(v.PackageID, string(manager), v.Version); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Search runs a sanitized FTS5 MATCH query, optionally filtered by
// manager, ranked by BM25 (spec.md §4.4). An empty sanitized query
// returns an empty result without error.
func (c *Cache) Search(ctx context.Context, query string, managers []model.Manager, limit int) ([]model.Record, error) {
	ftsQuery, ok := sanitizeQuery(query)
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	prefixedColumns := prefixColumns("p", selectColumns)
	sqlQuery := fmt.Sprintf(`
		SELECT %s FROM packages_fts f
		JOIN packages p ON p.rowid = f.rowid
		WHERE f MATCH ?
	`, prefixedColumns)

	args := []any{ftsQuery}
	if clause, mgrArgs := qualifiedManagerFilter("p", managers); clause != "" {
		sqlQuery += " AND " + clause
		args = append(args, mgrArgs...)
	}
	sqlQuery += " ORDER BY bm25(f) LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errs.Wrap(errs.KindCacheCorrupt, "running search query", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// ListAvailable returns the full cached catalog (optionally filtered by
// manager), independent of search ranking, per spec.md §4.9's
// list_available contract: it pulls from the cache, never a provider.
func (c *Cache) ListAvailable(ctx context.Context, managers []model.Manager) ([]model.Record, error) {
	sqlQuery := fmt.Sprintf(`SELECT %s FROM packages`, selectColumns)
	var args []any
	if clause, mgrArgs := managerFilter(managers); clause != "" {
		sqlQuery += " WHERE " + clause
		args = append(args, mgrArgs...)
	}

	rows, err := c.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errs.Wrap(errs.KindCacheCorrupt, "listing available packages", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// GetInstalled returns every row with is_installed=1, optionally
// filtered by manager and/or attributed source.
func (c *Cache) GetInstalled(ctx context.Context, managers []model.Manager, source *model.Manager) ([]model.Record, error) {
	sqlQuery := fmt.Sprintf(`SELECT %s FROM packages WHERE is_installed = 1`, selectColumns)
	var args []any
	if clause, mgrArgs := managerFilter(managers); clause != "" {
		sqlQuery += " AND " + clause
		args = append(args, mgrArgs...)
	}
	if source != nil {
		sqlQuery += " AND install_source = ?"
		args = append(args, string(*source))
	}

	rows, err := c.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errs.Wrap(errs.KindCacheCorrupt, "querying installed packages", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// FindManager looks up the provider that owns packageID/name, per
// spec.md §4.6's resolver contract: exact case-sensitive package_id,
// then case-insensitive, then display name. Returns ok=false if none
// match, never inventing an attribution.
func (c *Cache) FindManager(ctx context.Context, packageID, name string) (model.Manager, bool, error) {
	queries := []struct {
		sqlQuery string
		arg      string
	}{
		{`SELECT manager FROM packages WHERE package_id = ? LIMIT 1`, packageID},
		{`SELECT manager FROM packages WHERE package_id = ? COLLATE NOCASE LIMIT 1`, packageID},
		{`SELECT manager FROM packages WHERE name = ? COLLATE NOCASE LIMIT 1`, name},
	}
	for _, q := range queries {
		if q.arg == "" {
			continue
		}
		var manager string
		err := c.db.QueryRowContext(ctx, q.sqlQuery, q.arg).Scan(&manager)
		if err == nil {
			return model.Manager(manager), true, nil
		}
		if err != sql.ErrNoRows {
			return "", false, errs.Wrap(errs.KindCacheCorrupt, "resolving manager", err)
		}
	}
	return "", false, nil
}

// SyncInstalled reconciles the installed-state columns against a fresh
// inventory scan, in one transaction: every row's is_installed flag is
// cleared first, then each input record either updates a matching
// (package_id, manager) row or, absent one, inserts a fresh record
// attributed to its resolved manager (spec.md §4.4).
func (c *Cache) SyncInstalled(records []model.Record) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE packages SET is_installed = 0, installed_version = '', install_date = '', install_source = '', install_location = ''`); err != nil {
		return err
	}

	updateStmt, err := tx.Prepare(`
		UPDATE packages SET is_installed = 1, installed_version = ?, install_date = ?, install_source = ?, install_location = ?
		WHERE package_id = ? AND manager = ?
	`)
	if err != nil {
		return err
	}
	defer updateStmt.Close()

	insertStmt, err := tx.Prepare(`
		INSERT INTO packages(package_id, manager, name, version, tags_json, search_tokens, last_seen_at, is_installed, installed_version, install_date, install_source, install_location)
		VALUES (?, ?, ?, ?, '[]', ?, ?, 1, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer insertStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO packages_fts(rowid, package_id, name, description, tags, search_tokens)
		VALUES (?, ?, ?, '', '', ?)
	`)
	if err != nil {
		return err
	}
	defer ftsStmt.Close()

	for _, r := range records {
		manager := r.Manager
		if manager == "" {
			manager = model.ManagerUnknown
		}
		res, err := updateStmt.Exec(r.InstalledVersion, formatTime(r.InstallDate), string(r.InstallSource), r.InstallLocation, r.PackageID, string(manager))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		r.Manager = r.InstallSource
		if r.Manager == "" {
			r.Manager = model.ManagerUnknown
		}
		r.BuildSearchTokens()
		res, err = insertStmt.Exec(
			r.PackageID, string(r.Manager), r.Name, r.InstalledVersion, r.SearchTokens,
			formatTime(time.Now()), r.InstalledVersion, formatTime(r.InstallDate),
			string(r.InstallSource), r.InstallLocation,
		)
		if err != nil {
			return err
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := ftsStmt.Exec(rowid, r.PackageID, r.Name, r.SearchTokens); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Freshness reports the last known sync outcome for a provider.
func (c *Cache) Freshness(ctx context.Context, provider model.Manager) (model.Freshness, error) {
	var (
		lastFinished string
		count        int
		status       string
	)
	err := c.db.QueryRowContext(ctx, `SELECT last_sync_finished_at, package_count, last_sync_status FROM sync_metadata WHERE provider = ?`, string(provider)).
		Scan(&lastFinished, &count, &status)
	if err == sql.ErrNoRows {
		return model.Freshness{Manager: provider}, nil
	}
	if err != nil {
		return model.Freshness{}, errs.Wrap(errs.KindCacheCorrupt, "reading sync metadata", err)
	}
	return model.Freshness{
		Manager:      provider,
		LastSyncAt:   parseTime(lastFinished),
		PackageCount: count,
		Status:       model.SyncStatus(status),
	}, nil
}

// prefixColumns qualifies each column in a comma-separated list with an
// alias, for queries that JOIN packages against packages_fts: bm25()
// requires the fts table in the FROM clause, so selectColumns alone
// (unqualified) would be ambiguous once both tables are in scope.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func managerFilter(managers []model.Manager) (string, []any) {
	return qualifiedManagerFilter("", managers)
}

// qualifiedManagerFilter is managerFilter with the column qualified by a
// table alias, for queries joining packages against another table where
// "manager" alone would be ambiguous.
func qualifiedManagerFilter(alias string, managers []model.Manager) (string, []any) {
	if len(managers) == 0 {
		return "", nil
	}
	column := "manager"
	if alias != "" {
		column = alias + ".manager"
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(managers)), ",")
	args := make([]any, len(managers))
	for i, m := range managers {
		args[i] = string(m)
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}

func scanAll(rows *sql.Rows) ([]model.Record, error) {
	var out []model.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, errs.Wrap(errs.KindCacheCorrupt, "scanning package row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

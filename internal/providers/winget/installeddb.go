package winget

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// IsKnownToInstalledDB checks WinGet's own installed.db for packageID,
// the manager-owned evidence spec.md §4.6 requires before a resolver
// cross-validation can confirm a winget fingerprint. The schema of
// installed.db is WinGet-internal and undocumented; this probes the "id"
// column of an "ids" table (exact, then case-insensitive), a best-effort
// probe rather than a guaranteed-stable read. An error is returned when
// neither probe can run (unreadable file, no such table).
func IsKnownToInstalledDB(dbPath, packageID string) (bool, error) {
	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return false, err
	}
	defer db.Close()

	var probeErr error
	ran := false
	for _, q := range []string{
		`SELECT 1 FROM ids WHERE id = ? LIMIT 1`,
		`SELECT 1 FROM ids WHERE id = ? COLLATE NOCASE LIMIT 1`,
	} {
		var hit int
		err := db.QueryRow(q, packageID).Scan(&hit)
		if err == nil {
			return true, nil
		}
		// ErrNoRows means no match; any other error (e.g. missing table)
		// means this probe doesn't apply, try the next one.
		if err == sql.ErrNoRows {
			ran = true
		} else {
			probeErr = err
		}
	}
	if !ran && probeErr != nil {
		return false, probeErr
	}
	return false, nil
}

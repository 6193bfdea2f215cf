package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/winpacman/core/internal/model"
)

// timeLayout is RFC3339; the cache stores timestamps as text so the
// database file has no binary, platform-specific encoding (spec.md §6:
// "the DB file must be portable between runs").
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// scanRecord reads one packages row into a model.Record. Callers select
// columns in exactly this order.
func scanRecord(scan func(dest ...any) error) (model.Record, error) {
	var (
		r               model.Record
		tagsJSON        string
		lastSeenAt      string
		installDate     string
		isInstalled     int
		installSource   sql.NullString
		installLocation sql.NullString
	)

	if err := scan(
		&r.PackageID, &r.Manager, &r.Name, &r.Version, &r.Description,
		&r.Publisher, &r.Homepage, &r.License, &tagsJSON, &lastSeenAt,
		&isInstalled, &r.InstalledVersion, &installDate, &installSource, &installLocation,
	); err != nil {
		return model.Record{}, err
	}

	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	r.LastSeenAt = parseTime(lastSeenAt)
	r.InstallDate = parseTime(installDate)
	r.IsInstalled = isInstalled != 0
	if installSource.Valid {
		r.InstallSource = model.Manager(installSource.String)
	}
	if installLocation.Valid {
		r.InstallLocation = installLocation.String
	}
	r.BuildSearchTokens()
	return r, nil
}

const selectColumns = `package_id, manager, name, version, description, publisher, homepage, license, tags_json, last_seen_at, is_installed, installed_version, install_date, install_source, install_location`

package cache

// migration is one ordered, additive schema step. The teacher's config
// and reporting packages favor small explicit ALTER TABLE steps over a
// migration framework (pkg/config, pkg/reporting); this cache follows
// the same shape.
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS packages (
	rowid INTEGER PRIMARY KEY AUTOINCREMENT,
	package_id TEXT NOT NULL,
	manager TEXT NOT NULL,
	name TEXT NOT NULL,
	version TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	publisher TEXT NOT NULL DEFAULT '',
	homepage TEXT NOT NULL DEFAULT '',
	license TEXT NOT NULL DEFAULT '',
	tags_json TEXT NOT NULL DEFAULT '[]',
	search_tokens TEXT NOT NULL DEFAULT '',
	last_seen_at TEXT NOT NULL DEFAULT '',
	is_installed INTEGER NOT NULL DEFAULT 0,
	installed_version TEXT NOT NULL DEFAULT '',
	install_date TEXT NOT NULL DEFAULT '',
	install_source TEXT NOT NULL DEFAULT '',
	install_location TEXT NOT NULL DEFAULT '',
	UNIQUE(package_id, manager)
);

CREATE INDEX IF NOT EXISTS idx_packages_manager_installed ON packages(manager, is_installed);
CREATE INDEX IF NOT EXISTS idx_packages_install_source ON packages(install_source);
CREATE INDEX IF NOT EXISTS idx_packages_package_id ON packages(package_id);

CREATE VIRTUAL TABLE IF NOT EXISTS packages_fts USING fts5(
	package_id,
	name,
	description,
	tags,
	search_tokens,
	content='packages',
	content_rowid='rowid'
);

CREATE TABLE IF NOT EXISTS sync_metadata (
	provider TEXT PRIMARY KEY,
	last_sync_started_at TEXT NOT NULL DEFAULT '',
	last_sync_finished_at TEXT NOT NULL DEFAULT '',
	last_sync_status TEXT NOT NULL DEFAULT '',
	package_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS package_versions (
	package_id TEXT NOT NULL,
	manager TEXT NOT NULL,
	version TEXT NOT NULL,
	UNIQUE(package_id, manager, version)
);
`,
	},
}

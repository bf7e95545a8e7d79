package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id             INTEGER PRIMARY KEY,
	module         TEXT NOT NULL DEFAULT '',
	event_type     TEXT NOT NULL DEFAULT '',
	scope_type     TEXT NOT NULL DEFAULT '',
	scope_id       TEXT NOT NULL DEFAULT '',
	project_id     INTEGER,
	project_name   TEXT NOT NULL DEFAULT '',
	actor_user_id  TEXT NOT NULL DEFAULT '',
	route          TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL,
	summary        TEXT NOT NULL DEFAULT '',
	created_utc    TEXT NOT NULL,
	created_at_ms  INTEGER NOT NULL,
	read_utc       TEXT,
	read_at_ms     INTEGER,
	project_muted  INTEGER NOT NULL DEFAULT 0 CHECK(project_muted IN (0, 1))
);

CREATE TABLE IF NOT EXISTS snapshot_meta (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at_ms);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notifications_project_id
	ON notifications(project_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"
	_ "modernc.org/sqlite"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

const (
	metaUnread  = "unread_count"
	metaSavedAt = "saved_at"
)

// SQLiteStore implements Cache using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// notificationRow is the on-disk shape of a cached notification.
type notificationRow struct {
	ID           int64          `db:"id"`
	Module       string         `db:"module"`
	EventType    string         `db:"event_type"`
	ScopeType    string         `db:"scope_type"`
	ScopeID      string         `db:"scope_id"`
	ProjectID    sql.NullInt64  `db:"project_id"`
	ProjectName  string         `db:"project_name"`
	ActorUserID  string         `db:"actor_user_id"`
	Route        string         `db:"route"`
	Title        string         `db:"title"`
	Summary      string         `db:"summary"`
	CreatedUTC   string         `db:"created_utc"`
	CreatedAtMS  int64          `db:"created_at_ms"`
	ReadUTC      sql.NullString `db:"read_utc"`
	ReadAtMS     sql.NullInt64  `db:"read_at_ms"`
	ProjectMuted int            `db:"project_muted"`
}

func toRow(n model.Notification) notificationRow {
	r := notificationRow{
		ID:           n.ID,
		Module:       n.Module,
		EventType:    n.EventType,
		ScopeType:    n.ScopeType,
		ScopeID:      n.ScopeID,
		ProjectName:  n.ProjectName,
		ActorUserID:  n.ActorUserID,
		Route:        n.Route,
		Title:        n.Title,
		Summary:      n.Summary,
		CreatedUTC:   n.CreatedUTC,
		CreatedAtMS:  n.CreatedAt.UnixMilli(),
		ProjectMuted: boolToInt(n.IsProjectMuted),
	}
	if n.ProjectID != nil {
		r.ProjectID = sql.NullInt64{Int64: *n.ProjectID, Valid: true}
	}
	if n.ReadUTC != nil {
		r.ReadUTC = sql.NullString{String: *n.ReadUTC, Valid: true}
		if n.ReadAt != nil {
			r.ReadAtMS = sql.NullInt64{Int64: n.ReadAt.UnixMilli(), Valid: true}
		}
	}
	return r
}

func (r notificationRow) toModel() model.Notification {
	n := model.Notification{
		ID:             r.ID,
		Module:         r.Module,
		EventType:      r.EventType,
		ScopeType:      r.ScopeType,
		ScopeID:        r.ScopeID,
		ProjectName:    r.ProjectName,
		ActorUserID:    r.ActorUserID,
		Route:          r.Route,
		Title:          r.Title,
		Summary:        r.Summary,
		CreatedUTC:     r.CreatedUTC,
		CreatedAt:      time.UnixMilli(r.CreatedAtMS).UTC(),
		IsProjectMuted: r.ProjectMuted != 0,
	}
	if r.ProjectID.Valid {
		pid := r.ProjectID.Int64
		n.ProjectID = &pid
	}
	if r.ReadUTC.Valid {
		at := n.CreatedAt
		if r.ReadAtMS.Valid {
			at = time.UnixMilli(r.ReadAtMS.Int64).UTC()
		}
		s := r.ReadUTC.String
		n.ReadUTC = &s
		n.ReadAt = &at
		n.IsRead = true
	}
	return n
}

// SaveSnapshot replaces the cached snapshot in one transaction.
func (s *SQLiteStore) SaveSnapshot(
	ctx context.Context,
	notifications []model.Notification,
	unread int,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing cached notifications: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO notifications (
			id, module, event_type, scope_type, scope_id,
			project_id, project_name, actor_user_id,
			route, title, summary,
			created_utc, created_at_ms, read_utc, read_at_ms,
			project_muted
		) VALUES (
			:id, :module, :event_type, :scope_type, :scope_id,
			:project_id, :project_name, :actor_user_id,
			:route, :title, :summary,
			:created_utc, :created_at_ms, :read_utc, :read_at_ms,
			:project_muted
		)`

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, n := range notifications {
		if _, err := stmt.ExecContext(ctx, toRow(n)); err != nil {
			return fmt.Errorf("caching notification %d: %w", n.ID, err)
		}
	}

	now := s.now().UTC()
	if err := setMeta(ctx, tx, metaUnread, strconv.Itoa(max(unread, 0)), now); err != nil {
		return err
	}
	if err := setMeta(ctx, tx, metaSavedAt, now.Format(time.RFC3339Nano), now); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSnapshot returns the cached snapshot, newest first. A positive limit
// caps the number of records returned. An empty cache yields a zero
// Snapshot and no error.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, limit int) (Snapshot, error) {
	query := "SELECT * FROM notifications ORDER BY created_at_ms DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return Snapshot{}, fmt.Errorf("querying cached notifications: %w", err)
	}

	snap := Snapshot{Notifications: make([]model.Notification, 0, len(rows))}
	for _, r := range rows {
		snap.Notifications = append(snap.Notifications, r.toModel())
	}

	meta, err := s.meta(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Unread = max(cast.ToInt(meta[metaUnread]), 0)
	if v := meta[metaSavedAt]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			snap.SavedAt = t
		}
	}

	return snap, nil
}

// Clear drops every cached record and the metadata.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing cached notifications: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_meta"); err != nil {
		return fmt.Errorf("clearing snapshot metadata: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) meta(ctx context.Context) (map[string]string, error) {
	var kv []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &kv, "SELECT key, value FROM snapshot_meta"); err != nil {
		return nil, fmt.Errorf("querying snapshot metadata: %w", err)
	}

	out := make(map[string]string, len(kv))
	for _, e := range kv {
		out[e.Key] = e.Value
	}
	return out, nil
}

func setMeta(ctx context.Context, tx *sqlx.Tx, key, value string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshot_meta (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, at,
	)
	if err != nil {
		return fmt.Errorf("writing snapshot metadata %s: %w", key, err)
	}
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vsh/internal/database/migrations"
	"vsh/internal/model"
	"vsh/internal/vsh"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed-width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements vsh.SnapshotStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ vsh.SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the store at path, which can be a file path or
// ":memory:". The schema is not migrated; see Migrate.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enforced. The
// pool is limited to one connection so that ":memory:" databases are not
// split across connections.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Save stores snap, replacing any snapshot with the same name.
func (s *SQLiteStore) Save(snap *model.Snapshot) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, snap.Name); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", snap.Name, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, working_dir, separator) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.CreatedAt.UTC().Format(timeLayout), snap.WorkingDir, snap.Separator)
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", snap.Name, err)
	}

	for _, n := range snap.Nodes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_nodes (snapshot_id, idx, parent_idx, kind, name, content) VALUES (?, ?, ?, ?, ?, ?)`,
			snap.ID, n.Index, n.Parent, n.Kind, n.Name, n.Content)
		if err != nil {
			return fmt.Errorf("inserting node %d: %w", n.Index, err)
		}
	}
	for i, line := range snap.History {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_history (snapshot_id, position, line) VALUES (?, ?, ?)`, snap.ID, i, line)
		if err != nil {
			return fmt.Errorf("inserting history: %w", err)
		}
	}
	for i, p := range snap.DirStack {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_dirstack (snapshot_id, position, path) VALUES (?, ?, ?)`, snap.ID, i, p)
		if err != nil {
			return fmt.Errorf("inserting directory stack: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load returns the snapshot called name, or nil if there is none.
func (s *SQLiteStore) Load(name string) (*model.Snapshot, error) {
	ctx := context.Background()

	snap := &model.Snapshot{Name: name}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, working_dir, separator FROM snapshots WHERE name = ?`, name).
		Scan(&snap.ID, &created, &snap.WorkingDir, &snap.Separator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	if snap.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, parent_idx, kind, name, content FROM snapshot_nodes WHERE snapshot_id = ? ORDER BY idx`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("loading nodes of %s: %w", name, err)
	}
	for rows.Next() {
		var n model.SnapshotNode
		if err := rows.Scan(&n.Index, &n.Parent, &n.Kind, &n.Name, &n.Content); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading nodes of %s: %w", name, err)
	}

	if snap.History, err = s.strings(ctx,
		`SELECT line FROM snapshot_history WHERE snapshot_id = ? ORDER BY position`, snap.ID); err != nil {
		return nil, fmt.Errorf("loading history of %s: %w", name, err)
	}
	if snap.DirStack, err = s.strings(ctx,
		`SELECT path FROM snapshot_dirstack WHERE snapshot_id = ? ORDER BY position`, snap.ID); err != nil {
		return nil, fmt.Errorf("loading directory stack of %s: %w", name, err)
	}
	return snap, nil
}

// List returns a summary of every snapshot, newest first.
func (s *SQLiteStore) List() ([]*model.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT s.id, s.name, s.created_at, COUNT(n.idx)
		FROM snapshots s LEFT JOIN snapshot_nodes n ON n.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.name`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var infos []*model.SnapshotInfo
	for rows.Next() {
		info := &model.SnapshotInfo{}
		var created string
		if err := rows.Scan(&info.ID, &info.Name, &created, &info.NodeCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if info.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parsing created_at of %s: %w", info.Name, err)
		}
		infos = append(infos, info)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return infos, nil
}

// Delete removes the snapshot called name together with its nodes, history
// and directory stack.
func (s *SQLiteStore) Delete(name string) error {
	res, err := s.db.ExecContext(context.Background(), `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", name, vsh.ErrSnapshotNotFound)
	}
	return nil
}

// Path returns the file path of the database, or ":memory:".
func (s *SQLiteStore) Path() string {
	return s.path
}

// Migrate brings the schema up to date.
func (s *SQLiteStore) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations returns an error unless the schema is up to date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, v)
	}
	return out, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

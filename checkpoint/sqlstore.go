package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/arborian/workflow"
)

// Dialect selects the SQL variant SQLStore speaks: schema syntax and driver
// name both differ between MySQL and SQLite.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectMySQL
)

// SQLStore persists checkpoints in a single "workflow_checkpoints" table
// via database/sql, supporting both a local SQLite file and a shared MySQL
// server. The checkpoint's Outbox, Events, SharedState, and ExecutorState
// are stored as a single JSON blob; only CheckpointID, WorkflowID,
// Timestamp, and Label are broken out into their own columns for
// indexing/listing.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLiteStore opens (and migrates) a SQLite-backed SQLStore at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("checkpoint: %s: %w", pragma, err)
		}
	}

	s := &SQLStore{db: db, dialect: DialectSQLite}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewMySQLStore opens (and migrates) a MySQL-backed SQLStore using dsn, a
// standard go-sql-driver/mysql data source name.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open mysql: %w", err)
	}

	s := &SQLStore{db: db, dialect: DialectMySQL}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case DialectMySQL:
		ddl = `
			CREATE TABLE IF NOT EXISTS workflow_checkpoints (
				checkpoint_id VARCHAR(64) PRIMARY KEY,
				workflow_id VARCHAR(64) NOT NULL,
				created_at DATETIME NOT NULL,
				label VARCHAR(255) NOT NULL DEFAULT '',
				payload LONGTEXT NOT NULL,
				INDEX idx_workflow_id (workflow_id)
			)`
	default:
		ddl = `
			CREATE TABLE IF NOT EXISTS workflow_checkpoints (
				checkpoint_id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				payload TEXT NOT NULL
			)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("checkpoint: migrate: %w", err)
	}
	if s.dialect == DialectSQLite {
		_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_workflow_checkpoints_workflow_id ON workflow_checkpoints(workflow_id)`)
	}
	return nil
}

func (s *SQLStore) Save(cp workflow.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return &workflow.SerializationError{Cause: err}
	}

	var upsert string
	switch s.dialect {
	case DialectMySQL:
		upsert = `
			INSERT INTO workflow_checkpoints (checkpoint_id, workflow_id, created_at, label, payload)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE workflow_id=VALUES(workflow_id), created_at=VALUES(created_at),
				label=VALUES(label), payload=VALUES(payload)`
	default:
		upsert = `
			INSERT INTO workflow_checkpoints (checkpoint_id, workflow_id, created_at, label, payload)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(checkpoint_id) DO UPDATE SET
				workflow_id=excluded.workflow_id, created_at=excluded.created_at,
				label=excluded.label, payload=excluded.payload`
	}

	_, err = s.db.ExecContext(context.Background(), upsert,
		cp.CheckpointID, cp.WorkflowID, cp.Timestamp.UTC(), cp.Label, string(payload))
	if err != nil {
		return fmt.Errorf("checkpoint: save %q: %w", cp.CheckpointID, err)
	}
	return nil
}

func (s *SQLStore) Load(checkpointID string) (workflow.Checkpoint, error) {
	row := s.db.QueryRowContext(context.Background(),
		`SELECT payload FROM workflow_checkpoints WHERE checkpoint_id = ?`, checkpointID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return workflow.Checkpoint{}, workflow.ErrCheckpointNotFound
		}
		return workflow.Checkpoint{}, fmt.Errorf("checkpoint: load %q: %w", checkpointID, err)
	}

	var cp workflow.Checkpoint
	if err := json.Unmarshal([]byte(payload), &cp); err != nil {
		return workflow.Checkpoint{}, &workflow.SerializationError{Cause: err}
	}
	return cp, nil
}

func (s *SQLStore) List(workflowID string) ([]string, error) {
	full, err := s.ListFull(workflowID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(full))
	for i, cp := range full {
		ids[i] = cp.CheckpointID
	}
	return ids, nil
}

func (s *SQLStore) ListFull(workflowID string) ([]workflow.Checkpoint, error) {
	query := `SELECT payload FROM workflow_checkpoints`
	args := []any{}
	if workflowID != "" {
		query += ` WHERE workflow_id = ?`
		args = append(args, workflowID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []workflow.Checkpoint
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("checkpoint: scan: %w", err)
		}
		var cp workflow.Checkpoint
		if err := json.Unmarshal([]byte(payload), &cp); err != nil {
			continue // skip corrupt row
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(checkpointID string) error {
	_, err := s.db.ExecContext(context.Background(),
		`DELETE FROM workflow_checkpoints WHERE checkpoint_id = ?`, checkpointID)
	return err
}

// Close releases the underlying *sql.DB.
func (s *SQLStore) Close() error { return s.db.Close() }

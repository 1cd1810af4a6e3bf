package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the SQLite database at the given path, runs schema
// initialization, and configures WAL mode for concurrent reads.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS root_profiles (
  user_id TEXT PRIMARY KEY,
  persona_summary TEXT NOT NULL DEFAULT '',
  traits TEXT,
  value_set TEXT,
  confidence_score REAL NOT NULL DEFAULT 1.0,
  created_at INTEGER NOT NULL,
  last_updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS memory_nodes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  domain TEXT NOT NULL DEFAULT 'general',
  priority TEXT NOT NULL,
  node_type TEXT NOT NULL,
  content TEXT NOT NULL,
  confidence REAL NOT NULL DEFAULT 0.5,
  reinforcement_count INTEGER NOT NULL DEFAULT 1,
  root_alignment TEXT NOT NULL DEFAULT 'neutral',
  vector_synced INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL,
  last_used_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_user ON memory_nodes(user_id);
CREATE INDEX IF NOT EXISTS idx_nodes_user_priority ON memory_nodes(user_id, priority);
CREATE INDEX IF NOT EXISTS idx_nodes_created_at ON memory_nodes(created_at);
CREATE INDEX IF NOT EXISTS idx_nodes_last_used_at ON memory_nodes(last_used_at);
CREATE INDEX IF NOT EXISTS idx_nodes_domain ON memory_nodes(domain);

CREATE TABLE IF NOT EXISTS embedding_cache (
  content_hash TEXT PRIMARY KEY,
  embedding BLOB NOT NULL,
  dimension INTEGER NOT NULL,
  model TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema changes added after the initial
// schema. Each migration is idempotent so it is safe to call on every open.
func runMigrations(db *sql.DB) error {
	hasVectorSynced, err := columnExists(db, "memory_nodes", "vector_synced")
	if err != nil {
		return fmt.Errorf("check vector_synced column: %w", err)
	}
	if !hasVectorSynced {
		if _, err := db.Exec(`ALTER TABLE memory_nodes ADD COLUMN vector_synced INTEGER NOT NULL DEFAULT 1`); err != nil {
			return fmt.Errorf("add vector_synced column: %w", err)
		}
	}
	return nil
}

// NodeCount returns the total number of memory nodes in the database.
func (db *DB) NodeCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM memory_nodes").Scan(&count)
	return count, err
}

// columnExists checks if a column exists in a table. It properly closes the
// rows cursor before returning, avoiding deadlocks with MaxOpenConns(1).
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') WHERE name = ?", table),
		column,
	)
	if err != nil {
		return false, err
	}
	found := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}

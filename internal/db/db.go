package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/clipstash/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when the clips table changes; older databases are recreated.
const CurrentSchemaVersion = 1

// FileName is the database file created inside the base directory.
const FileName = "clipstash.db"

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS clips (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  content   TEXT    NOT NULL,
  timestamp INTEGER NOT NULL,
  isPinned  INTEGER NOT NULL DEFAULT 0,
  folder    TEXT    NOT NULL DEFAULT 'Inbox'
);

CREATE INDEX IF NOT EXISTS idx_clips_content ON clips(content);

CREATE INDEX IF NOT EXISTS idx_clips_folder_order
ON clips(folder, isPinned DESC, timestamp DESC);
`

// Init initializes the SQLite database at baseDir/clipstash.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.clipstash.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate brings the schema to CurrentSchemaVersion. There are no
// incremental migrations: a database stamped with any other non-zero
// version has its clips table dropped and recreated.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version == CurrentSchemaVersion {
		return nil
	}

	if version != 0 {
		slog.Warn("clip schema version mismatch, recreating table",
			"found", version,
			"want", CurrentSchemaVersion,
		)
		if _, err := db.Exec(`DROP TABLE IF EXISTS clips`); err != nil {
			return fmt.Errorf("dropping clips table: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema v%d: %w", CurrentSchemaVersion, err)
	}
	return SetUserVersion(db, CurrentSchemaVersion)
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

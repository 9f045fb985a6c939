package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) TableExistsQuery() (string, func(string) []any) {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		func(tableName string) []any { return []any{tableName} }
}

func (sqliteDialect) ColumnType(sample any) string {
	switch sample.(type) {
	case int, int64:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

// OpenSQLite opens (or creates) a SQLite store at path, creating the
// parent directory if needed. WAL mode keeps readers from blocking the
// single writer, matching the serialized run model.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes; one connection avoids
	// SQLITE_BUSY churn under the shared-handle model.
	db.SetMaxOpenConns(1)
	return &Store{db: db, dialect: sqliteDialect{}}, nil
}

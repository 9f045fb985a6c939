package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func (postgresDialect) TableExistsQuery() (string, func(string) []any) {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = $1`,
		func(tableName string) []any { return []any{tableName} }
}

func (postgresDialect) ColumnType(sample any) string {
	switch sample.(type) {
	case int, int64:
		return "BIGINT"
	case float64:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// OpenPostgres opens a PostgreSQL-backed store from a connection string.
func OpenPostgres(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: store dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db, dialect: postgresDialect{}}, nil
}

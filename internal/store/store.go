// Package store implements the persistent store adapter and the
// existing-identity index over a local relational database.
//
// Tables are created lazily on first write with a column layout inferred
// from the sample payload (schema-on-write); the engine never alters a
// table's schema afterwards and never drops tables. Identity constraints
// are applied only for the short allow-list in tableKeys.
//
// Two backends share this implementation through database/sql:
//
//	SQLite   - modernc.org/sqlite (local file store, the default)
//	Postgres - lib/pq
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/LUNARKN1GHT/NBA-Analytics/internal/table"
)

// WriteMode selects how a payload lands in its target table.
type WriteMode int

const (
	// ModeAppend adds rows without uniqueness checking. Dedup is the
	// orchestrator's responsibility, not the store's.
	ModeAppend WriteMode = iota

	// ModeReplace discards prior contents and writes the payload in one
	// transaction. Used for tables that mirror current state.
	ModeReplace
)

func (m WriteMode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "append"
}

// tableKeys is the allow-list of tables with explicit identity-column
// constraints. Everything else is created without constraints.
var tableKeys = map[string][]string{
	"player_info": {"PERSON_ID"},
	"game_pbp":    {"GAME_ID", "EVENTNUM"},
}

// dialect captures the few SQL differences between backends.
type dialect interface {
	Name() string
	Placeholder(i int) string
	TableExistsQuery() (query string, args func(tableName string) []any)
	ColumnType(sample any) string
}

// Store owns the database handle. Access is effectively serialized by the
// orchestrator, so a single shared handle is safe.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// DB exposes the underlying handle for downstream consumers.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureTable creates tableName with samplePayload's column layout if it
// does not exist yet. Idempotent; safe to call before every write. The
// sample's first row, when present, drives column type inference; a
// zero-row sample falls back to TEXT columns.
func (s *Store) EnsureTable(ctx context.Context, tableName string, sample *table.Table) error {
	if sample == nil || len(sample.Columns) == 0 {
		return fmt.Errorf("ensure %s: sample payload has no columns", tableName)
	}

	defs := make([]string, 0, len(sample.Columns))
	for i, col := range sample.Columns {
		var v any
		if len(sample.Rows) > 0 {
			v = sample.Rows[0][i]
		}
		defs = append(defs, quoteIdent(col)+" "+s.dialect.ColumnType(v))
	}

	if keys, ok := tableKeys[tableName]; ok && containsAll(sample.Columns, keys) {
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = quoteIdent(k)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s: %w", tableName, err)
	}
	return nil
}

// Write persists payload into tableName. Writing an empty payload is a
// logged no-op, not an error. Replace mode clears prior contents and
// inserts the payload atomically; a failure rolls the table back to its
// previous contents.
func (s *Store) Write(ctx context.Context, tableName string, payload *table.Table, mode WriteMode) error {
	if payload.Empty() {
		log.Printf("[store] %s: empty payload, skipping %s", tableName, mode)
		return nil
	}
	if err := s.EnsureTable(ctx, tableName, payload); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write %s: begin: %w", tableName, err)
	}
	defer tx.Rollback()

	if mode == ModeReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(tableName)); err != nil {
			return fmt.Errorf("write %s: clear: %w", tableName, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(tableName, payload.Columns))
	if err != nil {
		return fmt.Errorf("write %s: prepare: %w", tableName, err)
	}
	defer stmt.Close()

	for _, row := range payload.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("write %s: insert: %w", tableName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write %s: commit: %w", tableName, err)
	}

	log.Printf("[store] %s: wrote %d rows (%s)", tableName, payload.Len(), mode)
	return nil
}

// Query runs a read-only statement and materializes the result. Byte
// values are normalized to strings so result tables compare cleanly.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: columns: %w", err)
	}

	out := table.New(cols...)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return out, nil
}

// ExistingIDs returns the set of identity keys already present in
// tableName, projected from idColumns. A missing table yields the empty
// set; that is what bootstraps a brand-new ingestion target. The read is
// a single distinct projection, never a full materialization of non-key
// columns.
func (s *Store) ExistingIDs(ctx context.Context, tableName string, idColumns ...string) (map[string]struct{}, error) {
	if len(idColumns) == 0 {
		return nil, fmt.Errorf("existing ids %s: no identity columns", tableName)
	}

	exists, err := s.tableExists(ctx, tableName)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	if !exists {
		return ids, nil
	}

	quoted := make([]string, len(idColumns))
	for i, c := range idColumns {
		quoted[i] = quoteIdent(c)
	}
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(tableName))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("existing ids %s: %w", tableName, err)
	}
	defer rows.Close()

	for rows.Next() {
		values := make([]any, len(idColumns))
		ptrs := make([]any, len(idColumns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("existing ids %s: scan: %w", tableName, err)
		}
		ids[Key(values...)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("existing ids %s: %w", tableName, err)
	}
	return ids, nil
}

// Key builds the canonical dedup key for one or more identity values.
// Work-item identities and values read back from the store must map to
// the same key, so numeric values normalize to their integer form.
func Key(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = canonicalValue(v)
	}
	return strings.Join(parts, "\x1f")
}

func canonicalValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func (s *Store) tableExists(ctx context.Context, tableName string) (bool, error) {
	query, args := s.dialect.TableExistsQuery()
	var name string
	err := s.db.QueryRowContext(ctx, query, args(tableName)...).Scan(&name)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("existing ids %s: table lookup: %w", tableName, err)
	}
	return true, nil
}

func (s *Store) insertSQL(tableName string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = s.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(tableName), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

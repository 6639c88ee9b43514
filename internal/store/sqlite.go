package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLStore keeps every logical table as (id, created_at, data JSON) in SQLite.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	s := &SQLStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, t := range Tables {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	data       TEXT NOT NULL
)`, t)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create %s: %w", t, err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// Ping is used by readiness checks.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Insert(ctx context.Context, table Table, row Row) (string, error) {
	if !table.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	r := prepare(row, s.now())
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("store: marshal %s row: %w", table, err)
	}
	id := r["id"].(string)
	stmt := fmt.Sprintf(`INSERT INTO %s (id, created_at, data) VALUES (?, ?, ?)`, table)
	if _, err := s.db.ExecContext(ctx, stmt, id, r["created_at"], string(data)); err != nil {
		return "", fmt.Errorf("store: insert into %s: %w", table, err)
	}
	return id, nil
}

func (s *SQLStore) Select(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	stmt, args := buildSelect(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store: select from %s: %w", q.Table, err)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", q.Table, err)
		}
		var r Row
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("store: corrupt row in %s: %w", q.Table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", q.Table, err)
	}
	return out, nil
}

// buildSelect assumes q has been validated.
func buildSelect(q Query) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(q.Filters)+1)
	fmt.Fprintf(&b, "SELECT data FROM %s", q.Table)
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "json_extract(data, '$.%s') = ?", f.Column)
		args = append(args, sqlValue(f.Value))
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY json_extract(data, '$.%s') %s, rowid %s", q.OrderBy, dir, dir)
	} else {
		b.WriteString(" ORDER BY rowid ASC")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

// sqlValue maps a filter value onto what json_extract yields for it.
func sqlValue(v any) any {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

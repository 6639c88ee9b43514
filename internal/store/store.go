// Package store is the persistence collaborator: insert-only writes and
// simple filtered, ordered selects over a fixed set of logical tables.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Table string

const (
	SoilData          Table = "soil_data"
	CropData          Table = "crop_data"
	PestAlerts        Table = "pest_alerts"
	ChatSessions      Table = "chat_sessions"
	ChatMessages      Table = "chat_messages"
	ContactQueries    Table = "contact_queries"
	EvaluationResults Table = "evaluation_results"
)

var Tables = []Table{SoilData, CropData, PestAlerts, ChatSessions, ChatMessages, ContactQueries, EvaluationResults}

var (
	ErrUnknownTable  = errors.New("store: unknown table")
	ErrInvalidColumn = errors.New("store: invalid column name")
)

func (t Table) Valid() bool {
	for _, x := range Tables {
		if x == t {
			return true
		}
	}
	return false
}

// Row is one record as a JSON object.
type Row map[string]any

// Filter is an equality condition on a column.
type Filter struct {
	Column string
	Value  any
}

type Query struct {
	Table   Table
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int // 0 means no limit
}

func (q Query) Where(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Value: value})
	return q
}

func (q Query) Newest(limit int) Query {
	q.OrderBy, q.Desc, q.Limit = "created_at", true, limit
	return q
}

func (q Query) Validate() error {
	if !q.Table.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTable, q.Table)
	}
	for _, f := range q.Filters {
		if !validColumn(f.Column) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, f.Column)
		}
	}
	if q.OrderBy != "" && !validColumn(q.OrderBy) {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, q.OrderBy)
	}
	return nil
}

var columnRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validColumn(c string) bool { return columnRE.MatchString(c) }

// Store is implemented by every backend.
type Store interface {
	Insert(ctx context.Context, table Table, row Row) (string, error)
	Select(ctx context.Context, q Query) ([]Row, error)
}

// TimeLayout orders lexically the same way it orders in time.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

var timestampColumns = []string{"created_at", "updated_at"}

// prepare copies row, assigning an id and missing timestamps.
func prepare(row Row, now time.Time) Row {
	out := make(Row, len(row)+3)
	for k, v := range row {
		out[k] = v
	}
	if id, _ := out["id"].(string); id == "" {
		out["id"] = uuid.NewString()
	}
	for _, c := range timestampColumns {
		if c == "updated_at" {
			if _, ok := out[c]; !ok {
				continue
			}
		}
		out[c] = normaliseTime(out[c], now)
	}
	return out
}

func normaliseTime(v any, now time.Time) string {
	if s, ok := v.(string); ok && s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil && !t.IsZero() {
			return t.UTC().Format(TimeLayout)
		}
	}
	return now.UTC().Format(TimeLayout)
}

// Encode turns a record struct into a Row through its json tags.
func Encode(v any) (Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	var row Row
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return row, nil
}

// Decode fills out from a Row.
func Decode(row Row, out any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("store: decode: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("store: decode: %w", err)
	}
	return nil
}

// InsertRecord encodes rec and inserts it.
func InsertRecord(ctx context.Context, s Store, table Table, rec any) (string, error) {
	row, err := Encode(rec)
	if err != nil {
		return "", err
	}
	return s.Insert(ctx, table, row)
}

// SelectRecords runs q and decodes every row into a T.
func SelectRecords[T any](ctx context.Context, s Store, q Query) ([]T, error) {
	rows, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := Decode(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package pbimport

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Record is one PocketBase row keyed by column name.
type Record map[string]any

// String returns the column as text. Missing and NULL columns are "".
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// First returns the first non-empty value among cols. PocketBase schemas
// drifted over time, so some fields exist under more than one name.
func (r Record) First(cols ...string) string {
	for _, c := range cols {
		if s := strings.TrimSpace(r.String(c)); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the column as an integer, 0 when missing or malformed.
func (r Record) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	n, _ := strconv.ParseInt(strings.TrimSpace(r.String(col)), 10, 64)
	return n
}

// Bool reads PocketBase bools, stored as 0/1 or "true"/"false".
func (r Record) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	}
	b, _ := strconv.ParseBool(strings.TrimSpace(r.String(col)))
	return b
}

var pbTimeLayouts = []string{
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// Time parses a PocketBase datetime column. The zero time means missing.
func (r Record) Time(col string) time.Time {
	if t, ok := r[col].(time.Time); ok {
		return t.UTC()
	}
	s := strings.TrimSpace(r.String(col))
	for _, layout := range pbTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// List reads a multi-value column: a JSON array, or a single bare value.
func (r Record) List(col string) []string {
	s := strings.TrimSpace(r.String(col))
	if s == "" || s == "[]" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return compact(out)
		}
	}
	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SQLiteReader reads collections from a PocketBase data.db. The file is
// opened read-only so a running PocketBase instance is never disturbed.
type SQLiteReader struct {
	db *sql.DB
}

// NewSQLiteReader opens path read-only.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pocketbase database: %w", err)
	}
	dsn := "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteReader{db: db}, nil
}

// HasTable reports whether the collection table exists.
func (r *SQLiteReader) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// Count returns the number of rows in table.
func (r *SQLiteReader) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Each streams the rows of table, oldest first, to fn. It stops at the first
// error fn returns.
func (r *SQLiteReader) Each(ctx context.Context, table string, fn func(Record) error) error {
	order := ""
	if ok, _ := r.hasColumn(ctx, table, "created"); ok {
		order = " ORDER BY created, rowid"
	}
	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+order)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns %s: %w", table, err)
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *SQLiteReader) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Close closes the database.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

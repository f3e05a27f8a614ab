package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Fixed table schemas. Column names from user input are validated against
// these, so filters can be interpolated as placeholders only.
type tableSpec struct {
	columns  []string
	jsonCols map[string]bool
}

var schemas = map[string]tableSpec{
	"shipments_raw": {
		columns:  []string{"id", "hbl_no", "agent", "sheet_name", "raw_json", "created_at"},
		jsonCols: map[string]bool{"raw_json": true},
	},
	"booking_forecast": {
		columns:  []string{"id", "vessel", "vessel_clean", "port", "agent", "booking_eta", "forecast_eta", "raw_json", "created_at"},
		jsonCols: map[string]bool{"raw_json": true},
	},
}

const ddl = `
CREATE TABLE IF NOT EXISTS shipments_raw (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	hbl_no     TEXT NOT NULL,
	agent      TEXT NOT NULL DEFAULT '',
	sheet_name TEXT NOT NULL DEFAULT '',
	raw_json   TEXT,
	created_at TEXT,
	UNIQUE (hbl_no, agent, sheet_name)
);
CREATE TABLE IF NOT EXISTS booking_forecast (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	vessel       TEXT,
	vessel_clean TEXT,
	port         TEXT,
	agent        TEXT,
	booking_eta  TEXT,
	forecast_eta TEXT,
	raw_json     TEXT,
	created_at   TEXT
);
CREATE INDEX IF NOT EXISTS idx_booking_vessel_port ON booking_forecast (vessel_clean, port);
`

// SQLite is a Store backed by a local sqlite database (pure-Go driver).
type SQLite struct {
	db *sql.DB
}

func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Table(name string) Table {
	return &sqliteTable{db: s.db, name: name}
}

type sqliteTable struct {
	db   *sql.DB
	name string
}

func (t *sqliteTable) spec() (tableSpec, error) {
	sp, ok := schemas[t.name]
	if !ok {
		return tableSpec{}, fmt.Errorf("unknown table %q", t.name)
	}
	return sp, nil
}

func (t *sqliteTable) checkCols(sp tableSpec, cols []string) error {
	for _, c := range cols {
		ok := false
		for _, known := range sp.columns {
			if c == known {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unknown column %q in table %q", c, t.name)
		}
	}
	return nil
}

func (t *sqliteTable) Select(fields ...string) Query {
	q := &sqliteQuery{table: t}
	sp, err := t.spec()
	if err != nil {
		q.err = err
		return q
	}
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == "*") {
		q.fields = sp.columns
		return q
	}
	if err := t.checkCols(sp, fields); err != nil {
		q.err = err
		return q
	}
	q.fields = fields
	return q
}

func (t *sqliteTable) Insert(ctx context.Context, rows []Row) error {
	sp, err := t.spec()
	if err != nil {
		return err
	}
	for _, row := range rows {
		cols, args, err := t.rowValues(sp, row)
		if err != nil {
			return err
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.name, strings.Join(cols, ", "), placeholders(len(cols)))
		if _, err := t.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return nil
}

func (t *sqliteTable) Upsert(ctx context.Context, rows []Row, conflict ...string) error {
	sp, err := t.spec()
	if err != nil {
		return err
	}
	if err := t.checkCols(sp, conflict); err != nil {
		return err
	}
	for _, row := range rows {
		cols, args, err := t.rowValues(sp, row)
		if err != nil {
			return err
		}
		var sets []string
		for _, c := range cols {
			if !contains(conflict, c) {
				sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
			}
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
			t.name, strings.Join(cols, ", "), placeholders(len(cols)),
			strings.Join(conflict, ", "), strings.Join(sets, ", "))
		if _, err := t.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", t.name, err)
		}
	}
	return nil
}

func (t *sqliteTable) Update(fields Row) Update {
	return &sqliteUpdate{table: t, fields: fields}
}

// rowValues — deterministic column order, JSON columns encoded.
func (t *sqliteTable) rowValues(sp tableSpec, row Row) ([]string, []any, error) {
	var cols []string
	var args []any
	for _, c := range sp.columns {
		v, ok := row[c]
		if !ok {
			continue
		}
		if sp.jsonCols[c] && v != nil {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, nil, fmt.Errorf("encode %s.%s: %w", t.name, c, err)
			}
			v = string(b)
		}
		cols = append(cols, c)
		args = append(args, v)
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("empty row for table %q", t.name)
	}
	for k := range row {
		if err := t.checkCols(sp, []string{k}); err != nil {
			return nil, nil, err
		}
	}
	return cols, args, nil
}

type sqliteQuery struct {
	table  *sqliteTable
	fields []string
	where  []string
	args   []any
	limit  int
	err    error
}

func (q *sqliteQuery) Eq(field string, value any) Query {
	if q.err != nil {
		return q
	}
	sp, err := q.table.spec()
	if err == nil {
		err = q.table.checkCols(sp, []string{field})
	}
	if err != nil {
		q.err = err
		return q
	}
	q.where = append(q.where, field+" = ?")
	q.args = append(q.args, value)
	return q
}

func (q *sqliteQuery) Limit(n int) Query {
	q.limit = n
	return q
}

func (q *sqliteQuery) Execute(ctx context.Context) ([]Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	sp, err := q.table.spec()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(q.fields, ", "), q.table.name)
	if len(q.where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(q.where, " AND "))
	}
	args := q.args
	if q.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.limit)
	}

	rows, err := q.table.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table.name, err)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(q.fields))
		ptrs := make([]any, len(q.fields))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.table.name, err)
		}
		rec := make(Row, len(q.fields))
		for i, f := range q.fields {
			rec[f] = decodeValue(sp, f, vals[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table.name, err)
	}
	return out, nil
}

type sqliteUpdate struct {
	table  *sqliteTable
	fields Row
	where  []string
	args   []any
	err    error
}

func (u *sqliteUpdate) Eq(field string, value any) Update {
	if u.err != nil {
		return u
	}
	sp, err := u.table.spec()
	if err == nil {
		err = u.table.checkCols(sp, []string{field})
	}
	if err != nil {
		u.err = err
		return u
	}
	u.where = append(u.where, field+" = ?")
	u.args = append(u.args, value)
	return u
}

func (u *sqliteUpdate) Execute(ctx context.Context) (int64, error) {
	if u.err != nil {
		return 0, u.err
	}
	sp, err := u.table.spec()
	if err != nil {
		return 0, err
	}
	cols, args, err := u.table.rowValues(sp, u.fields)
	if err != nil {
		return 0, err
	}
	var sets []string
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s", u.table.name, strings.Join(sets, ", "))
	if len(u.where) > 0 {
		stmt += " WHERE " + strings.Join(u.where, " AND ")
	}
	res, err := u.table.db.ExecContext(ctx, stmt, append(args, u.args...)...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", u.table.name, err)
	}
	return res.RowsAffected()
}

func decodeValue(sp tableSpec, field string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if sp.jsonCols[field] {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil
		}
		return m
	}
	return v
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

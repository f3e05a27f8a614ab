// Package store exposes the minimal record-store capability the matching
// engine needs: composable equality filters over named tables, plus
// insert/update/upsert. The engine does not care about the wire protocol
// behind it; the SQLite implementation below is one backend.
package store

import "context"

// Row is one record as a field-name -> value mapping.
type Row = map[string]any

type Store interface {
	Table(name string) Table
	Close() error
}

type Table interface {
	// Select starts a read query. No fields (or "*") selects everything.
	Select(fields ...string) Query
	Insert(ctx context.Context, rows []Row) error
	// Upsert inserts rows, updating in place on a conflict over the given
	// column set.
	Upsert(ctx context.Context, rows []Row, conflict ...string) error
	Update(fields Row) Update
}

type Query interface {
	Eq(field string, value any) Query
	Limit(n int) Query
	// Execute returns an empty, non-nil slice when nothing matches.
	// Failures surface as errors, never panics.
	Execute(ctx context.Context) ([]Row, error)
}

type Update interface {
	Eq(field string, value any) Update
	Execute(ctx context.Context) (int64, error)
}

package service

import (
	"context"
	"fmt"

	"shipmatch-service/internal/store"
)

// fakeStore is an in-memory store.Store that records the equality filters of
// every executed query, so tests can assert which lookups actually fired.
type fakeStore struct {
	tables map[string]*fakeTable
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: map[string]*fakeTable{}}
}

func (s *fakeStore) Table(name string) store.Table {
	t, ok := s.tables[name]
	if !ok {
		t = &fakeTable{}
		s.tables[name] = t
	}
	return t
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) table(name string) *fakeTable {
	s.Table(name)
	return s.tables[name]
}

type fakeTable struct {
	rows     []store.Row
	executed []map[string]any // eq filters per executed select
	failNext error
}

func (t *fakeTable) Select(fields ...string) store.Query {
	return &fakeQuery{t: t, eqs: map[string]any{}}
}

func (t *fakeTable) Insert(_ context.Context, rows []store.Row) error {
	if err := t.failNext; err != nil {
		t.failNext = nil
		return err
	}
	for _, r := range rows {
		cp := store.Row{}
		for k, v := range r {
			cp[k] = v
		}
		if _, ok := cp["id"]; !ok {
			cp["id"] = int64(len(t.rows) + 1)
		}
		t.rows = append(t.rows, cp)
	}
	return nil
}

func (t *fakeTable) Upsert(ctx context.Context, rows []store.Row, conflict ...string) error {
next:
	for _, r := range rows {
		for _, ex := range t.rows {
			same := true
			for _, c := range conflict {
				if fmt.Sprint(ex[c]) != fmt.Sprint(r[c]) {
					same = false
					break
				}
			}
			if same {
				for k, v := range r {
					ex[k] = v
				}
				continue next
			}
		}
		if err := t.Insert(ctx, []store.Row{r}); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTable) Update(fields store.Row) store.Update {
	return &fakeUpdate{t: t, fields: fields, eqs: map[string]any{}}
}

type fakeQuery struct {
	t     *fakeTable
	eqs   map[string]any
	limit int
}

func (q *fakeQuery) Eq(field string, value any) store.Query {
	q.eqs[field] = value
	return q
}

func (q *fakeQuery) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *fakeQuery) Execute(context.Context) ([]store.Row, error) {
	q.t.executed = append(q.t.executed, q.eqs)
	if err := q.t.failNext; err != nil {
		q.t.failNext = nil
		return nil, err
	}
	out := make([]store.Row, 0)
	for _, r := range q.t.rows {
		ok := true
		for k, v := range q.eqs {
			if fmt.Sprint(r[k]) != fmt.Sprint(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
		if q.limit > 0 && len(out) == q.limit {
			break
		}
	}
	return out, nil
}

type fakeUpdate struct {
	t      *fakeTable
	fields store.Row
	eqs    map[string]any
}

func (u *fakeUpdate) Eq(field string, value any) store.Update {
	u.eqs[field] = value
	return u
}

func (u *fakeUpdate) Execute(context.Context) (int64, error) {
	var n int64
	for _, r := range u.t.rows {
		ok := true
		for k, v := range u.eqs {
			if fmt.Sprint(r[k]) != fmt.Sprint(v) {
				ok = false
				break
			}
		}
		if ok {
			for k, v := range u.fields {
				r[k] = v
			}
			n++
		}
	}
	return n, nil
}

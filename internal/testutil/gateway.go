// Package testutil provides an in-memory database gateway for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"campuscafe-reports/internal/pkg/record"
)

// Call is one statement received by the fake.
type Call struct {
	SQL    string
	Params []any
}

type response struct {
	match   string
	records []record.Record
	err     error
}

// FakeGateway answers Execute from canned responses, picking the first
// registered response whose match string occurs in the SQL.
type FakeGateway struct {
	mu        sync.Mutex
	responses []response
	calls     []Call
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// On registers rows for statements containing match.
func (f *FakeGateway) On(match string, records ...record.Record) *FakeGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	if records == nil {
		records = []record.Record{}
	}
	f.responses = append(f.responses, response{match: match, records: records})
	return f
}

// Fail registers an error for statements containing match.
func (f *FakeGateway) Fail(match string, err error) *FakeGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response{match: match, err: err})
	return f
}

func (f *FakeGateway) Execute(ctx context.Context, sql string, params ...any) ([]record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{SQL: sql, Params: params})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range f.responses {
		if strings.Contains(sql, r.match) {
			return r.records, r.err
		}
	}
	return nil, fmt.Errorf("testutil: no response registered for %q", strings.Join(strings.Fields(sql), " "))
}

// Calls returns a copy of every statement received so far.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallMatching returns the first call whose SQL contains match.
func (f *FakeGateway) CallMatching(match string) (Call, bool) {
	for _, c := range f.Calls() {
		if strings.Contains(c.SQL, match) {
			return c, true
		}
	}
	return Call{}, false
}

// Row builds a record from alternating column names and values.
func Row(pairs ...any) record.Record {
	cols := make([]string, 0, len(pairs)/2)
	vals := make([]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		cols = append(cols, pairs[i].(string))
		vals = append(vals, pairs[i+1])
	}
	return record.New(cols, vals)
}

// Count builds the single-row result of a COUNT(*) AS count query.
func Count(n int64) record.Record {
	return Row("count", n)
}

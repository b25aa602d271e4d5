package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRows struct {
	columns []string
	values  [][]any
	pos     int
	err     error
	closed  bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) Scan(dest ...any) error        { return errors.New("not implemented") }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeQuerier struct {
	rows     *fakeRows
	err      error
	sql      string
	args     []any
	deadline time.Time
	hasDL    bool
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args
	q.deadline, q.hasDL = ctx.Deadline()
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestExecute_ReturnsOrderedRecords(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"method", "total_payments"},
		values: [][]any{
			{"Tarjeta", int64(300)},
			{"Efectivo", int64(210)},
		},
	}
	q := &fakeQuerier{rows: rows}
	db := newDB(q, 5*time.Second, zap.NewNop())

	recs, err := db.Execute(context.Background(), "SELECT method, total_payments FROM vw_payment_mix WHERE method ILIKE $1", "%ta%")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"method", "total_payments"}, recs[0].Columns())

	method, err := recs[1].String("method")
	require.NoError(t, err)
	assert.Equal(t, "Efectivo", method)

	assert.Equal(t, []any{"%ta%"}, q.args)
	assert.True(t, q.hasDL, "query must run under a deadline")
	assert.True(t, rows.closed)
}

func TestExecute_EmptyResultIsNonNil(t *testing.T) {
	db := newDB(&fakeQuerier{rows: &fakeRows{columns: []string{"count"}}}, 0, nil)

	recs, err := db.Execute(context.Background(), "SELECT COUNT(*) AS count FROM vw_customer_value")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestExecute_PropagatesErrors(t *testing.T) {
	acquire := errors.New("failed to connect to `host=db`: dial error")
	db := newDB(&fakeQuerier{err: acquire}, time.Second, zap.NewNop())

	_, err := db.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, acquire)

	iter := errors.New("conn closed")
	db = newDB(&fakeQuerier{rows: &fakeRows{columns: []string{"x"}, err: iter}}, time.Second, zap.NewNop())
	_, err = db.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, iter)
}

func TestPing_WithoutPool(t *testing.T) {
	db := newDB(&fakeQuerier{}, time.Second, nil)
	assert.Error(t, db.Ping(context.Background()))
}

// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"
	"time"

	xerrors "campuscafe-reports/internal/pkg/errors"
	"campuscafe-reports/internal/pkg/record"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Gateway executes a parameterized statement and returns its rows as
// records. Values are always bound positionally ($1, $2, ...).
type Gateway interface {
	Execute(ctx context.Context, sql string, params ...any) ([]record.Record, error)
}

// querier is the subset of *pgxpool.Pool the gateway needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type DB struct {
	pool         *pgxpool.Pool
	q            querier
	queryTimeout time.Duration
	logger       *zap.Logger
}

func NewDB(pool *pgxpool.Pool, queryTimeout time.Duration, logger *zap.Logger) *DB {
	db := newDB(pool, queryTimeout, logger)
	db.pool = pool
	return db
}

func newDB(q querier, queryTimeout time.Duration, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{q: q, queryTimeout: queryTimeout, logger: logger}
}

// Ping checks the pool can reach the server.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	return db.pool.Ping(ctx)
}

// Execute runs sql under the configured query timeout, so a starved pool
// or slow view fails instead of blocking the caller.
func (db *DB) Execute(ctx context.Context, sql string, params ...any) ([]record.Record, error) {
	if db.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := db.q.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	records := []record.Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		records = append(records, record.New(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	db.logger.Debug("executed query",
		zap.String("query", xerrors.TruncateQuery(sql)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("rows", len(records)),
	)

	return records, nil
}

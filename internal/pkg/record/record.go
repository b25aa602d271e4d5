// Package record holds the untyped rows returned by the database gateway
// and the typed accessors used to project them into report entities.
package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var ErrColumn = errors.New("column projection failed")

// ColumnError reports a column that is absent, NULL where a value is
// required, or holds a scalar of an incompatible kind.
type ColumnError struct {
	Column string
	Want   string
	Got    any
	Absent bool
}

func (e *ColumnError) Error() string {
	if e.Absent {
		return fmt.Sprintf("column %q: not present in result", e.Column)
	}
	return fmt.Sprintf("column %q: cannot read %T as %s", e.Column, e.Got, e.Want)
}

func (e *ColumnError) Is(target error) bool {
	return target == ErrColumn
}

// Record is an ordered mapping from column name to a dynamically-typed scalar.
type Record struct {
	columns []string
	values  map[string]any
}

// New pairs column names with values positionally. Extra values are dropped.
func New(columns []string, values []any) Record {
	r := Record{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		if i >= len(values) {
			break
		}
		r.columns = append(r.columns, col)
		r.values[col] = values[i]
	}
	return r
}

// FromMap builds a record with the given column order.
func FromMap(columns []string, values map[string]any) Record {
	vals := make([]any, len(columns))
	for i, col := range columns {
		vals[i] = values[col]
	}
	return New(columns, vals)
}

func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Record) Len() int {
	return len(r.columns)
}

// Value returns the raw scalar and whether the column exists.
func (r Record) Value(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

func (r Record) lookup(col, want string) (any, error) {
	v, ok := r.values[col]
	if !ok {
		return nil, &ColumnError{Column: col, Want: want, Absent: true}
	}
	if v == nil {
		return nil, &ColumnError{Column: col, Want: want, Got: v}
	}
	return v, nil
}

func (r Record) isNull(col string) (bool, error) {
	v, ok := r.values[col]
	if !ok {
		return false, &ColumnError{Column: col, Absent: true}
	}
	return v == nil, nil
}

func (r Record) String(col string) (string, error) {
	v, err := r.lookup(col, "text")
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", &ColumnError{Column: col, Want: "text", Got: v}
}

func (r Record) Bool(col string) (bool, error) {
	v, err := r.lookup(col, "boolean")
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case pgtype.Bool:
		if b.Valid {
			return b.Bool, nil
		}
	}
	return false, &ColumnError{Column: col, Want: "boolean", Got: v}
}

func (r Record) Int64(col string) (int64, error) {
	v, err := r.lookup(col, "integer")
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, &ColumnError{Column: col, Want: "integer", Got: v}
	}
	return n, nil
}

// Int64OrZero reads NULL as 0, for aggregates over outer joins.
func (r Record) Int64OrZero(col string) (int64, error) {
	null, err := r.isNull(col)
	if err != nil || null {
		return 0, err
	}
	return r.Int64(col)
}

func (r Record) Decimal(col string) (decimal.Decimal, error) {
	v, err := r.lookup(col, "numeric")
	if err != nil {
		return decimal.Zero, err
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Zero, &ColumnError{Column: col, Want: "numeric", Got: v}
	}
	return d, nil
}

// DecimalOrZero reads NULL as 0, for aggregates over outer joins.
func (r Record) DecimalOrZero(col string) (decimal.Decimal, error) {
	null, err := r.isNull(col)
	if err != nil || null {
		return decimal.Zero, err
	}
	return r.Decimal(col)
}

func (r Record) Time(col string) (time.Time, error) {
	v, err := r.lookup(col, "timestamp")
	if err != nil {
		return time.Time{}, err
	}
	t, ok := toTime(v)
	if !ok {
		return time.Time{}, &ColumnError{Column: col, Want: "timestamp", Got: v}
	}
	return t, nil
}

// NullTime returns nil for a NULL timestamp.
func (r Record) NullTime(col string) (*time.Time, error) {
	null, err := r.isNull(col)
	if err != nil || null {
		return nil, err
	}
	t, err := r.Time(col)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case pgtype.Numeric:
		i, err := n.Int64Value()
		if err != nil || !i.Valid {
			return 0, false
		}
		return i.Int64, true
	case pgtype.Int8:
		return n.Int64, n.Valid
	case decimal.Decimal:
		if !n.Equal(n.Truncate(0)) {
			return 0, false
		}
		return n.IntPart(), true
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case pgtype.Numeric:
		if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
			return decimal.Zero, false
		}
		if n.Int == nil {
			return decimal.Zero, true
		}
		return decimal.NewFromBigInt(n.Int, n.Exp), true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	if i, ok := toInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Zero, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case pgtype.Date:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	case pgtype.Timestamp:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	case pgtype.Timestamptz:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

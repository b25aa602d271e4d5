package xerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_JoinsViolations(t *testing.T) {
	err := NewValidationError("GetTopProducts", []string{"page must be at least 1", "limit must be at most 100"})

	assert.Equal(t, "validation error: page must be at least 1, limit must be at most 100", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrInternal))
}

func TestQueryError_KeepsCauseAndTruncatesQuery(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	sql := `
		SELECT product_id, product_name, category_name, unit_price, total_sold
		FROM vw_top_products
	`
	err := NewQueryError("GetTopProducts", "failed to fetch top products", sql, cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Len(t, err.Query, maxQueryText)
	assert.True(t, strings.HasPrefix(err.Query, "SELECT product_id, product_name"))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "failed to fetch top products", err.Message)
}

func TestAsHelpers_FindWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewQueryError("GetPaymentMix", "failed to fetch payment mix report", "SELECT 1", nil))

	qe, ok := AsQuery(wrapped)
	require.True(t, ok)
	assert.Equal(t, "GetPaymentMix", qe.Op)
	assert.Equal(t, "failed to fetch payment mix report", qe.Error())

	_, ok = AsValidation(wrapped)
	assert.False(t, ok)
}

func TestTruncateQuery_ShortQueryUnchanged(t *testing.T) {
	assert.Equal(t, "SELECT COUNT(*) FROM vw_customer_value", TruncateQuery("SELECT COUNT(*)\n\tFROM vw_customer_value"))
}

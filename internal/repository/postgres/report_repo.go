// internal/repository/postgres/report_repo.go
package postgres

import (
	"context"
	"fmt"

	"campuscafe-reports/internal/domain/report"
	"campuscafe-reports/internal/pkg/record"

	"golang.org/x/sync/errgroup"
)

// QueryFailure identifies the statement that failed so the service can log
// it without the repository logging a second time.
type QueryFailure struct {
	Query string
	Err   error
}

func (e *QueryFailure) Error() string {
	return e.Err.Error()
}

func (e *QueryFailure) Unwrap() error {
	return e.Err
}

// ReportRepository reads the reporting views. It never writes.
type ReportRepository struct {
	db Gateway
}

func NewReportRepository(db Gateway) *ReportRepository {
	return &ReportRepository{db: db}
}

const (
	salesDailyQuery = `
		SELECT sale_date, total_orders, unique_customers, total_revenue, total_items_sold, channel
		FROM vw_sales_daily
		WHERE sale_date >= $1 AND sale_date <= $2
		ORDER BY sale_date DESC
	`

	topProductsColumns = `product_id, product_name, category_name, unit_price, total_sold, total_revenue, order_count`
	topProductsSearch  = `product_name ILIKE $1 OR category_name ILIKE $1`

	inventoryRiskColumns = `product_id, product_name, category_name, current_stock, active, stock_status, total_sold_last_30_days`
	inventoryRiskOrder   = `ORDER BY current_stock ASC, total_sold_last_30_days DESC`

	customerValueQuery = `
		SELECT customer_id, customer_name, email, total_orders, total_spent, avg_order_value, first_order, last_order
		FROM vw_customer_value
		ORDER BY total_spent DESC
		LIMIT $1 OFFSET $2
	`
	customerValueCountQuery = `SELECT COUNT(*) AS count FROM vw_customer_value`

	salesChannelQuery = `
		SELECT channel, total_orders, unique_customers, total_revenue, avg_order_value, total_items
		FROM vw_sales_channel
		ORDER BY total_revenue DESC
	`

	paymentMixQuery = `
		SELECT method, total_payments, total_amount, percentage
		FROM vw_payment_mix
		ORDER BY total_amount DESC
	`
)

// ListSalesDaily returns vw_sales_daily rows with sale_date in [from, to].
func (r *ReportRepository) ListSalesDaily(ctx context.Context, dr report.DateRange) ([]report.DailySales, error) {
	recs, err := r.execute(ctx, salesDailyQuery, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	return projectAll(recs, salesDailyQuery, scanDailySales)
}

// ListTopProducts returns one page of vw_top_products and the number of rows
// matching the same filter. Both statements run concurrently.
func (r *ReportRepository) ListTopProducts(ctx context.Context, p report.Pagination, search string) ([]report.TopProduct, int64, error) {
	var (
		query, countQuery string
		args, countArgs   []any
	)

	if pattern, ok := report.LikePattern(search); ok {
		query = fmt.Sprintf(`
		SELECT %s
		FROM vw_top_products
		WHERE %s
		ORDER BY total_sold DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, topProductsColumns, topProductsSearch)
		countQuery = fmt.Sprintf(`SELECT COUNT(*) AS count FROM vw_top_products WHERE %s`, topProductsSearch)
		args = []any{pattern, p.Limit, p.Offset()}
		countArgs = []any{pattern}
	} else {
		query = fmt.Sprintf(`
		SELECT %s
		FROM vw_top_products
		ORDER BY total_sold DESC NULLS LAST
		LIMIT $1 OFFSET $2
	`, topProductsColumns)
		countQuery = `SELECT COUNT(*) AS count FROM vw_top_products`
		args = []any{p.Limit, p.Offset()}
	}

	return listWithCount(ctx, r, query, args, countQuery, countArgs, scanTopProduct)
}

// ListInventoryRisk returns vw_inventory_risk rows, lowest stock first.
func (r *ReportRepository) ListInventoryRisk(ctx context.Context, category string) ([]report.InventoryRisk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM vw_inventory_risk
		%s
	`, inventoryRiskColumns, inventoryRiskOrder)
	var args []any

	if pattern, ok := report.LikePattern(category); ok {
		query = fmt.Sprintf(`
		SELECT %s
		FROM vw_inventory_risk
		WHERE category_name ILIKE $1
		%s
	`, inventoryRiskColumns, inventoryRiskOrder)
		args = []any{pattern}
	}

	recs, err := r.execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return projectAll(recs, query, scanInventoryRisk)
}

// ListCustomerValue returns one page of vw_customer_value and its total.
func (r *ReportRepository) ListCustomerValue(ctx context.Context, p report.Pagination) ([]report.CustomerValue, int64, error) {
	return listWithCount(ctx, r,
		customerValueQuery, []any{p.Limit, p.Offset()},
		customerValueCountQuery, nil,
		scanCustomerValue,
	)
}

func (r *ReportRepository) ListSalesChannel(ctx context.Context) ([]report.SalesChannel, error) {
	recs, err := r.execute(ctx, salesChannelQuery)
	if err != nil {
		return nil, err
	}
	return projectAll(recs, salesChannelQuery, scanSalesChannel)
}

func (r *ReportRepository) ListPaymentMix(ctx context.Context) ([]report.PaymentMix, error) {
	recs, err := r.execute(ctx, paymentMixQuery)
	if err != nil {
		return nil, err
	}
	return projectAll(recs, paymentMixQuery, scanPaymentMix)
}

func (r *ReportRepository) execute(ctx context.Context, query string, args ...any) ([]record.Record, error) {
	recs, err := r.db.Execute(ctx, query, args...)
	if err != nil {
		return nil, &QueryFailure{Query: query, Err: err}
	}
	return recs, nil
}

// listWithCount issues the page query and the count query concurrently.
// The first failure cancels the other and no partial result is returned.
func listWithCount[T any](
	ctx context.Context,
	r *ReportRepository,
	query string, args []any,
	countQuery string, countArgs []any,
	scan func(record.Record) (T, error),
) ([]T, int64, error) {
	var (
		recs  []record.Record
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = r.execute(gctx, query, args...)
		return err
	})
	g.Go(func() error {
		countRecs, err := r.execute(gctx, countQuery, countArgs...)
		if err != nil {
			return err
		}
		total, err = scanCount(countRecs)
		if err != nil {
			return &QueryFailure{Query: countQuery, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	items, err := projectAll(recs, query, scan)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func projectAll[T any](recs []record.Record, query string, scan func(record.Record) (T, error)) ([]T, error) {
	items := make([]T, 0, len(recs))
	for i, rec := range recs {
		item, err := scan(rec)
		if err != nil {
			return nil, &QueryFailure{Query: query, Err: fmt.Errorf("row %d: %w", i, err)}
		}
		items = append(items, item)
	}
	return items, nil
}

// scanCount reads COUNT(*); an empty result counts as zero.
func scanCount(recs []record.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	return recs[0].Int64OrZero("count")
}

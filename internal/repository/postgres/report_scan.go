package postgres

import (
	"time"

	"campuscafe-reports/internal/domain/report"
	"campuscafe-reports/internal/pkg/record"

	"github.com/shopspring/decimal"
)

// rowReader keeps the first projection error so scanners read linearly.
type rowReader struct {
	rec record.Record
	err error
}

func (r *rowReader) str(col string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.rec.String(col)
	r.err = err
	return v
}

func (r *rowReader) integer(col string) int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.rec.Int64(col)
	r.err = err
	return v
}

func (r *rowReader) integerOrZero(col string) int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.rec.Int64OrZero(col)
	r.err = err
	return v
}

func (r *rowReader) dec(col string) decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	v, err := r.rec.Decimal(col)
	r.err = err
	return v
}

func (r *rowReader) decOrZero(col string) decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	v, err := r.rec.DecimalOrZero(col)
	r.err = err
	return v
}

func (r *rowReader) boolean(col string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.rec.Bool(col)
	r.err = err
	return v
}

func (r *rowReader) timestamp(col string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, err := r.rec.Time(col)
	r.err = err
	return v
}

func (r *rowReader) nullTime(col string) *time.Time {
	if r.err != nil {
		return nil
	}
	v, err := r.rec.NullTime(col)
	r.err = err
	return v
}

func (r *rowReader) stockStatus(col string) report.StockStatus {
	raw := r.str(col)
	if r.err != nil {
		return ""
	}
	st, err := report.ParseStockStatus(raw)
	if err != nil {
		r.err = &record.ColumnError{Column: col, Want: "stock status", Got: raw}
	}
	return st
}

func scanDailySales(rec record.Record) (report.DailySales, error) {
	r := &rowReader{rec: rec}
	s := report.DailySales{
		SaleDate:        r.timestamp("sale_date"),
		Channel:         r.str("channel"),
		TotalOrders:     r.integer("total_orders"),
		UniqueCustomers: r.integer("unique_customers"),
		TotalItemsSold:  r.integer("total_items_sold"),
		TotalRevenue:    r.dec("total_revenue"),
	}
	return s, r.err
}

// vw_top_products aggregates over an outer join; unsold products carry NULLs.
func scanTopProduct(rec record.Record) (report.TopProduct, error) {
	r := &rowReader{rec: rec}
	p := report.TopProduct{
		ProductID:    r.integer("product_id"),
		ProductName:  r.str("product_name"),
		CategoryName: r.str("category_name"),
		UnitPrice:    r.dec("unit_price"),
		TotalSold:    r.integerOrZero("total_sold"),
		TotalRevenue: r.decOrZero("total_revenue"),
		OrderCount:   r.integerOrZero("order_count"),
	}
	return p, r.err
}

func scanInventoryRisk(rec record.Record) (report.InventoryRisk, error) {
	r := &rowReader{rec: rec}
	i := report.InventoryRisk{
		ProductID:           r.integer("product_id"),
		ProductName:         r.str("product_name"),
		CategoryName:        r.str("category_name"),
		CurrentStock:        r.integer("current_stock"),
		Active:              r.boolean("active"),
		StockStatus:         r.stockStatus("stock_status"),
		TotalSoldLast30Days: r.integerOrZero("total_sold_last_30_days"),
	}
	return i, r.err
}

func scanCustomerValue(rec record.Record) (report.CustomerValue, error) {
	r := &rowReader{rec: rec}
	c := report.CustomerValue{
		CustomerID:    r.integer("customer_id"),
		CustomerName:  r.str("customer_name"),
		Email:         r.str("email"),
		TotalOrders:   r.integer("total_orders"),
		TotalSpent:    r.dec("total_spent"),
		AvgOrderValue: r.dec("avg_order_value"),
		FirstOrder:    r.nullTime("first_order"),
		LastOrder:     r.nullTime("last_order"),
	}
	return c, r.err
}

func scanSalesChannel(rec record.Record) (report.SalesChannel, error) {
	r := &rowReader{rec: rec}
	c := report.SalesChannel{
		Channel:         r.str("channel"),
		TotalOrders:     r.integer("total_orders"),
		UniqueCustomers: r.integer("unique_customers"),
		TotalRevenue:    r.dec("total_revenue"),
		AvgOrderValue:   r.dec("avg_order_value"),
		TotalItems:      r.integer("total_items"),
	}
	return c, r.err
}

func scanPaymentMix(rec record.Record) (report.PaymentMix, error) {
	r := &rowReader{rec: rec}
	m := report.PaymentMix{
		Method:        r.str("method"),
		TotalPayments: r.integer("total_payments"),
		TotalAmount:   r.dec("total_amount"),
		Percentage:    r.dec("percentage"),
	}
	return m, r.err
}

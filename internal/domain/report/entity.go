package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DailySales is one row of vw_sales_daily, one per (date, channel).
type DailySales struct {
	SaleDate        time.Time       `json:"sale_date"`
	Channel         string          `json:"channel"`
	TotalOrders     int64           `json:"total_orders"`
	UniqueCustomers int64           `json:"unique_customers"`
	TotalItemsSold  int64           `json:"total_items_sold"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// TopProduct is one row of vw_top_products.
type TopProduct struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrderCount   int64           `json:"order_count"`
}

// InventoryRisk is one row of vw_inventory_risk.
type InventoryRisk struct {
	ProductID           int64       `json:"product_id"`
	ProductName         string      `json:"product_name"`
	CategoryName        string      `json:"category_name"`
	CurrentStock        int64       `json:"current_stock"`
	Active              bool        `json:"active"`
	StockStatus         StockStatus `json:"stock_status"`
	TotalSoldLast30Days int64       `json:"total_sold_last_30_days"`
}

// CustomerValue is one row of vw_customer_value.
type CustomerValue struct {
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Email         string          `json:"email"`
	TotalOrders   int64           `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	FirstOrder    *time.Time      `json:"first_order"`
	LastOrder     *time.Time      `json:"last_order"`
}

// SalesChannel is one row of vw_sales_channel.
type SalesChannel struct {
	Channel         string          `json:"channel"`
	TotalOrders     int64           `json:"total_orders"`
	UniqueCustomers int64           `json:"unique_customers"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	TotalItems      int64           `json:"total_items"`
}

// PaymentMix is one row of vw_payment_mix.
type PaymentMix struct {
	Method        string          `json:"method"`
	TotalPayments int64           `json:"total_payments"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// StockStatus is the inventory risk level computed by vw_inventory_risk.
type StockStatus string

const (
	StockNoStock  StockStatus = "NoStock"
	StockCritical StockStatus = "Critical"
	StockLow      StockStatus = "Low"
	StockNormal   StockStatus = "Normal"
)

// labels stored by the view, keyed to the canonical status
var stockStatusLabels = map[string]StockStatus{
	"Sin Stock": StockNoStock,
	"Crítico":   StockCritical,
	"Critico":   StockCritical,
	"Bajo":      StockLow,
	"Normal":    StockNormal,
	"NoStock":   StockNoStock,
	"Critical":  StockCritical,
	"Low":       StockLow,
}

// ParseStockStatus accepts both the view's labels and the canonical names.
func ParseStockStatus(s string) (StockStatus, error) {
	if st, ok := stockStatusLabels[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown stock status %q", s)
}

// IsRisk reports whether the product needs restocking attention.
func (s StockStatus) IsRisk() bool {
	return s == StockNoStock || s == StockCritical
}

func (s *StockStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStockStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// CountAtRisk counts products whose status is NoStock or Critical.
func CountAtRisk(items []InventoryRisk) int {
	n := 0
	for _, it := range items {
		if it.StockStatus.IsRisk() {
			n++
		}
	}
	return n
}

// InventorySummary is the inventory report with its at-risk count.
type InventorySummary struct {
	Items  []InventoryRisk `json:"items"`
	AtRisk int             `json:"at_risk"`
	Total  int             `json:"total"`
}

func NewInventorySummary(items []InventoryRisk) InventorySummary {
	if items == nil {
		items = []InventoryRisk{}
	}
	return InventorySummary{
		Items:  items,
		AtRisk: CountAtRisk(items),
		Total:  len(items),
	}
}

// PaginatedResult is the envelope returned by paginated reports.
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResult computes TotalPages as ceil(total/limit).
func NewPaginatedResult[T any](data []T, total int64, p Pagination) PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int(total / int64(p.Limit))
		if total%int64(p.Limit) > 0 {
			totalPages++
		}
	}
	return PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

// DashboardSummary holds the headline figures for the landing page.
type DashboardSummary struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalOrders    int64           `json:"total_orders"`
	TopProductName string          `json:"top_product_name"`
	TopProducts    []TopProduct    `json:"top_products"`
	LowStockCount  int             `json:"low_stock_count"`
	TotalCustomers int64           `json:"total_customers"`
	Channels       []SalesChannel  `json:"channels"`
}

// PaymentSummary is the payment mix with its totals.
type PaymentSummary struct {
	Methods     []PaymentMix    `json:"methods"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	MethodsUsed int             `json:"methods_used"`
}

// NewPaymentSummary sums the collected amount across methods.
func NewPaymentSummary(methods []PaymentMix) PaymentSummary {
	if methods == nil {
		methods = []PaymentMix{}
	}
	total := decimal.Zero
	for _, m := range methods {
		total = total.Add(m.TotalAmount)
	}
	return PaymentSummary{
		Methods:     methods,
		TotalAmount: total,
		MethodsUsed: len(methods),
	}
}

// internal/service/report/report.go
package report

import (
	"context"
	"errors"
	"time"

	"campuscafe-reports/internal/domain/report"
	xerrors "campuscafe-reports/internal/pkg/errors"
	"campuscafe-reports/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repository is the read side of the reporting views.
type Repository interface {
	ListSalesDaily(ctx context.Context, dr report.DateRange) ([]report.DailySales, error)
	ListTopProducts(ctx context.Context, p report.Pagination, search string) ([]report.TopProduct, int64, error)
	ListInventoryRisk(ctx context.Context, category string) ([]report.InventoryRisk, error)
	ListCustomerValue(ctx context.Context, p report.Pagination) ([]report.CustomerValue, int64, error)
	ListSalesChannel(ctx context.Context) ([]report.SalesChannel, error)
	ListPaymentMix(ctx context.Context) ([]report.PaymentMix, error)
}

const (
	opSalesDaily       = "GetSalesDaily"
	opTopProducts      = "GetTopProducts"
	opInventoryRisk    = "GetInventoryRisk"
	opCustomerValue    = "GetCustomerValue"
	opSalesChannel     = "GetSalesChannel"
	opPaymentMix       = "GetPaymentMix"
	opDashboardSummary = "GetDashboardSummary"
)

// user-presentable messages per operation
var failureMessages = map[string]string{
	opSalesDaily:       "failed to fetch daily sales report",
	opTopProducts:      "failed to fetch top products",
	opInventoryRisk:    "failed to fetch inventory risk report",
	opCustomerValue:    "failed to fetch customer value report",
	opSalesChannel:     "failed to fetch sales by channel report",
	opPaymentMix:       "failed to fetch payment mix report",
	opDashboardSummary: "failed to fetch dashboard summary",
}

// DashboardWindow is the trailing period summarized on the dashboard.
const DashboardWindow = 30 * 24 * time.Hour

type ReportService struct {
	repo   Repository
	logger *zap.Logger
}

func NewReportService(repo Repository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:   repo,
		logger: logger,
	}
}

// GetSalesDaily returns daily sales with sale_date in [from, to], newest first.
func (s *ReportService) GetSalesDaily(ctx context.Context, from, to time.Time) ([]report.DailySales, error) {
	dr, err := report.NewDateRange(from, to)
	if err != nil {
		return nil, s.validationFailed(opSalesDaily, err, zap.Time("from", from), zap.Time("to", to))
	}

	rows, err := s.repo.ListSalesDaily(ctx, dr)
	if err != nil {
		return nil, s.queryFailed(opSalesDaily, err, zap.Time("from", from), zap.Time("to", to))
	}
	return rows, nil
}

// GetTopProducts returns one page of best sellers, optionally filtered by a
// case-insensitive substring of the product or category name.
func (s *ReportService) GetTopProducts(ctx context.Context, page, limit int, search string) (*report.PaginatedResult[report.TopProduct], error) {
	p, err := report.NewPagination(page, limit)
	if err != nil {
		return nil, s.validationFailed(opTopProducts, err, zap.Int("page", page), zap.Int("limit", limit))
	}

	items, total, err := s.repo.ListTopProducts(ctx, p, search)
	if err != nil {
		return nil, s.queryFailed(opTopProducts, err, zap.Int("page", page), zap.Int("limit", limit), zap.String("search", search))
	}

	res := report.NewPaginatedResult(items, total, p)
	return &res, nil
}

// GetInventoryRisk returns stock levels, lowest stock and fastest movers first.
func (s *ReportService) GetInventoryRisk(ctx context.Context, category string) ([]report.InventoryRisk, error) {
	rows, err := s.repo.ListInventoryRisk(ctx, category)
	if err != nil {
		return nil, s.queryFailed(opInventoryRisk, err, zap.String("category", category))
	}
	return rows, nil
}

// GetCustomerValue returns one page of customers ranked by total spent.
func (s *ReportService) GetCustomerValue(ctx context.Context, page, limit int) (*report.PaginatedResult[report.CustomerValue], error) {
	p, err := report.NewPagination(page, limit)
	if err != nil {
		return nil, s.validationFailed(opCustomerValue, err, zap.Int("page", page), zap.Int("limit", limit))
	}

	items, total, err := s.repo.ListCustomerValue(ctx, p)
	if err != nil {
		return nil, s.queryFailed(opCustomerValue, err, zap.Int("page", page), zap.Int("limit", limit))
	}

	res := report.NewPaginatedResult(items, total, p)
	return &res, nil
}

// GetInventorySummary returns stock levels together with how many are at risk.
func (s *ReportService) GetInventorySummary(ctx context.Context, category string) (*report.InventorySummary, error) {
	rows, err := s.GetInventoryRisk(ctx, category)
	if err != nil {
		return nil, err
	}
	summary := report.NewInventorySummary(rows)
	return &summary, nil
}

func (s *ReportService) GetSalesChannel(ctx context.Context) ([]report.SalesChannel, error) {
	rows, err := s.repo.ListSalesChannel(ctx)
	if err != nil {
		return nil, s.queryFailed(opSalesChannel, err)
	}
	return rows, nil
}

func (s *ReportService) GetPaymentMix(ctx context.Context) ([]report.PaymentMix, error) {
	rows, err := s.repo.ListPaymentMix(ctx)
	if err != nil {
		return nil, s.queryFailed(opPaymentMix, err)
	}
	return rows, nil
}

// GetPaymentSummary returns the payment mix with the total collected.
func (s *ReportService) GetPaymentSummary(ctx context.Context) (*report.PaymentSummary, error) {
	rows, err := s.GetPaymentMix(ctx)
	if err != nil {
		return nil, err
	}
	summary := report.NewPaymentSummary(rows)
	return &summary, nil
}

// GetDashboardSummary loads the dashboard reports concurrently for the
// DashboardWindow ending at now. Any failure fails the whole summary.
func (s *ReportService) GetDashboardSummary(ctx context.Context, now time.Time) (*report.DashboardSummary, error) {
	from := now.Add(-DashboardWindow)

	var (
		sales     []report.DailySales
		top       *report.PaginatedResult[report.TopProduct]
		inventory []report.InventoryRisk
		customers *report.PaginatedResult[report.CustomerValue]
		channels  []report.SalesChannel
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.GetSalesDaily(gctx, from, now)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.GetTopProducts(gctx, 1, 5, "")
		return err
	})
	g.Go(func() (err error) {
		inventory, err = s.GetInventoryRisk(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.GetCustomerValue(gctx, 1, report.DefaultLimit)
		return err
	})
	g.Go(func() (err error) {
		channels, err = s.GetSalesChannel(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		// the failing report already logged the cause
		s.logger.Debug("dashboard summary aborted",
			zap.String("operation", opDashboardSummary),
			zap.Error(err),
		)
		return nil, err
	}

	summary := &report.DashboardSummary{
		From:           from,
		To:             now,
		TopProducts:    top.Data,
		LowStockCount:  report.CountAtRisk(inventory),
		TotalCustomers: customers.Total,
		Channels:       channels,
	}
	if summary.Channels == nil {
		summary.Channels = []report.SalesChannel{}
	}
	for _, day := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(day.TotalRevenue)
		summary.TotalOrders += day.TotalOrders
	}
	if len(top.Data) > 0 {
		summary.TopProductName = top.Data[0].ProductName
	}

	return summary, nil
}

func (s *ReportService) validationFailed(op string, err error, fields ...zap.Field) error {
	ve, ok := xerrors.AsValidation(err)
	if !ok {
		ve = xerrors.NewValidationError(op, []string{err.Error()})
	}
	ve.Op = op

	s.logger.Warn("report validation failed",
		append(fields,
			zap.String("operation", op),
			zap.Strings("violations", ve.Violations),
		)...,
	)
	return ve
}

func (s *ReportService) queryFailed(op string, err error, fields ...zap.Field) error {
	query := ""
	var qf *postgres.QueryFailure
	if errors.As(err, &qf) {
		query = qf.Query
	}
	qe := xerrors.NewQueryError(op, failureMessages[op], query, err)

	s.logger.Error("report query failed",
		append(fields,
			zap.String("operation", op),
			zap.String("query", qe.Query),
			zap.Error(err),
		)...,
	)
	return qe
}

// internal/handlers/report/report_handler.go
package report

import (
	"net/http"
	"strings"
	"time"

	"campuscafe-reports/internal/domain/report"
	xerrors "campuscafe-reports/internal/pkg/errors"
	"campuscafe-reports/internal/pkg/response"
	service "campuscafe-reports/internal/service/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
	now           func() time.Time
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
		now:           time.Now,
	}
}

// rejectParams logs a query string that could not be parsed and answers 400.
// Range and ordering checks happen in the service, which logs its own.
func (h *ReportHandler) rejectParams(c *gin.Context, message string, err error) {
	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Error(err),
	}
	if ve, ok := xerrors.AsValidation(err); ok {
		fields = append(fields, zap.Strings("violations", ve.Violations))
	}
	h.logger.Warn("report request rejected", fields...)
	response.Error(c, http.StatusBadRequest, message, err)
}

// ========== Dashboard Sales Endpoint ==========

// SalesData serves the dashboard chart: the raw daily sales array on
// success, the error envelope otherwise.
func (h *ReportHandler) SalesData(c *gin.Context) {
	var q report.SalesRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	if strings.TrimSpace(q.From) == "" || strings.TrimSpace(q.To) == "" {
		h.rejectParams(c, "from and to query parameters are required",
			xerrors.NewValidationError("", []string{"from and to query parameters are required"}))
		return
	}

	from, to, err := report.ParseDateBounds(q.From, q.To)
	if err != nil {
		h.rejectParams(c, "invalid dates", err)
		return
	}

	// only missing or unparseable dates are a 400 here; anything the service
	// rejects, an inverted range included, is the generic 500
	rows, err := h.reportService.GetSalesDaily(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to fetch sales data", nil)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ========== Reports API ==========

// GetSalesDaily returns daily sales for ?from=&to=
func (h *ReportHandler) GetSalesDaily(c *gin.Context) {
	var q report.SalesRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	from, to, err := report.ParseDateBounds(q.From, q.To)
	if err != nil {
		h.rejectParams(c, "invalid request parameters", err)
		return
	}

	rows, err := h.reportService.GetSalesDaily(c.Request.Context(), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "daily sales retrieved", rows)
}

// GetTopProducts returns a page of best sellers for ?page=&limit=&q=
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	var f report.ProductListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	page, limit, err := report.ParsePageParams(f.Page, f.Limit)
	if err != nil {
		h.rejectParams(c, "invalid request parameters", err)
		return
	}

	result, err := h.reportService.GetTopProducts(c.Request.Context(), page, limit, f.Query)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "top products retrieved", result)
}

// GetInventoryRisk returns stock levels with the at-risk count, optionally
// for ?category=
func (h *ReportHandler) GetInventoryRisk(c *gin.Context) {
	summary, err := h.reportService.GetInventorySummary(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "inventory risk retrieved", summary)
}

// GetCustomerValue returns a page of customers for ?page=&limit=
func (h *ReportHandler) GetCustomerValue(c *gin.Context) {
	var f report.CustomerListFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	page, limit, err := report.ParsePageParams(f.Page, f.Limit)
	if err != nil {
		h.rejectParams(c, "invalid request parameters", err)
		return
	}

	result, err := h.reportService.GetCustomerValue(c.Request.Context(), page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "customer value retrieved", result)
}

func (h *ReportHandler) GetSalesChannel(c *gin.Context) {
	rows, err := h.reportService.GetSalesChannel(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "sales by channel retrieved", rows)
}

func (h *ReportHandler) GetPaymentSummary(c *gin.Context) {
	summary, err := h.reportService.GetPaymentSummary(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "payment mix retrieved", summary)
}

func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary(c.Request.Context(), h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "dashboard summary retrieved", summary)
}

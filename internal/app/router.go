// internal/app/router.go
package app

import (
	"context"
	"net/http"
	"time"

	reportHandler "campuscafe-reports/internal/handlers/report"
	"campuscafe-reports/internal/middleware"
	"campuscafe-reports/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportsReadRole is the token role that grants access to every report.
const ReportsReadRole = "reports:read"

type Handlers struct {
	ReportHandler  *reportHandler.ReportHandler
	AuthMiddleware *middleware.AuthMiddleware // nil disables auth
	RateLimiter    middleware.Limiter         // nil disables rate limiting
	Ping           func(ctx context.Context) error
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// ==================== Health Check ====================
	r.GET("/api/v1/health", func(c *gin.Context) {
		if h.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := h.Ping(ctx); err != nil {
				logger.Error("health check failed", zap.Error(err))
				response.Error(c, http.StatusServiceUnavailable, "database unavailable", nil)
				return
			}
		}
		response.Success(c, http.StatusOK, "ok", gin.H{"status": "ok", "version": "1.0.0"})
	})

	api := r.Group("/api")
	if h.RateLimiter != nil {
		api.Use(middleware.RateLimit(h.RateLimiter, logger))
	}
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole(ReportsReadRole))
	}

	// ==================== Dashboard Chart ====================
	api.GET("/reports/sales", h.ReportHandler.SalesData)

	// ==================== Reports ====================
	reports := api.Group("/v1/reports")
	{
		reports.GET("/sales", h.ReportHandler.GetSalesDaily)
		reports.GET("/products", h.ReportHandler.GetTopProducts)
		reports.GET("/inventory", h.ReportHandler.GetInventoryRisk)
		reports.GET("/customers", h.ReportHandler.GetCustomerValue)
		reports.GET("/channels", h.ReportHandler.GetSalesChannel)
		reports.GET("/payments", h.ReportHandler.GetPaymentSummary)
		reports.GET("/dashboard", h.ReportHandler.GetDashboardSummary)
	}
}

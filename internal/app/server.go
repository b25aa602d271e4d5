// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"campuscafe-reports/internal/config"
	"campuscafe-reports/internal/db"
	reportHandler "campuscafe-reports/internal/handlers/report"
	"campuscafe-reports/internal/middleware"
	"campuscafe-reports/internal/pkg/jwt"
	"campuscafe-reports/internal/pkg/ratelimit"
	"campuscafe-reports/internal/repository/postgres"
	reportUsecase "campuscafe-reports/internal/service/report"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	mu    sync.Mutex
	http  *http.Server
	pool  *pgxpool.Pool
	redis *redis.Client
}

func NewServer(cfg config.AppConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Server{cfg: cfg, engine: gin.New(), logger: logger}, nil
}

func (s *Server) Logger() *zap.Logger {
	return s.logger
}

// Start connects the backing stores, wires the report stack and serves
// HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()
	s.logger.Info("connected to PostgreSQL",
		zap.Int32("max_conns", s.cfg.Database.MaxConns),
		zap.Duration("query_timeout", s.cfg.Database.QueryTimeout),
	)

	handlers := &Handlers{}

	// ----- Redis (optional) -----
	if s.cfg.RateLimitEnabled() {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addresses: []string{s.cfg.RedisAddr},
			Password:  s.cfg.RedisPass,
			PoolSize:  10,
		})
		if err != nil {
			// Requests are served unthrottled rather than refused
			s.logger.Warn("rate limiting disabled: redis unavailable", zap.Error(err))
		} else {
			s.mu.Lock()
			s.redis = redisClient
			s.mu.Unlock()
			handlers.RateLimiter = ratelimit.NewRateLimiter(redisClient, s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window)
			s.logger.Info("rate limiting enabled",
				zap.Int64("requests", s.cfg.RateLimit.Requests),
				zap.Duration("window", s.cfg.RateLimit.Window),
			)
		}
	}

	// ----- JWT (optional) -----
	if s.cfg.AuthEnabled() {
		verifier, err := jwt.LoadVerifier(s.cfg.JWT)
		if err != nil {
			return fmt.Errorf("failed to load JWT verifier: %w", err)
		}
		handlers.AuthMiddleware = middleware.NewAuthMiddleware(verifier, s.logger)
		s.logger.Info("bearer authentication enabled", zap.String("issuer", s.cfg.JWT.Issuer))
	}

	// ----- Repositories -----
	gateway := postgres.NewDB(pool, s.cfg.Database.QueryTimeout, s.logger)
	handlers.Ping = gateway.Ping
	reportRepo := postgres.NewReportRepository(gateway)

	// ----- Services (Usecases) -----
	reportService := reportUsecase.NewReportService(reportRepo, s.logger)

	// ----- Handlers -----
	handlers.ReportHandler = reportHandler.NewReportHandler(reportService, s.logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestLogger(s.logger),
		middleware.RecoveryMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, s.logger, handlers)

	// ----- Start HTTP -----
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the pool and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	_ = s.logger.Sync()
	return errors.Join(errs...)
}

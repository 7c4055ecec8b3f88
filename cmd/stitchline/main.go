package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stitchline-erp/stitchline-erp/internal/app"
	"github.com/stitchline-erp/stitchline-erp/internal/audit"
	"github.com/stitchline-erp/stitchline-erp/internal/expenses"
	"github.com/stitchline-erp/stitchline-erp/internal/finishedgoods"
	"github.com/stitchline-erp/stitchline-erp/internal/masterdata"
	"github.com/stitchline-erp/stitchline-erp/internal/materials"
	"github.com/stitchline-erp/stitchline-erp/internal/observability"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/cache"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
	"github.com/stitchline-erp/stitchline-erp/internal/procurement"
	"github.com/stitchline-erp/stitchline-erp/internal/production"
	"github.com/stitchline-erp/stitchline-erp/internal/rbac"
	"github.com/stitchline-erp/stitchline-erp/internal/reports"
	"github.com/stitchline-erp/stitchline-erp/internal/sales"
	"github.com/stitchline-erp/stitchline-erp/internal/shared"
	"github.com/stitchline-erp/stitchline-erp/internal/workforce"
	"github.com/stitchline-erp/stitchline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	rbacMiddleware := rbac.Middleware{Checker: rbac.NewChecker(), Logger: logger}
	metrics := observability.NewMetrics()

	materialsRepo := materials.NewRepository(pool)
	materialsService := materials.NewService(materialsRepo, auditLogger)
	materialsHandler := materials.NewHandler(logger, materialsService, rbacMiddleware)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, idempotencyStore, auditLogger)
	procurementHandler := procurement.NewHandler(logger, procurementService, rbacMiddleware)

	productionRepo := production.NewRepository(pool)
	productionService := production.NewService(productionRepo, auditLogger)
	productionHandler := production.NewHandler(logger, productionService, rbacMiddleware)

	finishedGoodsRepo := finishedgoods.NewRepository(pool)
	finishedGoodsService := finishedgoods.NewService(finishedGoodsRepo, auditLogger)
	finishedGoodsHandler := finishedgoods.NewHandler(logger, finishedGoodsService, rbacMiddleware)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, auditLogger)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient)
	reportsHandler := reports.NewHandler(logger, reportsService)

	masterDataRepo := masterdata.NewRepository(pool)
	masterDataService := masterdata.NewService(masterDataRepo)
	masterDataHandler := masterdata.NewHandler(logger, masterDataService, rbacMiddleware)

	workforceRepo := workforce.NewRepository(pool)
	workforceService := workforce.NewService(workforceRepo)
	workforceHandler := workforce.NewHandler(logger, workforceService, rbacMiddleware)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo)
	expensesHandler := expenses.NewHandler(logger, expensesService, rbacMiddleware)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		MaterialsHandler:     materialsHandler,
		ProcurementHandler:   procurementHandler,
		ProductionHandler:    productionHandler,
		FinishedGoodsHandler: finishedGoodsHandler,
		SalesHandler:         salesHandler,
		ReportsHandler:       reportsHandler,
		MasterDataHandler:    masterDataHandler,
		WorkforceHandler:     workforceHandler,
		ExpensesHandler:      expensesHandler,
		AuditHandler:         auditHandler,
		JobsHandler:          jobsHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/infrastructure/persistence"
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/erp/inventory/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting inventory service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	recordRepo := persistence.NewGormInventoryRecordRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	adjustmentRepo := persistence.NewGormAdjustmentRepository(db.DB)

	// Transaction scope and reference generator
	scope := persistence.NewGormTransactionScope(db.DB)
	refGen := persistence.NewGormReferenceGenerator(db.DB)

	// Application service
	inventoryService := inventoryapp.NewInventoryService(
		scope,
		recordRepo,
		movementRepo,
		batchRepo,
		adjustmentRepo,
		refGen,
		inventoryapp.Config{
			ApprovalThreshold: cfg.Inventory.ApprovalThresholdDecimal(),
		},
		log,
	)

	// HTTP handlers
	handler.SetupValidator()
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	batchHandler := handler.NewBatchHandler(inventoryService)
	adjustmentHandler := handler.NewAdjustmentHandler(inventoryService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Health check endpoint outside API versioning, for load balancers
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.NewInventoryRoutes(inventoryHandler, batchHandler, adjustmentHandler))
	r.Register(router.NewSystemRoutes(systemHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Periodic sweep of past-expiry batches
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go expirySweeper(sweepCtx, inventoryService, cfg.Inventory.BatchExpiryCheckInterval, log)

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// expirySweeper periodically marks past-expiry batches as expired
func expirySweeper(ctx context.Context, svc *inventoryapp.InventoryService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := svc.ExpireBatches(ctx, time.Now())
			if err != nil {
				log.Error("Batch expiry sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				log.Info("Batch expiry sweep completed", zap.Int("expired", expired))
			}
		}
	}
}

// healthHandler returns a handler for the load balancer health check
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

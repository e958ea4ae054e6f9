package router

import (
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// InventoryRoutes registers all inventory, batch and adjustment endpoints
type InventoryRoutes struct {
	inventoryHandler  *handler.InventoryHandler
	batchHandler      *handler.BatchHandler
	adjustmentHandler *handler.AdjustmentHandler
}

// NewInventoryRoutes creates a new InventoryRoutes registrar
func NewInventoryRoutes(
	inventoryHandler *handler.InventoryHandler,
	batchHandler *handler.BatchHandler,
	adjustmentHandler *handler.AdjustmentHandler,
) *InventoryRoutes {
	return &InventoryRoutes{
		inventoryHandler:  inventoryHandler,
		batchHandler:      batchHandler,
		adjustmentHandler: adjustmentHandler,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *InventoryRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")

	records := inv.Group("/records")
	{
		records.GET("", r.inventoryHandler.ListRecords)
		records.GET("/lookup", r.inventoryHandler.GetStockLevel)
	}

	products := inv.Group("/products")
	{
		products.GET("/:product_id/summary", r.inventoryHandler.GetProductSummary)
		products.GET("/:product_id/available", r.inventoryHandler.GetAvailableStock)
	}

	stock := inv.Group("/stock")
	{
		stock.POST("/add", r.inventoryHandler.AddStock)
		stock.POST("/deduct", r.inventoryHandler.DeductStock)
		stock.POST("/transfer", r.inventoryHandler.TransferStock)
		stock.POST("/reserve", r.inventoryHandler.ReserveStock)
		stock.POST("/release", r.inventoryHandler.ReleaseReservation)
	}

	movements := inv.Group("/movements")
	{
		movements.GET("", r.inventoryHandler.ListMovements)
		movements.GET("/:reference", r.inventoryHandler.GetMovementByReference)
	}

	inv.GET("/consistency", r.inventoryHandler.CheckConsistency)

	batches := inv.Group("/batches")
	{
		batches.GET("", r.batchHandler.List)
		batches.POST("", r.batchHandler.Create)
		batches.GET("/expiring", r.batchHandler.ListExpiring)
		batches.POST("/expire", r.batchHandler.Expire)
		batches.GET("/:id", r.batchHandler.GetByID)
	}

	adjustments := inv.Group("/adjustments")
	{
		adjustments.GET("", r.adjustmentHandler.List)
		adjustments.POST("", r.adjustmentHandler.Create)
		adjustments.GET("/pending", r.adjustmentHandler.ListPending)
		adjustments.GET("/:id", r.adjustmentHandler.GetByID)
		adjustments.POST("/:id/approve", r.adjustmentHandler.Approve)
		adjustments.POST("/:id/reject", r.adjustmentHandler.Reject)
	}
}

// SystemRoutes registers system endpoints
type SystemRoutes struct {
	systemHandler *handler.SystemHandler
}

// NewSystemRoutes creates a new SystemRoutes registrar
func NewSystemRoutes(systemHandler *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{
		systemHandler: systemHandler,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", r.systemHandler.GetSystemInfo)
		system.GET("/health", r.systemHandler.Health)
	}
}

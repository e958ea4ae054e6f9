package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
)

// InventoryHandler handles stock level and stock movement API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// GetStockLevel godoc
// @ID           getStockLevel
// @Summary      Get stock level
// @Description  Retrieve the inventory record for a product-warehouse pair. Pairs never touched read as zero with exists=false.
// @Tags         inventory
// @Produce      json
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        warehouse_id query string true "Warehouse ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/records/lookup [get]
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	productID, warehouseID, ok := h.parsePair(c)
	if !ok {
		return
	}

	record, err := h.inventoryService.GetStockLevel(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ListRecords godoc
// @ID           listInventoryRecords
// @Summary      List inventory records
// @Description  Retrieve a paginated list of inventory records with optional filtering
// @Tags         inventory
// @Produce      json
// @Param        warehouse_id query string false "Filter by warehouse ID" format(uuid)
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        has_stock query boolean false "Filter by stock availability"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/records [get]
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	filter := defaultRecordFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	records, total, err := h.inventoryService.ListRecords(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// GetProductSummary godoc
// @ID           getProductStockSummary
// @Summary      Get product stock summary
// @Description  Retrieve aggregate on-hand and available quantities for a product across all warehouses
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/products/{product_id}/summary [get]
func (h *InventoryHandler) GetProductSummary(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	summary, err := h.inventoryService.GetProductStockSummary(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetAvailableStock godoc
// @ID           getAvailableStock
// @Summary      Get available stock
// @Description  Retrieve available (on-hand minus reserved) quantity for a product, optionally scoped to one warehouse
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        warehouse_id query string false "Warehouse ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/products/{product_id}/available [get]
func (h *InventoryHandler) GetAvailableStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var warehouseID *uuid.UUID
	if s := c.Query("warehouse_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		warehouseID = &id
	}

	available, err := h.inventoryService.GetAvailableStock(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"product_id": productID,
		"available":  available,
	})
}

// AddStock godoc
// @ID           addStock
// @Summary      Add stock
// @Description  Increase on-hand quantity for a product in a warehouse (purchase receiving, returns)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AddStockRequest true "Stock addition request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/stock/add [post]
func (h *InventoryHandler) AddStock(c *gin.Context) {
	var req inventoryapp.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.inventoryService.AddStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// DeductStock godoc
// @ID           deductStock
// @Summary      Deduct stock
// @Description  Decrease on-hand quantity for a product in a warehouse (sales, production consumption)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.DeductStockRequest true "Stock deduction request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/stock/deduct [post]
func (h *InventoryHandler) DeductStock(c *gin.Context) {
	var req inventoryapp.DeductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.inventoryService.DeductStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// TransferStock godoc
// @ID           transferStock
// @Summary      Transfer stock
// @Description  Move stock between two warehouses atomically, producing two linked ledger entries
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.TransferStockRequest true "Stock transfer request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/stock/transfer [post]
func (h *InventoryHandler) TransferStock(c *gin.Context) {
	var req inventoryapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.inventoryService.TransferStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReserveStock godoc
// @ID           reserveStock
// @Summary      Reserve stock
// @Description  Earmark available stock for a pending order without moving it
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReserveStockRequest true "Stock reservation request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/stock/reserve [post]
func (h *InventoryHandler) ReserveStock(c *gin.Context) {
	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	record, err := h.inventoryService.ReserveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ReleaseReservation godoc
// @ID           releaseReservation
// @Summary      Release reservation
// @Description  Return reserved stock to available (order cancelled or fulfilled elsewhere)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReleaseReservationRequest true "Reservation release request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/stock/release [post]
func (h *InventoryHandler) ReleaseReservation(c *gin.Context) {
	var req inventoryapp.ReleaseReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	record, err := h.inventoryService.ReleaseReservation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Description  Retrieve a paginated slice of the stock movement ledger with optional filtering
// @Tags         inventory
// @Produce      json
// @Param        warehouse_id query string false "Filter by warehouse ID" format(uuid)
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        movement_type query string false "Filter by movement type" Enums(STOCK_IN, STOCK_OUT, TRANSFER_IN, TRANSFER_OUT, ADJUSTMENT_IN, ADJUSTMENT_OUT)
// @Param        document_kind query string false "Filter by causing document kind"
// @Param        document_id query string false "Filter by causing document ID"
// @Param        start_date query string false "Filter by start date" format(date-time)
// @Param        end_date query string false "Filter by end date" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter := defaultMovementFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// GetMovementByReference godoc
// @ID           getMovementByReference
// @Summary      Get movement by reference number
// @Description  Retrieve a single ledger entry by its unique reference number
// @Tags         inventory
// @Produce      json
// @Param        reference path string true "Reference number"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/movements/{reference} [get]
func (h *InventoryHandler) GetMovementByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		h.BadRequest(c, "Reference number is required")
		return
	}

	movement, err := h.inventoryService.GetMovementByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// CheckConsistency godoc
// @ID           checkLedgerConsistency
// @Summary      Check ledger consistency
// @Description  Compute the difference between the on-hand quantity and the signed sum of the ledger for a product-warehouse pair. Zero means consistent.
// @Tags         inventory
// @Produce      json
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        warehouse_id query string true "Warehouse ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/consistency [get]
func (h *InventoryHandler) CheckConsistency(c *gin.Context) {
	productID, warehouseID, ok := h.parsePair(c)
	if !ok {
		return
	}

	drift, err := h.inventoryService.CheckLedgerConsistency(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"drift":        drift,
		"consistent":   drift.IsZero(),
	})
}

// parsePair reads required product_id and warehouse_id query parameters
func (h *InventoryHandler) parsePair(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	productIDStr := c.Query("product_id")
	warehouseIDStr := c.Query("warehouse_id")
	if productIDStr == "" || warehouseIDStr == "" {
		h.BadRequest(c, "product_id and warehouse_id are required")
		return uuid.Nil, uuid.Nil, false
	}

	productID, err := uuid.Parse(productIDStr)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return uuid.Nil, uuid.Nil, false
	}
	warehouseID, err := uuid.Parse(warehouseIDStr)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return productID, warehouseID, true
}

func defaultRecordFilter() inventoryapp.RecordListFilter {
	return inventoryapp.RecordListFilter{Page: 1, PageSize: 20}
}

func defaultMovementFilter() inventoryapp.MovementListFilter {
	return inventoryapp.MovementListFilter{Page: 1, PageSize: 20}
}

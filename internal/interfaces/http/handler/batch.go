package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/shared"
)

// BatchHandler handles inventory batch API endpoints
type BatchHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(inventoryService *inventoryapp.InventoryService) *BatchHandler {
	return &BatchHandler{
		inventoryService: inventoryService,
	}
}

// Create godoc
// @ID           createBatch
// @Summary      Create batch
// @Description  Register a new lot of stock, increasing on-hand quantity and appending a stock-in ledger entry
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateBatchRequest true "Batch creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.inventoryService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetByID godoc
// @ID           getBatchById
// @Summary      Get batch by ID
// @Description  Retrieve a batch by its ID
// @Tags         batches
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/batches/{id} [get]
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	batch, err := h.inventoryService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// List godoc
// @ID           listBatches
// @Summary      List batches
// @Description  Retrieve a paginated list of batches for a product-warehouse pair
// @Tags         batches
// @Produce      json
// @Param        product_id query string true "Product ID" format(uuid)
// @Param        warehouse_id query string true "Warehouse ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	productIDStr := c.Query("product_id")
	warehouseIDStr := c.Query("warehouse_id")
	if productIDStr == "" || warehouseIDStr == "" {
		h.BadRequest(c, "product_id and warehouse_id are required")
		return
	}

	productID, err := uuid.Parse(productIDStr)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	warehouseID, err := uuid.Parse(warehouseIDStr)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	filter := parseListFilter(c)
	batches, total, err := h.inventoryService.ListBatches(c.Request.Context(), productID, warehouseID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, batches, total, filter.Page, filter.PageSize)
}

// ListExpiring godoc
// @ID           listExpiringBatches
// @Summary      List expiring batches
// @Description  Retrieve active batches whose expiry date falls within the given number of days
// @Tags         batches
// @Produce      json
// @Param        within_days query int false "Days until expiry" default(30)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/batches/expiring [get]
func (h *BatchHandler) ListExpiring(c *gin.Context) {
	withinDays := 30
	if s := c.Query("within_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.BadRequest(c, "Invalid within_days value")
			return
		}
		withinDays = n
	}

	filter := parseListFilter(c)
	batches, err := h.inventoryService.ListExpiringBatches(c.Request.Context(), withinDays, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// Expire godoc
// @ID           expireBatches
// @Summary      Expire past-date batches
// @Description  Sweep active batches whose expiry date has passed and mark them EXPIRED. Remaining quantity is untouched; write-offs go through adjustments.
// @Tags         batches
// @Produce      json
// @Param        as_of query string false "Cutoff date" format(date-time)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/batches/expire [post]
func (h *BatchHandler) Expire(c *gin.Context) {
	asOf := time.Now()
	if s := c.Query("as_of"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.BadRequest(c, "Invalid as_of format, expected RFC3339")
			return
		}
		asOf = t
	}

	expired, err := h.inventoryService.ExpireBatches(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"expired": expired})
}

// parseListFilter reads common pagination parameters into a shared.Filter
func parseListFilter(c *gin.Context) shared.Filter {
	filter := shared.DefaultFilter()
	if s := c.Query("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if s := c.Query("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			filter.PageSize = n
		}
	}
	if s := c.Query("order_by"); s != "" {
		filter.OrderBy = s
	}
	if s := c.Query("order_dir"); s == "asc" || s == "desc" {
		filter.OrderDir = s
	}
	return filter
}

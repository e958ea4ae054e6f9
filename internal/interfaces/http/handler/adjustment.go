package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
)

// AdjustmentHandler handles stock adjustment API endpoints
type AdjustmentHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(inventoryService *inventoryapp.InventoryService) *AdjustmentHandler {
	return &AdjustmentHandler{
		inventoryService: inventoryService,
	}
}

// Create godoc
// @ID           createAdjustment
// @Summary      Create adjustment
// @Description  Create a stock adjustment. Changes below the approval threshold apply immediately; changes at or above it wait for a second user's approval.
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateAdjustmentRequest true "Adjustment creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments [post]
func (h *AdjustmentHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	adjustment, err := h.inventoryService.CreateAdjustment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, adjustment)
}

// GetByID godoc
// @ID           getAdjustmentById
// @Summary      Get adjustment by ID
// @Description  Retrieve an adjustment by its ID
// @Tags         adjustments
// @Produce      json
// @Param        id path string true "Adjustment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments/{id} [get]
func (h *AdjustmentHandler) GetByID(c *gin.Context) {
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	adjustment, err := h.inventoryService.GetAdjustment(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjustment)
}

// List godoc
// @ID           listAdjustments
// @Summary      List adjustments
// @Description  Retrieve a paginated list of adjustments with optional filtering
// @Tags         adjustments
// @Produce      json
// @Param        warehouse_id query string false "Filter by warehouse ID" format(uuid)
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        status query string false "Filter by status" Enums(DRAFT, PENDING_APPROVAL, APPROVED, REJECTED)
// @Param        adjustment_type query string false "Filter by adjustment type"
// @Param        created_by query string false "Filter by creator" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments [get]
func (h *AdjustmentHandler) List(c *gin.Context) {
	filter := defaultAdjustmentFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	adjustments, total, err := h.inventoryService.ListAdjustments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, adjustments, total, filter.Page, filter.PageSize)
}

// ListPending godoc
// @ID           listPendingAdjustments
// @Summary      List pending adjustments
// @Description  Retrieve adjustments awaiting approval
// @Tags         adjustments
// @Produce      json
// @Param        warehouse_id query string false "Filter by warehouse ID" format(uuid)
// @Param        product_id query string false "Filter by product ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments/pending [get]
func (h *AdjustmentHandler) ListPending(c *gin.Context) {
	filter := defaultAdjustmentFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	adjustments, total, err := h.inventoryService.ListPendingAdjustments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, adjustments, total, filter.Page, filter.PageSize)
}

// Approve godoc
// @ID           approveAdjustment
// @Summary      Approve adjustment
// @Description  Approve a pending adjustment and apply its quantity change. The approver must differ from the creator.
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        id path string true "Adjustment ID" format(uuid)
// @Param        request body inventoryapp.ApproveAdjustmentRequest true "Approval request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments/{id}/approve [post]
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	var req inventoryapp.ApproveAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	adjustment, err := h.inventoryService.ApproveAdjustment(c.Request.Context(), adjustmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjustment)
}

// Reject godoc
// @ID           rejectAdjustment
// @Summary      Reject adjustment
// @Description  Reject a pending adjustment. Rejected adjustments never touch stock.
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        id path string true "Adjustment ID" format(uuid)
// @Param        request body inventoryapp.RejectAdjustmentRequest true "Rejection request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/adjustments/{id}/reject [post]
func (h *AdjustmentHandler) Reject(c *gin.Context) {
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	var req inventoryapp.RejectAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	adjustment, err := h.inventoryService.RejectAdjustment(c.Request.Context(), adjustmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjustment)
}

func defaultAdjustmentFilter() inventoryapp.AdjustmentListFilter {
	return inventoryapp.AdjustmentListFilter{Page: 1, PageSize: 20}
}

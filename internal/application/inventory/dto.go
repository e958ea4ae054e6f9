package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecordResponse represents an inventory record in API responses
type InventoryRecordResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	LastAdjustedBy    *uuid.UUID      `json:"last_adjusted_by,omitempty"`
	LastStockTake     *time.Time      `json:"last_stock_take,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
	// Exists is false when no record has ever been created for the pair.
	// The zero counters are then synthesized, not stored.
	Exists bool `json:"exists"`
}

// RecordListFilter represents filter options for inventory record list
type RecordListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	HasStock    *bool      `form:"has_stock"`
	Page        int        `form:"page" binding:"min=1"`
	PageSize    int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddStockRequest represents a request to add stock
type AddStockRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID  uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	DocumentKind string          `json:"document_kind"` // PURCHASE_ORDER, SALES_RETURN, etc.
	DocumentID   string          `json:"document_id"`
	BatchID      *uuid.UUID      `json:"batch_id"`
	Reason       string          `json:"reason"`
	ActorID      uuid.UUID       `json:"actor_id" binding:"required"`
}

// DeductStockRequest represents a request to deduct stock
type DeductStockRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID  uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	DocumentKind string          `json:"document_kind"` // SALES_ORDER, PRODUCTION_RUN, etc.
	DocumentID   string          `json:"document_id"`
	BatchID      *uuid.UUID      `json:"batch_id"`
	Reason       string          `json:"reason"`
	ActorID      uuid.UUID       `json:"actor_id" binding:"required"`
}

// TransferStockRequest represents a request to move stock between warehouses
type TransferStockRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	DocumentID      string          `json:"document_id"`
	Reason          string          `json:"reason"`
	ActorID         uuid.UUID       `json:"actor_id" binding:"required"`
}

// ReserveStockRequest represents a request to reserve stock
type ReserveStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	ActorID     uuid.UUID       `json:"actor_id" binding:"required"`
}

// ReleaseReservationRequest represents a request to release reserved stock
type ReleaseReservationRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	ActorID     uuid.UUID       `json:"actor_id" binding:"required"`
}

// CreateBatchRequest represents a request to register a new batch
type CreateBatchRequest struct {
	BatchNumber    string          `json:"batch_number" binding:"required"`
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID    uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ProductionDate *time.Time      `json:"production_date"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
	DocumentKind   string          `json:"document_kind"`
	DocumentID     string          `json:"document_id"`
	ActorID        uuid.UUID       `json:"actor_id" binding:"required"`
}

// CreateAdjustmentRequest represents a request to create a stock adjustment
type CreateAdjustmentRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID    uuid.UUID       `json:"warehouse_id" binding:"required"`
	BatchID        *uuid.UUID      `json:"batch_id"`
	AdjustmentType string          `json:"adjustment_type" binding:"required"`
	QuantityChange decimal.Decimal `json:"quantity_change" binding:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Reason         string          `json:"reason" binding:"required,min=1,max=255"`
	ActorID        uuid.UUID       `json:"actor_id" binding:"required"`
}

// ApproveAdjustmentRequest represents a request to approve a pending adjustment
type ApproveAdjustmentRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	Notes      string    `json:"notes" binding:"max=255"`
}

// RejectAdjustmentRequest represents a request to reject a pending adjustment
type RejectAdjustmentRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	Notes      string    `json:"notes" binding:"max=255"`
}

// StockMovementResponse represents a ledger entry in API responses
type StockMovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReferenceNumber string          `json:"reference_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	BatchID         *uuid.UUID      `json:"batch_id,omitempty"`
	MovementType    string          `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	SignedQuantity  decimal.Decimal `json:"signed_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalValue      decimal.Decimal `json:"total_value"`
	QuantityBefore  decimal.Decimal `json:"quantity_before"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	FromWarehouseID *uuid.UUID      `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uuid.UUID      `json:"to_warehouse_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	MovementDate    time.Time       `json:"movement_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementListFilter represents filter options for ledger queries
type MovementListFilter struct {
	WarehouseID  *uuid.UUID `form:"warehouse_id"`
	ProductID    *uuid.UUID `form:"product_id"`
	MovementType string     `form:"movement_type"`
	DocumentKind string     `form:"document_kind"`
	DocumentID   string     `form:"document_id"`
	StartDate    *time.Time `form:"start_date"`
	EndDate      *time.Time `form:"end_date"`
	Page         int        `form:"page" binding:"min=1"`
	PageSize     int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferResponse represents the two ledger legs produced by a transfer
type TransferResponse struct {
	OutMovement StockMovementResponse `json:"out_movement"`
	InMovement  StockMovementResponse `json:"in_movement"`
}

// BatchResponse represents an inventory batch in API responses
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	ProductionDate  *time.Time      `json:"production_date,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	RemainingValue  decimal.Decimal `json:"remaining_value"`
	SourceType      string          `json:"source_type,omitempty"`
	SourceID        string          `json:"source_id,omitempty"`
	Status          string          `json:"status"`
	IsExpired       bool            `json:"is_expired"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AdjustmentResponse represents an adjustment in API responses
type AdjustmentResponse struct {
	ID               uuid.UUID       `json:"id"`
	AdjustmentNumber string          `json:"adjustment_number"`
	ProductID        uuid.UUID       `json:"product_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	BatchID          *uuid.UUID      `json:"batch_id,omitempty"`
	AdjustmentType   string          `json:"adjustment_type"`
	QuantityChange   decimal.Decimal `json:"quantity_change"`
	QuantityBefore   decimal.Decimal `json:"quantity_before"`
	QuantityAfter    decimal.Decimal `json:"quantity_after"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalValueImpact decimal.Decimal `json:"total_value_impact"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	CreatedBy        uuid.UUID       `json:"created_by"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	ApprovalNotes    string          `json:"approval_notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AdjustmentListFilter represents filter options for adjustment list
type AdjustmentListFilter struct {
	WarehouseID    *uuid.UUID `form:"warehouse_id"`
	ProductID      *uuid.UUID `form:"product_id"`
	Status         string     `form:"status"`
	AdjustmentType string     `form:"adjustment_type"`
	CreatedBy      *uuid.UUID `form:"created_by"`
	Page           int        `form:"page" binding:"min=1"`
	PageSize       int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductStockSummaryResponse represents aggregate stock for a product across warehouses
type ProductStockSummaryResponse struct {
	ProductID         uuid.UUID       `json:"product_id"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	TotalAvailable    decimal.Decimal `json:"total_available"`
	WarehousesStocked int64           `json:"warehouses_stocked"`
}

// ToInventoryRecordResponse converts a domain InventoryRecord to a response DTO
func ToInventoryRecordResponse(record *inventory.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:                record.ID,
		ProductID:         record.ProductID,
		WarehouseID:       record.WarehouseID,
		Quantity:          record.Quantity,
		ReservedQuantity:  record.ReservedQuantity,
		AvailableQuantity: record.AvailableQuantity(),
		LastAdjustedBy:    record.LastAdjustedBy,
		LastStockTake:     record.LastStockTake,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
		Version:           record.Version,
		Exists:            true,
	}
}

// ToInventoryRecordResponses converts a slice of records to response DTOs
func ToInventoryRecordResponses(records []inventory.InventoryRecord) []InventoryRecordResponse {
	responses := make([]InventoryRecordResponse, len(records))
	for i := range records {
		responses[i] = ToInventoryRecordResponse(&records[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to a response DTO
func ToStockMovementResponse(movement *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:              movement.ID,
		ReferenceNumber: movement.ReferenceNumber,
		ProductID:       movement.ProductID,
		WarehouseID:     movement.WarehouseID,
		BatchID:         movement.BatchID,
		MovementType:    string(movement.MovementType),
		Quantity:        movement.Quantity,
		SignedQuantity:  movement.SignedQuantity(),
		UnitCost:        movement.UnitCost,
		TotalValue:      movement.TotalValue,
		QuantityBefore:  movement.QuantityBefore,
		QuantityAfter:   movement.QuantityAfter,
		FromWarehouseID: movement.FromWarehouseID,
		ToWarehouseID:   movement.ToWarehouseID,
		Reason:          movement.Reason,
		ReferenceType:   string(movement.ReferenceType),
		ReferenceID:     movement.ReferenceID,
		CreatedBy:       movement.CreatedBy,
		MovementDate:    movement.MovementDate,
		CreatedAt:       movement.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of movements to response DTOs
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}

// ToBatchResponse converts a domain Batch to a response DTO
func ToBatchResponse(batch *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:              batch.ID,
		BatchNumber:     batch.BatchNumber,
		ProductID:       batch.ProductID,
		WarehouseID:     batch.WarehouseID,
		ProductionDate:  batch.ProductionDate,
		ExpiryDate:      batch.ExpiryDate,
		InitialQuantity: batch.InitialQuantity,
		CurrentQuantity: batch.CurrentQuantity,
		UnitCost:        batch.UnitCost,
		RemainingValue:  batch.RemainingValue(),
		SourceType:      string(batch.SourceType),
		SourceID:        batch.SourceID,
		Status:          string(batch.Status),
		IsExpired:       batch.IsExpired(time.Now()),
		CreatedAt:       batch.CreatedAt,
		UpdatedAt:       batch.UpdatedAt,
	}
}

// ToBatchResponses converts a slice of batches to response DTOs
func ToBatchResponses(batches []inventory.Batch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i])
	}
	return responses
}

// ToAdjustmentResponse converts a domain Adjustment to a response DTO
func ToAdjustmentResponse(adjustment *inventory.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:               adjustment.ID,
		AdjustmentNumber: adjustment.AdjustmentNumber,
		ProductID:        adjustment.ProductID,
		WarehouseID:      adjustment.WarehouseID,
		BatchID:          adjustment.BatchID,
		AdjustmentType:   string(adjustment.AdjustmentType),
		QuantityChange:   adjustment.QuantityChange,
		QuantityBefore:   adjustment.QuantityBefore,
		QuantityAfter:    adjustment.QuantityAfter,
		UnitCost:         adjustment.UnitCost,
		TotalValueImpact: adjustment.TotalValueImpact,
		Reason:           adjustment.Reason,
		Status:           string(adjustment.Status),
		CreatedBy:        adjustment.CreatedBy,
		ApprovedBy:       adjustment.ApprovedBy,
		ApprovedAt:       adjustment.ApprovedAt,
		ApprovalNotes:    adjustment.ApprovalNotes,
		CreatedAt:        adjustment.CreatedAt,
		UpdatedAt:        adjustment.UpdatedAt,
	}
}

// ToAdjustmentResponses converts a slice of adjustments to response DTOs
func ToAdjustmentResponses(adjustments []inventory.Adjustment) []AdjustmentResponse {
	responses := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		responses[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return responses
}

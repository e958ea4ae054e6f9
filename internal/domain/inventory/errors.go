package inventory

import (
	"fmt"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when an operation requests more stock
// than is available in a warehouse. It carries enough context for callers to
// surface the failure verbatim to end users. ProductName and WarehouseName are
// filled in by the service layer when a directory collaborator is configured;
// they fall back to the raw IDs otherwise.
type InsufficientStockError struct {
	ProductID     uuid.UUID
	ProductName   string
	WarehouseID   uuid.UUID
	WarehouseName string
	Requested     decimal.Decimal
	Available     decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	product := e.ProductName
	if product == "" {
		product = e.ProductID.String()
	}
	warehouse := e.WarehouseName
	if warehouse == "" {
		warehouse = e.WarehouseID.String()
	}
	return fmt.Sprintf("insufficient stock for %s in %s: requested %s, available %s",
		product, warehouse, e.Requested.String(), e.Available.String())
}

// Is reports whether target is the insufficient-stock sentinel, so callers can
// use errors.Is(err, shared.ErrInsufficientStock) as well as errors.As.
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}

// NewInsufficientStockError creates a new insufficient-stock error
func NewInsufficientStockError(productID, warehouseID uuid.UUID, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}

// RoleSeparationError is returned when the user approving an adjustment is the
// same user who created it. Approval requires a second pair of eyes; this is a
// business invariant, not a UI concern.
type RoleSeparationError struct {
	AdjustmentNumber string
	UserID           uuid.UUID
}

// Error implements the error interface
func (e *RoleSeparationError) Error() string {
	return fmt.Sprintf("adjustment %s cannot be approved by its creator %s", e.AdjustmentNumber, e.UserID)
}

// NewRoleSeparationError creates a new role-separation error
func NewRoleSeparationError(adjustmentNumber string, userID uuid.UUID) *RoleSeparationError {
	return &RoleSeparationError{
		AdjustmentNumber: adjustmentNumber,
		UserID:           userID,
	}
}

package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecord tracks on-hand and reserved stock for a specific product in
// a specific warehouse. It is the aggregate root for stock mutations; the
// composite identifier is ProductID + WarehouseID.
//
// Records are created lazily on the first movement against a product-warehouse
// pair and are never deleted. All counter mutations must happen inside a
// database transaction that also appends the matching StockMovement entry.
type InventoryRecord struct {
	shared.VersionedEntity
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_record_product_warehouse,priority:1"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_record_product_warehouse,priority:2"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"` // On-hand count
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"` // Promised to open orders
	LastAdjustedBy   *uuid.UUID      `gorm:"type:uuid"`                             // User behind the most recent mutation
	LastStockTake    *time.Time      // Most recent approved count correction
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates a zero-counter record for a product-warehouse pair
func NewInventoryRecord(productID, warehouseID uuid.UUID) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &InventoryRecord{
		VersionedEntity:  shared.NewVersionedEntity(),
		ProductID:        productID,
		WarehouseID:      warehouseID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
	}, nil
}

// AvailableQuantity returns on-hand minus reserved. It is always derived;
// persisting it would let the two counters drift apart.
func (r *InventoryRecord) AvailableQuantity() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// AddQuantity increases the on-hand counter
func (r *InventoryRecord) AddQuantity(quantity decimal.Decimal, actorID uuid.UUID) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	r.Quantity = r.Quantity.Add(quantity)
	r.stampMutation(actorID)
	return nil
}

// DeductQuantity decreases the on-hand counter. The check runs against
// available (not on-hand) quantity so reserved stock cannot be shipped out
// from under an open order. allowNegative bypasses the check and is reserved
// for internal callers applying an already-validated approved adjustment.
func (r *InventoryRecord) DeductQuantity(quantity decimal.Decimal, allowNegative bool, actorID uuid.UUID) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	available := r.AvailableQuantity()
	if !allowNegative && available.LessThan(quantity) {
		return NewInsufficientStockError(r.ProductID, r.WarehouseID, quantity, available)
	}

	r.Quantity = r.Quantity.Sub(quantity)
	r.stampMutation(actorID)
	return nil
}

// Reserve promises available stock to an open order
func (r *InventoryRecord) Reserve(quantity decimal.Decimal, actorID uuid.UUID) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	available := r.AvailableQuantity()
	if available.LessThan(quantity) {
		return NewInsufficientStockError(r.ProductID, r.WarehouseID, quantity, available)
	}

	r.ReservedQuantity = r.ReservedQuantity.Add(quantity)
	r.stampMutation(actorID)
	return nil
}

// Release returns reserved stock to available. The reserved counter is floored
// at zero rather than erroring; the returned excess lets the caller report
// over-releases from inconsistent upstream bookkeeping.
func (r *InventoryRecord) Release(quantity decimal.Decimal, actorID uuid.UUID) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	excess := decimal.Zero
	if quantity.GreaterThan(r.ReservedQuantity) {
		excess = quantity.Sub(r.ReservedQuantity)
		r.ReservedQuantity = decimal.Zero
	} else {
		r.ReservedQuantity = r.ReservedQuantity.Sub(quantity)
	}
	r.stampMutation(actorID)
	return excess, nil
}

// RecordStockTake stamps the time of the most recent approved count correction
func (r *InventoryRecord) RecordStockTake(at time.Time) {
	r.LastStockTake = &at
	r.UpdatedAt = time.Now()
}

// HasStock returns true if there is on-hand stock
func (r *InventoryRecord) HasStock() bool {
	return r.Quantity.GreaterThan(decimal.Zero)
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (r *InventoryRecord) CanFulfill(quantity decimal.Decimal) bool {
	return r.AvailableQuantity().GreaterThanOrEqual(quantity)
}

func (r *InventoryRecord) stampMutation(actorID uuid.UUID) {
	if actorID != uuid.Nil {
		r.LastAdjustedBy = &actorID
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle state of a batch
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "ACTIVE"
	BatchStatusDepleted BatchStatus = "DEPLETED"
	BatchStatusExpired  BatchStatus = "EXPIRED"
)

// IsValid returns true if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusActive, BatchStatusDepleted, BatchStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// Batch is an optional lot-tracking layer scoped to a product-warehouse pair.
// Its remaining quantity only ever decreases; stock can re-enter only through
// a fresh batch. Batches are metadata layered on top of InventoryRecord and
// the movement ledger, never a replacement for them.
type Batch struct {
	shared.BaseEntity
	BatchNumber     string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product_warehouse,priority:1"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product_warehouse,priority:2"`
	ProductionDate  *time.Time
	ExpiryDate      *time.Time
	InitialQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SourceType      DocumentKind    `gorm:"type:varchar(30)"` // What produced this batch
	SourceID        string          `gorm:"type:varchar(50)"`
	Status          BatchStatus     `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "inventory_batches"
}

// NewBatch creates a new batch with its full initial quantity remaining
func NewBatch(
	batchNumber string,
	productID, warehouseID uuid.UUID,
	quantity, unitCost decimal.Decimal,
	productionDate, expiryDate *time.Time,
) (*Batch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if productionDate != nil && expiryDate != nil && expiryDate.Before(*productionDate) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry date cannot precede production date")
	}

	return &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		BatchNumber:     batchNumber,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		ProductionDate:  productionDate,
		ExpiryDate:      expiryDate,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		UnitCost:        unitCost.Round(CurrencyPrecision),
		Status:          BatchStatusActive,
	}, nil
}

// WithSource records the business document that produced this batch
func (b *Batch) WithSource(ref DocumentRef) *Batch {
	b.SourceType = ref.Kind
	b.SourceID = ref.ID
	return b
}

// DeductQuantity reduces the remaining quantity, clamped at zero. When the
// batch runs out it transitions to DEPLETED. Returns the quantity actually
// deducted, which may be less than requested.
func (b *Batch) DeductQuantity(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	deducted := quantity
	if quantity.GreaterThanOrEqual(b.CurrentQuantity) {
		deducted = b.CurrentQuantity
		b.CurrentQuantity = decimal.Zero
		b.Status = BatchStatusDepleted
	} else {
		b.CurrentQuantity = b.CurrentQuantity.Sub(quantity)
	}
	b.UpdatedAt = time.Now()
	return deducted, nil
}

// IsExpired returns true if the batch's expiry date has passed at the given time
func (b *Batch) IsExpired(asOf time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(asOf)
}

// MarkExpired transitions an active, past-expiry batch to EXPIRED. The
// remaining quantity is untouched; write-offs go through the adjustment
// workflow.
func (b *Batch) MarkExpired(asOf time.Time) error {
	if b.Status != BatchStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active batches can be marked expired")
	}
	if !b.IsExpired(asOf) {
		return shared.NewDomainError("NOT_EXPIRED", "Batch expiry date has not passed")
	}
	b.Status = BatchStatusExpired
	b.UpdatedAt = time.Now()
	return nil
}

// HasStock returns true if the batch has remaining quantity
func (b *Batch) HasStock() bool {
	return b.CurrentQuantity.GreaterThan(decimal.Zero)
}

// RemainingValue returns the value of the remaining quantity
func (b *Batch) RemainingValue() decimal.Decimal {
	return b.CurrentQuantity.Mul(b.UnitCost).Round(CurrencyPrecision)
}

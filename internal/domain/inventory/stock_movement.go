package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places for monetary values
const CurrencyPrecision = 2

// StockMovement is one immutable entry in the stock movement ledger. Every
// mutation of an InventoryRecord appends exactly one entry capturing the
// before/after state inside the same transaction, so replaying a
// product-warehouse pair's entries from zero always reproduces the record's
// current quantity.
//
// Entries are never updated or deleted after commit, with one exception: the
// two legs of a transfer have their FromWarehouseID/ToWarehouseID metadata
// annotated after creation (still inside the transfer's transaction) so either
// half can be traced to its counterpart. Quantity fields are never touched.
type StockMovement struct {
	shared.BaseEntity
	ReferenceNumber string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_product_warehouse,priority:1"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_product_warehouse,priority:2"`
	BatchID         *uuid.UUID      `gorm:"type:uuid;index"`
	MovementType    MovementType    `gorm:"type:varchar(30);not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,3);not null"` // Always positive, direction implied by type
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Quantity * UnitCost, currency precision
	QuantityBefore  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	QuantityAfter   decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	FromWarehouseID *uuid.UUID      `gorm:"type:uuid"` // Set only on transfer legs
	ToWarehouseID   *uuid.UUID      `gorm:"type:uuid"` // Set only on transfer legs
	Reason          string          `gorm:"type:varchar(255)"`
	ReferenceType   DocumentKind    `gorm:"type:varchar(30);index:idx_stock_movement_reference"` // Causing business document
	ReferenceID     string          `gorm:"type:varchar(50);index:idx_stock_movement_reference"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid"`
	MovementDate    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new ledger entry. The before/after quantities
// must be consistent with the movement type's direction; an entry that would
// diverge from its InventoryRecord is rejected.
func NewStockMovement(
	referenceNumber string,
	productID, warehouseID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	quantityBefore, quantityAfter decimal.Decimal,
) (*StockMovement, error) {
	if referenceNumber == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE_NUMBER", "Reference number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	expected := quantityBefore.Add(quantity)
	if movementType.IsOutbound() {
		expected = quantityBefore.Sub(quantity)
	}
	if !quantityAfter.Equal(expected) {
		return nil, shared.NewDomainError("LEDGER_MISMATCH", "Quantity after does not match quantity before and movement direction")
	}

	return &StockMovement{
		BaseEntity:      shared.NewBaseEntity(),
		ReferenceNumber: referenceNumber,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		MovementType:    movementType,
		Quantity:        quantity,
		UnitCost:        decimal.Zero,
		TotalValue:      decimal.Zero,
		QuantityBefore:  quantityBefore,
		QuantityAfter:   quantityAfter,
		MovementDate:    time.Now(),
	}, nil
}

// WithUnitCost sets the unit cost and derives the total value at currency precision
func (m *StockMovement) WithUnitCost(unitCost decimal.Decimal) *StockMovement {
	m.UnitCost = unitCost.Round(CurrencyPrecision)
	m.TotalValue = m.Quantity.Mul(unitCost).Round(CurrencyPrecision)
	return m
}

// WithBatchID sets the related batch
func (m *StockMovement) WithBatchID(batchID uuid.UUID) *StockMovement {
	m.BatchID = &batchID
	return m
}

// WithReason sets the reason for the movement
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithDocumentRef sets the causing business document
func (m *StockMovement) WithDocumentRef(ref DocumentRef) *StockMovement {
	if !ref.IsZero() {
		m.ReferenceType = ref.Kind
		m.ReferenceID = ref.ID
	}
	return m
}

// WithCreatedBy sets the acting user
func (m *StockMovement) WithCreatedBy(userID uuid.UUID) *StockMovement {
	if userID != uuid.Nil {
		m.CreatedBy = &userID
	}
	return m
}

// SignedQuantity returns the quantity with sign based on the movement direction
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType.IsOutbound() {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// QuantityChange returns the net on-hand change captured by this entry
func (m *StockMovement) QuantityChange() decimal.Decimal {
	return m.QuantityAfter.Sub(m.QuantityBefore)
}

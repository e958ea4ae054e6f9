package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecordRepository defines the interface for inventory record persistence
type InventoryRecordRepository interface {
	// FindByID finds an inventory record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryRecord, error)

	// FindByProductAndWarehouse finds the record for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryRecord, error)

	// FindByProductAndWarehouseForUpdate finds the record with a row lock,
	// must be called inside a transaction
	FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryRecord, error)

	// FindByWarehouse finds all records in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]InventoryRecord, error)

	// FindByProduct finds all records for a product across warehouses
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]InventoryRecord, error)

	// FindAll finds all inventory records
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryRecord, error)

	// FindWithAvailableStock finds records that have available stock
	FindWithAvailableStock(ctx context.Context, filter shared.Filter) ([]InventoryRecord, error)

	// Save creates or updates an inventory record
	Save(ctx context.Context, record *InventoryRecord) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, record *InventoryRecord) error

	// GetOrCreateForUpdate returns the row-locked record for a product-warehouse
	// pair, creating a zero-quantity one if none exists. Must be called inside
	// a transaction.
	GetOrCreateForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryRecord, error)

	// Count counts inventory records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByWarehouse counts inventory records in a warehouse
	CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)

	// SumQuantityByProduct sums total on-hand quantity for a product across all warehouses
	SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// SumAvailableByProduct sums available (on-hand minus reserved) quantity for a product
	SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// ExistsByProductAndWarehouse checks if a record exists for the pair
	ExistsByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (bool, error)
}

// StockMovementRepository defines the interface for ledger persistence.
// Movements are append-only: there is no update or delete, with the single
// exception of AnnotateTransferWarehouses which backfills counterpart
// warehouse columns on the two legs of a transfer.
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByReferenceNumber finds a movement by its unique reference number
	FindByReferenceNumber(ctx context.Context, referenceNumber string) (*StockMovement, error)

	// FindByProductAndWarehouse finds movements for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByWarehouse finds movements for a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByProduct finds movements for a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByDocument finds movements by source document
	FindByDocument(ctx context.Context, ref DocumentRef) ([]StockMovement, error)

	// FindByDateRange finds movements within a date range
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// FindByType finds movements by movement type
	FindByType(ctx context.Context, movementType MovementType, filter shared.Filter) ([]StockMovement, error)

	// Create appends a new movement to the ledger
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends multiple movements
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// AnnotateTransferWarehouses backfills from/to warehouse columns on the
	// two ledger entries of a completed transfer
	AnnotateTransferWarehouses(ctx context.Context, outMovementID, inMovementID, fromWarehouseID, toWarehouseID uuid.UUID) error

	// Count counts movements matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByProductAndWarehouse counts movements for a product-warehouse pair
	CountByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error)

	// SumSignedQuantity sums signed quantities (inbound positive, outbound
	// negative) for a product-warehouse pair
	SumSignedQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error)

	// ExistsByReferenceNumber checks if a reference number is already taken
	ExistsByReferenceNumber(ctx context.Context, referenceNumber string) (bool, error)
}

// BatchRepository defines the interface for inventory batch persistence
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate finds a batch with a row lock, must be called inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByBatchNumber finds a batch by its number for a product-warehouse pair
	FindByBatchNumber(ctx context.Context, productID, warehouseID uuid.UUID, batchNumber string) (*Batch, error)

	// FindByProductAndWarehouse finds batches for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]Batch, error)

	// FindActiveByProductAndWarehouse finds active batches ordered by expiry
	// date ascending (nearest expiry first, nil expiry last)
	FindActiveByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) ([]Batch, error)

	// FindExpiringSoon finds active batches expiring within the given number of days
	FindExpiringSoon(ctx context.Context, withinDays int, filter shared.Filter) ([]Batch, error)

	// FindExpired finds active batches whose expiry date has passed
	FindExpired(ctx context.Context, asOf time.Time) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// Count counts batches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumCurrentQuantity sums remaining quantity across batches for a product-warehouse pair
	SumCurrentQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error)
}

// AdjustmentRepository defines the interface for adjustment persistence
type AdjustmentRepository interface {
	// FindByID finds an adjustment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Adjustment, error)

	// FindByIDForUpdate finds an adjustment by its ID with a row lock.
	// Approval and rejection must read through this so concurrent deciders
	// serialize on the adjustment row and see its committed status.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Adjustment, error)

	// FindByAdjustmentNumber finds an adjustment by its number
	FindByAdjustmentNumber(ctx context.Context, adjustmentNumber string) (*Adjustment, error)

	// FindByProductAndWarehouse finds adjustments for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]Adjustment, error)

	// FindByStatus finds adjustments with a specific status
	FindByStatus(ctx context.Context, status AdjustmentStatus, filter shared.Filter) ([]Adjustment, error)

	// FindPendingApproval finds adjustments awaiting approval
	FindPendingApproval(ctx context.Context, filter shared.Filter) ([]Adjustment, error)

	// FindAll finds all adjustments
	FindAll(ctx context.Context, filter shared.Filter) ([]Adjustment, error)

	// Save creates or updates an adjustment
	Save(ctx context.Context, adjustment *Adjustment) error

	// Count counts adjustments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts adjustments by status
	CountByStatus(ctx context.Context, status AdjustmentStatus) (int64, error)
}

// MovementFilter extends shared.Filter with ledger-specific filters
type MovementFilter struct {
	shared.Filter
	WarehouseID  *uuid.UUID
	ProductID    *uuid.UUID
	MovementType *MovementType
	DocumentKind *DocumentKind
	DocumentID   string
	StartDate    *time.Time
	EndDate      *time.Time
}

// AdjustmentFilter extends shared.Filter with adjustment-specific filters
type AdjustmentFilter struct {
	shared.Filter
	WarehouseID    *uuid.UUID
	ProductID      *uuid.UUID
	Status         *AdjustmentStatus
	AdjustmentType *AdjustmentType
	CreatedBy      *uuid.UUID
}

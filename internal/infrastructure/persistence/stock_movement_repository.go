package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The ledger is append-only: no Update or Delete methods exist, with the
// single exception of the transfer-leg warehouse annotation.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByReferenceNumber finds a movement by its unique reference number
func (r *GormStockMovementRepository) FindByReferenceNumber(ctx context.Context, referenceNumber string) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference_number = ?", referenceNumber).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByProductAndWarehouse finds movements for a product-warehouse pair
func (r *GormStockMovementRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		applyMovementFilters(r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID), filter),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByWarehouse finds movements for a warehouse
func (r *GormStockMovementRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		applyMovementFilters(r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("warehouse_id = ?", warehouseID), filter),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct finds movements for a product
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		applyMovementFilters(r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("product_id = ?", productID), filter),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDocument finds movements by source document
func (r *GormStockMovementRepository) FindByDocument(ctx context.Context, ref inventory.DocumentRef) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDateRange finds movements within a date range
func (r *GormStockMovementRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{})
	if !start.IsZero() {
		query = query.Where("movement_date >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("movement_date <= ?", end)
	}
	query = applyFilter(applyMovementFilters(query, filter), filter)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByType finds movements by movement type
func (r *GormStockMovementRepository) FindByType(ctx context.Context, movementType inventory.MovementType, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("movement_type = ?", movementType),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create appends a new movement to the ledger
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	err := r.db.WithContext(ctx).Create(movement).Error
	if err != nil && isUniqueViolation(err) {
		return shared.NewDomainError("DUPLICATE_REFERENCE", "Reference number already exists")
	}
	return err
}

// CreateBatch appends multiple movements
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// AnnotateTransferWarehouses backfills from/to warehouse columns on the two
// legs of a completed transfer
func (r *GormStockMovementRepository) AnnotateTransferWarehouses(ctx context.Context, outMovementID, inMovementID, fromWarehouseID, toWarehouseID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("id IN ?", []uuid.UUID{outMovementID, inMovementID}).
		Updates(map[string]interface{}{
			"from_warehouse_id": fromWarehouseID,
			"to_warehouse_id":   toWarehouseID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 2 {
		return shared.NewDomainError("TRANSFER_ANNOTATION_FAILED", "Could not link both transfer legs")
	}
	return nil
}

// Count counts movements matching the filter
func (r *GormStockMovementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyMovementFilters(r.db.WithContext(ctx).Model(&inventory.StockMovement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProductAndWarehouse counts movements for a product-warehouse pair
func (r *GormStockMovementRepository) CountByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumSignedQuantity sums signed quantities for a product-warehouse pair.
// Inbound types count positive, outbound negative; the result reproduces the
// record's on-hand quantity when the ledger is consistent.
func (r *GormStockMovementRepository) SumSignedQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(`COALESCE(SUM(CASE WHEN movement_type IN ? THEN quantity ELSE -quantity END), 0) as total`,
			[]inventory.MovementType{
				inventory.MovementTypeStockIn,
				inventory.MovementTypeTransferIn,
				inventory.MovementTypeAdjustmentIn,
			}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByReferenceNumber checks if a reference number is already taken
func (r *GormStockMovementRepository) ExistsByReferenceNumber(ctx context.Context, referenceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("reference_number = ?", referenceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyMovementFilters applies ledger-specific key filters
func applyMovementFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		}
	}
	return query
}

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
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDForUpdate finds a batch with a row lock
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber finds a batch by its number for a product-warehouse pair
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, productID, warehouseID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ? AND batch_number = ?", productID, warehouseID, batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProductAndWarehouse finds batches for a product-warehouse pair
func (r *GormBatchRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Batch{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID),
		filter,
	)
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindActiveByProductAndWarehouse finds active batches, nearest expiry first,
// nil expiry last
func (r *GormBatchRepository) FindActiveByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ? AND status = ?", productID, warehouseID, inventory.BatchStatusActive).
		Order("expiry_date ASC NULLS LAST").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringSoon finds active batches expiring within the given number of days
func (r *GormBatchRepository) FindExpiringSoon(ctx context.Context, withinDays int, filter shared.Filter) ([]inventory.Batch, error) {
	cutoff := time.Now().AddDate(0, 0, withinDays)
	var batches []inventory.Batch
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Batch{}).
			Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", inventory.BatchStatusActive, cutoff),
		filter,
	)
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpired finds active batches whose expiry date has passed
func (r *GormBatchRepository) FindExpired(ctx context.Context, asOf time.Time) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", inventory.BatchStatusActive, asOf).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	err := r.db.WithContext(ctx).Save(batch).Error
	if err != nil && isUniqueViolation(err) {
		return shared.NewDomainError("BATCH_EXISTS", "Batch number already exists for this product and warehouse")
	}
	return err
}

// Count counts batches matching the filter
func (r *GormBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Batch{})
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumCurrentQuantity sums remaining quantity across batches for a product-warehouse pair
func (r *GormBatchRepository) SumCurrentQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Batch{}).
		Select("COALESCE(SUM(current_quantity), 0) as total").
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

package persistence

import (
	"context"
	"errors"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAdjustmentRepository implements AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// FindByID finds an adjustment by its ID
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Adjustment, error) {
	var adjustment inventory.Adjustment
	if err := r.db.WithContext(ctx).First(&adjustment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adjustment, nil
}

// FindByIDForUpdate finds an adjustment by its ID with a row lock
func (r *GormAdjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Adjustment, error) {
	var adjustment inventory.Adjustment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&adjustment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adjustment, nil
}

// FindByAdjustmentNumber finds an adjustment by its number
func (r *GormAdjustmentRepository) FindByAdjustmentNumber(ctx context.Context, adjustmentNumber string) (*inventory.Adjustment, error) {
	var adjustment inventory.Adjustment
	if err := r.db.WithContext(ctx).
		Where("adjustment_number = ?", adjustmentNumber).
		First(&adjustment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adjustment, nil
}

// FindByProductAndWarehouse finds adjustments for a product-warehouse pair
func (r *GormAdjustmentRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Adjustment, error) {
	var adjustments []inventory.Adjustment
	query := applyFilter(
		applyAdjustmentFilters(r.db.WithContext(ctx).Model(&inventory.Adjustment{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID), filter),
		filter,
	)
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// FindByStatus finds adjustments with a specific status
func (r *GormAdjustmentRepository) FindByStatus(ctx context.Context, status inventory.AdjustmentStatus, filter shared.Filter) ([]inventory.Adjustment, error) {
	var adjustments []inventory.Adjustment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Adjustment{}).
			Where("status = ?", status),
		filter,
	)
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// FindPendingApproval finds adjustments awaiting approval
func (r *GormAdjustmentRepository) FindPendingApproval(ctx context.Context, filter shared.Filter) ([]inventory.Adjustment, error) {
	return r.FindByStatus(ctx, inventory.AdjustmentStatusPendingApproval, filter)
}

// FindAll finds all adjustments
func (r *GormAdjustmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Adjustment, error) {
	var adjustments []inventory.Adjustment
	query := applyFilter(
		applyAdjustmentFilters(r.db.WithContext(ctx).Model(&inventory.Adjustment{}), filter),
		filter,
	)
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Save creates or updates an adjustment
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *inventory.Adjustment) error {
	err := r.db.WithContext(ctx).Save(adjustment).Error
	if err != nil && isUniqueViolation(err) {
		return shared.NewDomainError("DUPLICATE_ADJUSTMENT_NUMBER", "Adjustment number already exists")
	}
	return err
}

// Count counts adjustments matching the filter
func (r *GormAdjustmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyAdjustmentFilters(r.db.WithContext(ctx).Model(&inventory.Adjustment{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts adjustments by status
func (r *GormAdjustmentRepository) CountByStatus(ctx context.Context, status inventory.AdjustmentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Adjustment{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyAdjustmentFilters applies adjustment-specific key filters
func applyAdjustmentFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "adjustment_type":
			query = query.Where("adjustment_type = ?", value)
		case "created_by":
			query = query.Where("created_by = ?", value)
		}
	}
	return query
}

package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRecordRepository implements InventoryRecordRepository using GORM
type GormInventoryRecordRepository struct {
	db *gorm.DB
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{db: db}
}

// FindByID finds an inventory record by its ID
func (r *GormInventoryRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProductAndWarehouse finds the record for a product-warehouse pair
func (r *GormInventoryRecordRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProductAndWarehouseForUpdate finds the record with a row lock
func (r *GormInventoryRecordRepository) FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByWarehouse finds all records in a warehouse
func (r *GormInventoryRecordRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByProduct finds all records for a product across warehouses
func (r *GormInventoryRecordRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
			Where("product_id = ?", productID),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll finds all inventory records
func (r *GormInventoryRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := applyFilter(
		applyRecordFilters(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}), filter),
		shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: filter.OrderBy, OrderDir: filter.OrderDir},
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindWithAvailableStock finds records that have available stock
func (r *GormInventoryRecordRepository) FindWithAvailableStock(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
			Where("quantity - reserved_quantity > 0"),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates an inventory record
func (r *GormInventoryRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryRecordRepository) SaveWithLock(ctx context.Context, record *inventory.InventoryRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity":          record.Quantity,
			"reserved_quantity": record.ReservedQuantity,
			"last_adjusted_by":  record.LastAdjustedBy,
			"last_stock_take":   record.LastStockTake,
			"version":           record.Version,
			"updated_at":        record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Inventory record was modified by another transaction")
	}
	return nil
}

// GetOrCreateForUpdate returns the row-locked record, creating a zero one on first touch
func (r *GormInventoryRecordRepository) GetOrCreateForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryRecord, error) {
	record, err := r.FindByProductAndWarehouseForUpdate(ctx, productID, warehouseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err = inventory.NewInventoryRecord(productID, warehouseID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT handles the race with a concurrent first touch
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(record).Error; err != nil {
		return nil, err
	}

	return r.FindByProductAndWarehouseForUpdate(ctx, productID, warehouseID)
}

// Count counts inventory records matching the filter
func (r *GormInventoryRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyRecordFilters(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByWarehouse counts inventory records in a warehouse
func (r *GormInventoryRecordRepository) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("warehouse_id = ?", warehouseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByProduct sums total on-hand quantity for a product across all warehouses
func (r *GormInventoryRecordRepository) SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumAvailableByProduct sums available quantity for a product across all warehouses
func (r *GormInventoryRecordRepository) SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Select("COALESCE(SUM(quantity - reserved_quantity), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByProductAndWarehouse checks if a record exists for the pair
func (r *GormInventoryRecordRepository) ExistsByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyRecordFilters applies record-specific key filters
func applyRecordFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "has_stock":
			query = query.Where("quantity - reserved_quantity > 0")
		case "no_stock":
			query = query.Where("quantity - reserved_quantity <= 0")
		}
	}
	return query
}

// applyFilter applies pagination and ordering shared by all repositories
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

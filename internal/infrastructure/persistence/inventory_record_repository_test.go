package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&inventory.InventoryRecord{},
		&inventory.StockMovement{},
		&inventory.Batch{},
		&inventory.Adjustment{},
		&ReferenceSequence{},
	)
	require.NoError(t, err)

	return db
}

func createRecord(t *testing.T, db *gorm.DB, productID, warehouseID uuid.UUID, quantity int64) *inventory.InventoryRecord {
	t.Helper()
	record, err := inventory.NewInventoryRecord(productID, warehouseID)
	require.NoError(t, err)
	record.Quantity = decimal.NewFromInt(quantity)
	require.NoError(t, NewGormInventoryRecordRepository(db).Save(context.Background(), record))
	return record
}

func TestGormInventoryRecordRepository_FindByProductAndWarehouse(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryRecordRepository(db)
	ctx := context.Background()

	t.Run("round-trips a saved record", func(t *testing.T) {
		productID := uuid.New()
		warehouseID := uuid.New()
		createRecord(t, db, productID, warehouseID, 100)

		found, err := repo.FindByProductAndWarehouse(ctx, productID, warehouseID)

		require.NoError(t, err)
		assert.Equal(t, productID, found.ProductID)
		assert.Equal(t, warehouseID, found.WarehouseID)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.ReservedQuantity.IsZero())
	})

	t.Run("missing pair is not found", func(t *testing.T) {
		_, err := repo.FindByProductAndWarehouse(ctx, uuid.New(), uuid.New())

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormInventoryRecordRepository_SaveWithLock(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryRecordRepository(db)
	ctx := context.Background()

	t.Run("persists the mutation and version", func(t *testing.T) {
		record := createRecord(t, db, uuid.New(), uuid.New(), 0)

		require.NoError(t, record.AddQuantity(decimal.NewFromInt(50), uuid.New()))
		require.NoError(t, repo.SaveWithLock(ctx, record))

		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		record := createRecord(t, db, uuid.New(), uuid.New(), 100)

		first, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)

		require.NoError(t, first.AddQuantity(decimal.NewFromInt(10), uuid.New()))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.AddQuantity(decimal.NewFromInt(10), uuid.New()))
		err = repo.SaveWithLock(ctx, second)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "OPTIMISTIC_LOCK_FAILED", domainErr.Code)

		// first writer's mutation survives
		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(110)))
	})
}

func TestGormInventoryRecordRepository_Sums(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryRecordRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	first := createRecord(t, db, productID, uuid.New(), 100)
	createRecord(t, db, productID, uuid.New(), 40)
	createRecord(t, db, uuid.New(), uuid.New(), 999) // different product

	first.ReservedQuantity = decimal.NewFromInt(30)
	require.NoError(t, repo.Save(ctx, first))

	total, err := repo.SumQuantityByProduct(ctx, productID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(140)), "total was %s", total.String())

	available, err := repo.SumAvailableByProduct(ctx, productID)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(110)), "available was %s", available.String())

	t.Run("unknown product sums to zero", func(t *testing.T) {
		total, err := repo.SumQuantityByProduct(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestGormInventoryRecordRepository_FindAll(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryRecordRepository(db)
	ctx := context.Background()

	warehouseID := uuid.New()
	createRecord(t, db, uuid.New(), warehouseID, 100)
	createRecord(t, db, uuid.New(), warehouseID, 0)
	createRecord(t, db, uuid.New(), uuid.New(), 50)

	t.Run("filters by warehouse", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["warehouse_id"] = warehouseID

		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("has_stock excludes zero-quantity pairs", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["warehouse_id"] = warehouseID
		filter.Filters["has_stock"] = true

		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Quantity.IsPositive())
	})

	t.Run("pagination caps the page size", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestGormInventoryRecordRepository_ExistsByProductAndWarehouse(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryRecordRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	warehouseID := uuid.New()
	createRecord(t, db, productID, warehouseID, 10)

	exists, err := repo.ExistsByProductAndWarehouse(ctx, productID, warehouseID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByProductAndWarehouse(ctx, productID, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

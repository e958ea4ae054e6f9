package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createMovement(t *testing.T, db *gorm.DB, reference string, productID, warehouseID uuid.UUID, movementType inventory.MovementType, quantity, before int64) *inventory.StockMovement {
	t.Helper()
	after := before + quantity
	if movementType.IsOutbound() {
		after = before - quantity
	}
	movement, err := inventory.NewStockMovement(
		reference, productID, warehouseID, movementType,
		decimal.NewFromInt(quantity), decimal.NewFromInt(before), decimal.NewFromInt(after),
	)
	require.NoError(t, err)
	require.NoError(t, NewGormStockMovementRepository(db).Create(context.Background(), movement))
	return movement
}

func TestGormStockMovementRepository_Create(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	t.Run("appends and finds by reference number", func(t *testing.T) {
		productID := uuid.New()
		warehouseID := uuid.New()
		createMovement(t, db, "IN-20260115-0001", productID, warehouseID, inventory.MovementTypeStockIn, 100, 0)

		found, err := repo.FindByReferenceNumber(ctx, "IN-20260115-0001")

		require.NoError(t, err)
		assert.Equal(t, productID, found.ProductID)
		assert.Equal(t, inventory.MovementTypeStockIn, found.MovementType)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(100)))
	})

	t.Run("duplicate reference number is rejected", func(t *testing.T) {
		productID := uuid.New()
		warehouseID := uuid.New()
		createMovement(t, db, "IN-20260115-0002", productID, warehouseID, inventory.MovementTypeStockIn, 10, 0)

		movement, err := inventory.NewStockMovement(
			"IN-20260115-0002", productID, warehouseID, inventory.MovementTypeStockIn,
			decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.NewFromInt(15),
		)
		require.NoError(t, err)

		err = repo.Create(ctx, movement)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "DUPLICATE_REFERENCE", domainErr.Code)
	})

	t.Run("unknown reference number is not found", func(t *testing.T) {
		_, err := repo.FindByReferenceNumber(ctx, "IN-19990101-0001")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormStockMovementRepository_SumSignedQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	warehouseID := uuid.New()
	createMovement(t, db, "IN-20260116-0001", productID, warehouseID, inventory.MovementTypeStockIn, 100, 0)
	createMovement(t, db, "OUT-20260116-0001", productID, warehouseID, inventory.MovementTypeStockOut, 30, 100)
	createMovement(t, db, "ADJ-20260116-0001", productID, warehouseID, inventory.MovementTypeAdjustmentIn, 7, 70)
	// another pair must not leak into the sum
	createMovement(t, db, "IN-20260116-0002", uuid.New(), warehouseID, inventory.MovementTypeStockIn, 999, 0)

	sum, err := repo.SumSignedQuantity(ctx, productID, warehouseID)

	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(77)), "sum was %s", sum.String())

	t.Run("empty ledger sums to zero", func(t *testing.T) {
		sum, err := repo.SumSignedQuantity(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

func TestGormStockMovementRepository_AnnotateTransferWarehouses(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	fromID := uuid.New()
	toID := uuid.New()

	t.Run("backfills both legs", func(t *testing.T) {
		out := createMovement(t, db, "TRF-20260117-0001", productID, fromID, inventory.MovementTypeTransferOut, 40, 100)
		in := createMovement(t, db, "TRF-20260117-0002", productID, toID, inventory.MovementTypeTransferIn, 40, 0)

		err := repo.AnnotateTransferWarehouses(ctx, out.ID, in.ID, fromID, toID)

		require.NoError(t, err)
		for _, id := range []uuid.UUID{out.ID, in.ID} {
			found, err := repo.FindByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, found.FromWarehouseID)
			require.NotNil(t, found.ToWarehouseID)
			assert.Equal(t, fromID, *found.FromWarehouseID)
			assert.Equal(t, toID, *found.ToWarehouseID)
		}
	})

	t.Run("fails unless both legs exist", func(t *testing.T) {
		out := createMovement(t, db, "TRF-20260117-0003", productID, fromID, inventory.MovementTypeTransferOut, 10, 60)

		err := repo.AnnotateTransferWarehouses(ctx, out.ID, uuid.New(), fromID, toID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "TRANSFER_ANNOTATION_FAILED", domainErr.Code)
	})
}

func TestGormStockMovementRepository_FindByDocument(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	warehouseID := uuid.New()
	ref := inventory.NewDocumentRef(inventory.DocumentKindSalesOrder, "SO-1001")

	movement, err := inventory.NewStockMovement(
		"OUT-20260118-0001", productID, warehouseID, inventory.MovementTypeStockOut,
		decimal.NewFromInt(5), decimal.NewFromInt(20), decimal.NewFromInt(15),
	)
	require.NoError(t, err)
	movement.WithDocumentRef(ref)
	require.NoError(t, repo.Create(ctx, movement))
	createMovement(t, db, "OUT-20260118-0002", productID, warehouseID, inventory.MovementTypeStockOut, 1, 15)

	found, err := repo.FindByDocument(ctx, ref)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "OUT-20260118-0001", found[0].ReferenceNumber)
	assert.Equal(t, "SO-1001", found[0].ReferenceID)
}

func TestGormStockMovementRepository_FindByDateRange(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	warehouseID := uuid.New()
	old := createMovement(t, db, "IN-20260119-0001", productID, warehouseID, inventory.MovementTypeStockIn, 10, 0)
	old.MovementDate = time.Now().Add(-72 * time.Hour)
	require.NoError(t, db.Save(old).Error)
	createMovement(t, db, "IN-20260119-0002", productID, warehouseID, inventory.MovementTypeStockIn, 20, 10)

	filter := shared.DefaultFilter()
	filter.Filters["product_id"] = productID

	recent, err := repo.FindByDateRange(ctx, time.Now().Add(-24*time.Hour), time.Now(), filter)

	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "IN-20260119-0002", recent[0].ReferenceNumber)

	t.Run("movement_type filter narrows results", func(t *testing.T) {
		createMovement(t, db, "OUT-20260119-0001", productID, warehouseID, inventory.MovementTypeStockOut, 5, 30)
		typed := shared.DefaultFilter()
		typed.Filters["product_id"] = productID
		typed.Filters["movement_type"] = string(inventory.MovementTypeStockOut)

		found, err := repo.FindByDateRange(ctx, time.Time{}, time.Now(), typed)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, inventory.MovementTypeStockOut, found[0].MovementType)
	})
}

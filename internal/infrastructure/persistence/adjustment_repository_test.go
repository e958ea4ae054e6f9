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
	"gorm.io/gorm"
)

func createAdjustment(t *testing.T, db *gorm.DB, number string, productID, warehouseID uuid.UUID, adjType inventory.AdjustmentType, change int64, createdBy uuid.UUID) *inventory.Adjustment {
	t.Helper()
	adj, err := inventory.NewAdjustment(
		number, productID, warehouseID, adjType,
		decimal.NewFromInt(change), decimal.NewFromInt(100), decimal.Zero,
		"cycle count variance", createdBy,
	)
	require.NoError(t, err)
	require.NoError(t, NewGormAdjustmentRepository(db).Save(context.Background(), adj))
	return adj
}

func TestGormAdjustmentRepository_Save(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormAdjustmentRepository(db)
	ctx := context.Background()

	t.Run("round-trips an adjustment", func(t *testing.T) {
		creator := uuid.New()
		adj := createAdjustment(t, db, "ADJ-20260115-0001", uuid.New(), uuid.New(), inventory.AdjustmentTypeCountCorrection, -15, creator)

		found, err := repo.FindByAdjustmentNumber(ctx, "ADJ-20260115-0001")

		require.NoError(t, err)
		assert.Equal(t, adj.ID, found.ID)
		assert.Equal(t, inventory.AdjustmentStatusDraft, found.Status)
		assert.Equal(t, creator, found.CreatedBy)
		assert.True(t, found.QuantityChange.Equal(decimal.NewFromInt(-15)))
		assert.True(t, found.QuantityAfter.Equal(decimal.NewFromInt(85)))
	})

	t.Run("duplicate adjustment number is rejected", func(t *testing.T) {
		createAdjustment(t, db, "ADJ-20260115-0002", uuid.New(), uuid.New(), inventory.AdjustmentTypeFound, 5, uuid.New())

		duplicate, err := inventory.NewAdjustment(
			"ADJ-20260115-0002", uuid.New(), uuid.New(), inventory.AdjustmentTypeFound,
			decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.Zero,
			"misplaced pallet recovered", uuid.New(),
		)
		require.NoError(t, err)

		err = repo.Save(ctx, duplicate)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "DUPLICATE_ADJUSTMENT_NUMBER", domainErr.Code)
	})

	t.Run("unknown adjustment number is not found", func(t *testing.T) {
		_, err := repo.FindByAdjustmentNumber(ctx, "ADJ-MISSING")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("updates persist status transitions", func(t *testing.T) {
		adj := createAdjustment(t, db, "ADJ-20260115-0003", uuid.New(), uuid.New(), inventory.AdjustmentTypeTheft, -20, uuid.New())

		require.NoError(t, adj.SubmitForApproval())
		require.NoError(t, repo.Save(ctx, adj))

		found, err := repo.FindByID(ctx, adj.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.AdjustmentStatusPendingApproval, found.Status)
	})
}

func TestGormAdjustmentRepository_FindPendingApproval(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormAdjustmentRepository(db)
	ctx := context.Background()

	pending := createAdjustment(t, db, "ADJ-P-0001", uuid.New(), uuid.New(), inventory.AdjustmentTypeDamage, -200, uuid.New())
	require.NoError(t, pending.SubmitForApproval())
	require.NoError(t, repo.Save(ctx, pending))

	createAdjustment(t, db, "ADJ-P-0002", uuid.New(), uuid.New(), inventory.AdjustmentTypeFound, 5, uuid.New())

	found, err := repo.FindPendingApproval(ctx, shared.DefaultFilter())

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pending.ID, found[0].ID)
}

func TestGormAdjustmentRepository_FindAll(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormAdjustmentRepository(db)
	ctx := context.Background()

	creator := uuid.New()
	warehouseID := uuid.New()
	createAdjustment(t, db, "ADJ-F-0001", uuid.New(), warehouseID, inventory.AdjustmentTypeTheft, -10, creator)
	createAdjustment(t, db, "ADJ-F-0002", uuid.New(), warehouseID, inventory.AdjustmentTypeFound, 10, creator)
	createAdjustment(t, db, "ADJ-F-0003", uuid.New(), uuid.New(), inventory.AdjustmentTypeTheft, -10, uuid.New())

	t.Run("filters by creator", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{"created_by": creator.String()}

		found, err := repo.FindAll(ctx, filter)

		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by adjustment type and warehouse", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{
			"adjustment_type": string(inventory.AdjustmentTypeTheft),
			"warehouse_id":    warehouseID.String(),
		}

		found, err := repo.FindAll(ctx, filter)

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "ADJ-F-0001", found[0].AdjustmentNumber)
	})
}

func TestGormAdjustmentRepository_CountByStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormAdjustmentRepository(db)
	ctx := context.Background()

	createAdjustment(t, db, "ADJ-C-0001", uuid.New(), uuid.New(), inventory.AdjustmentTypeFound, 3, uuid.New())
	createAdjustment(t, db, "ADJ-C-0002", uuid.New(), uuid.New(), inventory.AdjustmentTypeFound, 4, uuid.New())

	pending := createAdjustment(t, db, "ADJ-C-0003", uuid.New(), uuid.New(), inventory.AdjustmentTypeLoss, -300, uuid.New())
	require.NoError(t, pending.SubmitForApproval())
	require.NoError(t, repo.Save(ctx, pending))

	drafts, err := repo.CountByStatus(ctx, inventory.AdjustmentStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, int64(2), drafts)

	pendingCount, err := repo.CountByStatus(ctx, inventory.AdjustmentStatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pendingCount)
}

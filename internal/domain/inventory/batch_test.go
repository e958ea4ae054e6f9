package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBatch(t *testing.T) *Batch {
	t.Helper()
	batch, err := NewBatch(
		"BATCH-20260115-0001",
		uuid.New(), uuid.New(),
		decimal.NewFromInt(100),
		decimal.RequireFromString("12.50"),
		nil, nil,
	)
	require.NoError(t, err)
	return batch
}

func TestNewBatch(t *testing.T) {
	t.Run("creates active batch with full quantity remaining", func(t *testing.T) {
		batch := createTestBatch(t)

		assert.Equal(t, "BATCH-20260115-0001", batch.BatchNumber)
		assert.Equal(t, BatchStatusActive, batch.Status)
		assert.Equal(t, decimal.NewFromInt(100), batch.InitialQuantity)
		assert.Equal(t, decimal.NewFromInt(100), batch.CurrentQuantity)
		assert.Equal(t, "12.5", batch.UnitCost.String())
	})

	t.Run("rejects empty batch number", func(t *testing.T) {
		_, err := NewBatch("", uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.Zero, nil, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Batch number")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewBatch("BATCH-1", uuid.New(), uuid.New(), decimal.Zero, decimal.Zero, nil, nil)

		require.Error(t, err)
	})

	t.Run("rejects negative unit cost", func(t *testing.T) {
		_, err := NewBatch("BATCH-1", uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(-1), nil, nil)

		require.Error(t, err)
	})

	t.Run("rejects expiry before production", func(t *testing.T) {
		production := time.Now()
		expiry := production.Add(-24 * time.Hour)

		_, err := NewBatch("BATCH-1", uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.Zero, &production, &expiry)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_EXPIRY", domainErr.Code)
	})

	t.Run("accepts production and expiry in order", func(t *testing.T) {
		production := time.Now()
		expiry := production.Add(30 * 24 * time.Hour)

		batch, err := NewBatch("BATCH-1", uuid.New(), uuid.New(), decimal.NewFromInt(10), decimal.Zero, &production, &expiry)

		require.NoError(t, err)
		assert.Equal(t, expiry, *batch.ExpiryDate)
	})
}

func TestBatch_DeductQuantity(t *testing.T) {
	t.Run("partial deduction stays active", func(t *testing.T) {
		batch := createTestBatch(t)

		deducted, err := batch.DeductQuantity(decimal.NewFromInt(40))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(40), deducted)
		assert.Equal(t, decimal.NewFromInt(60), batch.CurrentQuantity)
		assert.Equal(t, BatchStatusActive, batch.Status)
	})

	t.Run("exact deduction depletes the batch", func(t *testing.T) {
		batch := createTestBatch(t)

		deducted, err := batch.DeductQuantity(decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(100), deducted)
		assert.True(t, batch.CurrentQuantity.IsZero())
		assert.Equal(t, BatchStatusDepleted, batch.Status)
	})

	t.Run("over-deduction clamps at zero and reports actual", func(t *testing.T) {
		batch := createTestBatch(t)

		deducted, err := batch.DeductQuantity(decimal.NewFromInt(250))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(100), deducted)
		assert.True(t, batch.CurrentQuantity.IsZero())
		assert.Equal(t, BatchStatusDepleted, batch.Status)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		batch := createTestBatch(t)

		_, err := batch.DeductQuantity(decimal.Zero)

		require.Error(t, err)
		assert.Equal(t, decimal.NewFromInt(100), batch.CurrentQuantity)
	})
}

func TestBatch_MarkExpired(t *testing.T) {
	t.Run("marks active past-expiry batch", func(t *testing.T) {
		batch := createTestBatch(t)
		expiry := time.Now().Add(-time.Hour)
		batch.ExpiryDate = &expiry

		err := batch.MarkExpired(time.Now())

		require.NoError(t, err)
		assert.Equal(t, BatchStatusExpired, batch.Status)
		// Remaining quantity is untouched, write-offs are a separate step
		assert.Equal(t, decimal.NewFromInt(100), batch.CurrentQuantity)
	})

	t.Run("rejects batch whose expiry has not passed", func(t *testing.T) {
		batch := createTestBatch(t)
		expiry := time.Now().Add(time.Hour)
		batch.ExpiryDate = &expiry

		err := batch.MarkExpired(time.Now())

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "NOT_EXPIRED", domainErr.Code)
	})

	t.Run("rejects batch without expiry date", func(t *testing.T) {
		batch := createTestBatch(t)

		err := batch.MarkExpired(time.Now())

		require.Error(t, err)
	})

	t.Run("rejects non-active batch", func(t *testing.T) {
		batch := createTestBatch(t)
		_, err := batch.DeductQuantity(decimal.NewFromInt(100))
		require.NoError(t, err)
		expiry := time.Now().Add(-time.Hour)
		batch.ExpiryDate = &expiry

		err = batch.MarkExpired(time.Now())

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestBatch_IsExpired(t *testing.T) {
	batch := createTestBatch(t)
	now := time.Now()
	assert.False(t, batch.IsExpired(now))

	past := now.Add(-time.Minute)
	batch.ExpiryDate = &past
	assert.True(t, batch.IsExpired(now))

	future := now.Add(time.Minute)
	batch.ExpiryDate = &future
	assert.False(t, batch.IsExpired(now))
}

func TestBatch_RemainingValue(t *testing.T) {
	batch := createTestBatch(t)

	_, err := batch.DeductQuantity(decimal.NewFromInt(60))

	require.NoError(t, err)
	// 40 * 12.50 = 500.00
	assert.Equal(t, "500", batch.RemainingValue().String())
	assert.True(t, batch.HasStock())
}

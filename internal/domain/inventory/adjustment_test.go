package inventory

import (
	"errors"
	"testing"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAdjustment(t *testing.T, quantityChange decimal.Decimal) *Adjustment {
	t.Helper()
	adjustment, err := NewAdjustment(
		"ADJ-20260115-0001",
		uuid.New(), uuid.New(),
		AdjustmentTypeCountCorrection,
		quantityChange,
		decimal.NewFromInt(100),
		decimal.RequireFromString("4.20"),
		"cycle count variance",
		uuid.New(),
	)
	require.NoError(t, err)
	return adjustment
}

func TestNewAdjustment(t *testing.T) {
	t.Run("creates draft adjustment with derived fields", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-15))

		assert.Equal(t, AdjustmentStatusDraft, adjustment.Status)
		assert.Equal(t, decimal.NewFromInt(100), adjustment.QuantityBefore)
		assert.Equal(t, decimal.NewFromInt(85), adjustment.QuantityAfter)
		// |−15| * 4.20 = 63.00
		assert.Equal(t, "63", adjustment.TotalValueImpact.String())
		assert.Nil(t, adjustment.ApprovedBy)
		assert.Nil(t, adjustment.ApprovedAt)
	})

	t.Run("rejects zero quantity change", func(t *testing.T) {
		_, err := NewAdjustment(
			"ADJ-1", uuid.New(), uuid.New(),
			AdjustmentTypeCountCorrection,
			decimal.Zero, decimal.NewFromInt(100), decimal.Zero,
			"reason", uuid.New(),
		)

		require.Error(t, err)
	})

	t.Run("rejects empty reason", func(t *testing.T) {
		_, err := NewAdjustment(
			"ADJ-1", uuid.New(), uuid.New(),
			AdjustmentTypeCountCorrection,
			decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.Zero,
			"", uuid.New(),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason")
	})

	t.Run("rejects nil creator", func(t *testing.T) {
		_, err := NewAdjustment(
			"ADJ-1", uuid.New(), uuid.New(),
			AdjustmentTypeCountCorrection,
			decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.Zero,
			"reason", uuid.Nil,
		)

		require.Error(t, err)
	})

	t.Run("decrease-only types reject positive change", func(t *testing.T) {
		for _, adjustmentType := range []AdjustmentType{
			AdjustmentTypeLoss, AdjustmentTypeDrying, AdjustmentTypeDamage,
			AdjustmentTypeExpiry, AdjustmentTypeTheft,
		} {
			t.Run(string(adjustmentType), func(t *testing.T) {
				_, err := NewAdjustment(
					"ADJ-1", uuid.New(), uuid.New(),
					adjustmentType,
					decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.Zero,
					"reason", uuid.New(),
				)

				require.Error(t, err)
				assert.Contains(t, err.Error(), "decrease")
			})
		}
	})

	t.Run("found stock may increase", func(t *testing.T) {
		adjustment, err := NewAdjustment(
			"ADJ-1", uuid.New(), uuid.New(),
			AdjustmentTypeFound,
			decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.Zero,
			"found in receiving area", uuid.New(),
		)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(105), adjustment.QuantityAfter)
		assert.False(t, adjustment.IsDecrease())
	})
}

func TestAdjustment_MovementType(t *testing.T) {
	decrease := createTestAdjustment(t, decimal.NewFromInt(-10))
	increase := createTestAdjustment(t, decimal.NewFromInt(10))

	assert.Equal(t, MovementTypeAdjustmentOut, decrease.MovementType())
	assert.Equal(t, MovementTypeAdjustmentIn, increase.MovementType())
}

func TestAdjustmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    AdjustmentStatus
		to      AdjustmentStatus
		allowed bool
	}{
		{AdjustmentStatusDraft, AdjustmentStatusPendingApproval, true},
		{AdjustmentStatusDraft, AdjustmentStatusApproved, true},
		{AdjustmentStatusDraft, AdjustmentStatusRejected, false},
		{AdjustmentStatusPendingApproval, AdjustmentStatusApproved, true},
		{AdjustmentStatusPendingApproval, AdjustmentStatusRejected, true},
		{AdjustmentStatusPendingApproval, AdjustmentStatusDraft, false},
		{AdjustmentStatusApproved, AdjustmentStatusRejected, false},
		{AdjustmentStatusApproved, AdjustmentStatusPendingApproval, false},
		{AdjustmentStatusRejected, AdjustmentStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAdjustment_SubmitForApproval(t *testing.T) {
	t.Run("moves draft to pending", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))

		err := adjustment.SubmitForApproval()

		require.NoError(t, err)
		assert.Equal(t, AdjustmentStatusPendingApproval, adjustment.Status)
	})

	t.Run("rejects double submission", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())

		err := adjustment.SubmitForApproval()

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})
}

func TestAdjustment_AutoApprove(t *testing.T) {
	t.Run("stamps creator as approver", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(5))

		err := adjustment.AutoApprove()

		require.NoError(t, err)
		assert.Equal(t, AdjustmentStatusApproved, adjustment.Status)
		require.NotNil(t, adjustment.ApprovedBy)
		assert.Equal(t, adjustment.CreatedBy, *adjustment.ApprovedBy)
		assert.NotNil(t, adjustment.ApprovedAt)
	})

	t.Run("only valid from draft", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(5))
		require.NoError(t, adjustment.SubmitForApproval())

		err := adjustment.AutoApprove()

		require.Error(t, err)
	})
}

func TestAdjustment_Approve(t *testing.T) {
	t.Run("approves pending adjustment", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())
		approverID := uuid.New()

		err := adjustment.Approve(approverID, "verified against camera footage")

		require.NoError(t, err)
		assert.Equal(t, AdjustmentStatusApproved, adjustment.Status)
		require.NotNil(t, adjustment.ApprovedBy)
		assert.Equal(t, approverID, *adjustment.ApprovedBy)
		assert.Equal(t, "verified against camera footage", adjustment.ApprovalNotes)
	})

	t.Run("rejects self-approval", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())

		err := adjustment.Approve(adjustment.CreatedBy, "")

		require.Error(t, err)
		var sepErr *RoleSeparationError
		require.True(t, errors.As(err, &sepErr))
		assert.Equal(t, adjustment.AdjustmentNumber, sepErr.AdjustmentNumber)
		assert.Equal(t, AdjustmentStatusPendingApproval, adjustment.Status)
	})

	t.Run("rejects nil approver", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())

		err := adjustment.Approve(uuid.Nil, "")

		require.Error(t, err)
	})

	t.Run("rejects approval outside pending", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))

		err := adjustment.Approve(uuid.New(), "")

		require.Error(t, err)
	})
}

func TestAdjustment_Reject(t *testing.T) {
	t.Run("rejects pending adjustment", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())
		approverID := uuid.New()

		err := adjustment.Reject(approverID, "no evidence of loss")

		require.NoError(t, err)
		assert.Equal(t, AdjustmentStatusRejected, adjustment.Status)
		require.NotNil(t, adjustment.ApprovedBy)
		assert.Equal(t, approverID, *adjustment.ApprovedBy)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))
		require.NoError(t, adjustment.SubmitForApproval())
		require.NoError(t, adjustment.Reject(uuid.New(), ""))

		assert.Error(t, adjustment.Approve(uuid.New(), ""))
		assert.Error(t, adjustment.SubmitForApproval())
	})

	t.Run("only valid from pending", func(t *testing.T) {
		adjustment := createTestAdjustment(t, decimal.NewFromInt(-500))

		err := adjustment.Reject(uuid.New(), "")

		require.Error(t, err)
	})
}

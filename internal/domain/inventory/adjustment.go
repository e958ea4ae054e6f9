package inventory

import (
	"fmt"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType categorizes an out-of-band stock correction
type AdjustmentType string

const (
	AdjustmentTypeLoss            AdjustmentType = "LOSS"
	AdjustmentTypeDrying          AdjustmentType = "DRYING"
	AdjustmentTypeDamage          AdjustmentType = "DAMAGE"
	AdjustmentTypeExpiry          AdjustmentType = "EXPIRY"
	AdjustmentTypeCountCorrection AdjustmentType = "COUNT_CORRECTION"
	AdjustmentTypeTheft           AdjustmentType = "THEFT"
	AdjustmentTypeFound           AdjustmentType = "FOUND"
	AdjustmentTypeOther           AdjustmentType = "OTHER"
)

// IsValid returns true if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeLoss, AdjustmentTypeDrying, AdjustmentTypeDamage,
		AdjustmentTypeExpiry, AdjustmentTypeCountCorrection, AdjustmentTypeTheft,
		AdjustmentTypeFound, AdjustmentTypeOther:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// IsDecreaseOnly returns true for adjustment types that can only remove stock.
// Count corrections and found stock may go either way.
func (t AdjustmentType) IsDecreaseOnly() bool {
	switch t {
	case AdjustmentTypeLoss, AdjustmentTypeDrying, AdjustmentTypeDamage,
		AdjustmentTypeExpiry, AdjustmentTypeTheft:
		return true
	}
	return false
}

// AdjustmentStatus represents the approval state of an adjustment
type AdjustmentStatus string

const (
	AdjustmentStatusDraft           AdjustmentStatus = "DRAFT"
	AdjustmentStatusPendingApproval AdjustmentStatus = "PENDING_APPROVAL"
	AdjustmentStatusApproved        AdjustmentStatus = "APPROVED"
	AdjustmentStatusRejected        AdjustmentStatus = "REJECTED"
)

// IsValid returns true if the status is a valid AdjustmentStatus
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentStatusDraft, AdjustmentStatusPendingApproval,
		AdjustmentStatusApproved, AdjustmentStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentStatus
func (s AdjustmentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Small adjustments move DRAFT -> APPROVED directly; everything else goes
// through PENDING_APPROVAL. APPROVED and REJECTED are terminal.
func (s AdjustmentStatus) CanTransitionTo(target AdjustmentStatus) bool {
	switch s {
	case AdjustmentStatusDraft:
		return target == AdjustmentStatusPendingApproval || target == AdjustmentStatusApproved
	case AdjustmentStatusPendingApproval:
		return target == AdjustmentStatusApproved || target == AdjustmentStatusRejected
	case AdjustmentStatusApproved, AdjustmentStatusRejected:
		return false
	}
	return false
}

// Adjustment is a proposed out-of-band correction to an InventoryRecord. It
// only touches stock once approved: approval produces exactly one ledger
// entry through the same mutation path as regular stock operations.
type Adjustment struct {
	shared.BaseEntity
	AdjustmentNumber string           `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_adjustment_product_warehouse,priority:1"`
	WarehouseID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_adjustment_product_warehouse,priority:2"`
	BatchID          *uuid.UUID       `gorm:"type:uuid"`
	AdjustmentType   AdjustmentType   `gorm:"type:varchar(30);not null"`
	QuantityChange   decimal.Decimal  `gorm:"type:decimal(18,3);not null"` // Signed; sign determines direction
	QuantityBefore   decimal.Decimal  `gorm:"type:decimal(18,3);not null"`
	QuantityAfter    decimal.Decimal  `gorm:"type:decimal(18,3);not null"`
	UnitCost         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TotalValueImpact decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"` // |QuantityChange| * UnitCost
	Reason           string           `gorm:"type:varchar(255);not null"`
	Status           AdjustmentStatus `gorm:"type:varchar(30);not null;index"`
	CreatedBy        uuid.UUID        `gorm:"type:uuid;not null"`
	ApprovedBy       *uuid.UUID       `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	ApprovalNotes    string           `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Adjustment) TableName() string {
	return "inventory_adjustments"
}

// NewAdjustment creates an adjustment in DRAFT status
func NewAdjustment(
	adjustmentNumber string,
	productID, warehouseID uuid.UUID,
	adjustmentType AdjustmentType,
	quantityChange decimal.Decimal,
	quantityBefore decimal.Decimal,
	unitCost decimal.Decimal,
	reason string,
	createdBy uuid.UUID,
) (*Adjustment, error) {
	if adjustmentNumber == "" {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_NUMBER", "Adjustment number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !adjustmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Invalid adjustment type")
	}
	if quantityChange.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if adjustmentType.IsDecreaseOnly() && quantityChange.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Adjustment type %s can only decrease stock", adjustmentType))
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &Adjustment{
		BaseEntity:       shared.NewBaseEntity(),
		AdjustmentNumber: adjustmentNumber,
		ProductID:        productID,
		WarehouseID:      warehouseID,
		AdjustmentType:   adjustmentType,
		QuantityChange:   quantityChange,
		QuantityBefore:   quantityBefore,
		QuantityAfter:    quantityBefore.Add(quantityChange),
		UnitCost:         unitCost.Round(CurrencyPrecision),
		TotalValueImpact: quantityChange.Abs().Mul(unitCost).Round(CurrencyPrecision),
		Reason:           reason,
		Status:           AdjustmentStatusDraft,
		CreatedBy:        createdBy,
	}, nil
}

// WithBatchID sets the related batch
func (a *Adjustment) WithBatchID(batchID uuid.UUID) *Adjustment {
	a.BatchID = &batchID
	return a
}

// IsDecrease returns true if this adjustment removes stock
func (a *Adjustment) IsDecrease() bool {
	return a.QuantityChange.IsNegative()
}

// MovementType returns the ledger movement type this adjustment produces when applied
func (a *Adjustment) MovementType() MovementType {
	if a.IsDecrease() {
		return MovementTypeAdjustmentOut
	}
	return MovementTypeAdjustmentIn
}

// SubmitForApproval transitions the adjustment to PENDING_APPROVAL
func (a *Adjustment) SubmitForApproval() error {
	if !a.Status.CanTransitionTo(AdjustmentStatusPendingApproval) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition from %s to %s", a.Status, AdjustmentStatusPendingApproval))
	}
	a.Status = AdjustmentStatusPendingApproval
	a.UpdatedAt = time.Now()
	return nil
}

// AutoApprove approves a below-threshold adjustment at creation time, stamping
// the creator as approver. Only valid straight out of DRAFT.
func (a *Adjustment) AutoApprove() error {
	if a.Status != AdjustmentStatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot auto-approve adjustment in status %s", a.Status))
	}
	now := time.Now()
	approver := a.CreatedBy
	a.Status = AdjustmentStatusApproved
	a.ApprovedBy = &approver
	a.ApprovedAt = &now
	a.UpdatedAt = now
	return nil
}

// Approve transitions a pending adjustment to APPROVED. The approver must
// differ from the creator; self-approval is rejected regardless of
// permissions.
func (a *Adjustment) Approve(approverID uuid.UUID, notes string) error {
	if a.Status != AdjustmentStatusPendingApproval {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot approve adjustment in status %s", a.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if approverID == a.CreatedBy {
		return NewRoleSeparationError(a.AdjustmentNumber, approverID)
	}

	now := time.Now()
	a.Status = AdjustmentStatusApproved
	a.ApprovedBy = &approverID
	a.ApprovedAt = &now
	a.ApprovalNotes = notes
	a.UpdatedAt = now
	return nil
}

// Reject transitions a pending adjustment to REJECTED. Terminal; no stock
// mutation ever results from a rejected adjustment.
func (a *Adjustment) Reject(approverID uuid.UUID, notes string) error {
	if a.Status != AdjustmentStatusPendingApproval {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot reject adjustment in status %s", a.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	a.Status = AdjustmentStatusRejected
	a.ApprovedBy = &approverID
	a.ApprovedAt = &now
	a.ApprovalNotes = notes
	a.UpdatedAt = now
	return nil
}

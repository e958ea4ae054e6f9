package inventory

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementTypeStockIn represents stock entering a warehouse (purchase receiving, production output)
	MovementTypeStockIn MovementType = "STOCK_IN"
	// MovementTypeStockOut represents stock leaving a warehouse (sales fulfillment, production consumption)
	MovementTypeStockOut MovementType = "STOCK_OUT"
	// MovementTypeTransferOut represents the source leg of a warehouse transfer
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeTransferIn represents the destination leg of a warehouse transfer
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
	// MovementTypeAdjustmentIn represents an approved adjustment increasing stock
	MovementTypeAdjustmentIn MovementType = "ADJUSTMENT_IN"
	// MovementTypeAdjustmentOut represents an approved adjustment decreasing stock
	MovementTypeAdjustmentOut MovementType = "ADJUSTMENT_OUT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeStockIn,
		MovementTypeStockOut,
		MovementTypeTransferOut,
		MovementTypeTransferIn,
		MovementTypeAdjustmentIn,
		MovementTypeAdjustmentOut:
		return true
	}
	return false
}

// IsInbound returns true if this movement type increases on-hand quantity
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementTypeStockIn, MovementTypeTransferIn, MovementTypeAdjustmentIn:
		return true
	}
	return false
}

// IsOutbound returns true if this movement type decreases on-hand quantity
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementTypeStockOut, MovementTypeTransferOut, MovementTypeAdjustmentOut:
		return true
	}
	return false
}

// IsTransfer returns true for either leg of a warehouse transfer
func (t MovementType) IsTransfer() bool {
	return t == MovementTypeTransferOut || t == MovementTypeTransferIn
}

// DocumentKind identifies the kind of business document that caused a movement.
// A closed enum is used instead of free-form type names so that ledger entries
// stay traceable without untyped coupling to other subsystems.
type DocumentKind string

const (
	DocumentKindSalesOrder     DocumentKind = "SALES_ORDER"
	DocumentKindPurchaseOrder  DocumentKind = "PURCHASE_ORDER"
	DocumentKindProductionRun  DocumentKind = "PRODUCTION_RUN"
	DocumentKindSalesReturn    DocumentKind = "SALES_RETURN"
	DocumentKindPurchaseReturn DocumentKind = "PURCHASE_RETURN"
	DocumentKindStockTransfer  DocumentKind = "STOCK_TRANSFER"
	DocumentKindAdjustment     DocumentKind = "ADJUSTMENT"
)

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// IsValid returns true if the document kind is valid
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindSalesOrder,
		DocumentKindPurchaseOrder,
		DocumentKindProductionRun,
		DocumentKindSalesReturn,
		DocumentKindPurchaseReturn,
		DocumentKindStockTransfer,
		DocumentKindAdjustment:
		return true
	}
	return false
}

// DocumentRef points a ledger entry at the business document that caused it.
type DocumentRef struct {
	Kind DocumentKind
	ID   string
}

// NewDocumentRef creates a new document reference
func NewDocumentRef(kind DocumentKind, id string) DocumentRef {
	return DocumentRef{Kind: kind, ID: id}
}

// IsZero returns true if the reference is empty
func (r DocumentRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reference number prefixes by operation
const (
	RefPrefixStockIn    = "IN"
	RefPrefixStockOut   = "OUT"
	RefPrefixTransfer   = "TRF"
	RefPrefixAdjustment = "ADJ"
)

// ReferenceGenerator produces unique, human-readable document numbers
type ReferenceGenerator interface {
	// Generate returns the next reference number for the given prefix
	Generate(ctx context.Context, prefix string) (string, error)
}

// PermissionChecker answers authorization questions about acting users.
// Identity management lives outside this module; the service only consumes it.
type PermissionChecker interface {
	// CanApproveAdjustments reports whether the user may approve or reject adjustments
	CanApproveAdjustments(ctx context.Context, userID uuid.UUID) (bool, error)
}

// NameResolver resolves product and warehouse display names for error messages.
// Implementations should return an empty string when the name is unknown.
type NameResolver interface {
	ProductName(ctx context.Context, productID uuid.UUID) string
	WarehouseName(ctx context.Context, warehouseID uuid.UUID) string
}

// Config holds business-rule settings injected at construction
type Config struct {
	// ApprovalThreshold is the absolute quantity change at or above which an
	// adjustment requires a second user's approval
	ApprovalThreshold decimal.Decimal
}

// InventoryService handles all stock mutations and ledger queries. It is the
// only component that writes inventory records, movements, batches and
// adjustments; every mutation runs inside a single database transaction with
// row locks on the affected records.
type InventoryService struct {
	recordRepo     inventory.InventoryRecordRepository
	movementRepo   inventory.StockMovementRepository
	batchRepo      inventory.BatchRepository
	adjustmentRepo inventory.AdjustmentRepository
	scope          TransactionScope
	refGen         ReferenceGenerator
	permissions    PermissionChecker
	names          NameResolver
	config         Config
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	recordRepo inventory.InventoryRecordRepository,
	movementRepo inventory.StockMovementRepository,
	batchRepo inventory.BatchRepository,
	adjustmentRepo inventory.AdjustmentRepository,
	refGen ReferenceGenerator,
	config Config,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		recordRepo:     recordRepo,
		movementRepo:   movementRepo,
		batchRepo:      batchRepo,
		adjustmentRepo: adjustmentRepo,
		scope:          scope,
		refGen:         refGen,
		config:         config,
		logger:         logger,
	}
}

// SetPermissionChecker sets the authorization collaborator (optional)
func (s *InventoryService) SetPermissionChecker(checker PermissionChecker) {
	s.permissions = checker
}

// SetNameResolver sets the display-name collaborator (optional)
func (s *InventoryService) SetNameResolver(resolver NameResolver) {
	s.names = resolver
}

// enrichStockError fills product and warehouse display names into an
// insufficient-stock error when a resolver is available
func (s *InventoryService) enrichStockError(ctx context.Context, err error) error {
	var stockErr *inventory.InsufficientStockError
	if s.names != nil && errors.As(err, &stockErr) {
		stockErr.ProductName = s.names.ProductName(ctx, stockErr.ProductID)
		stockErr.WarehouseName = s.names.WarehouseName(ctx, stockErr.WarehouseID)
	}
	return err
}

// GetStockLevel returns the inventory record for a product-warehouse pair.
// A pair that has never been touched reads as a zero record with Exists
// false, so callers can tell depleted stock from never-stocked.
func (s *InventoryService) GetStockLevel(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryRecordResponse, error) {
	record, err := s.recordRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &InventoryRecordResponse{
				ProductID:         productID,
				WarehouseID:       warehouseID,
				Quantity:          decimal.Zero,
				ReservedQuantity:  decimal.Zero,
				AvailableQuantity: decimal.Zero,
				Exists:            false,
			}, nil
		}
		return nil, err
	}
	response := ToInventoryRecordResponse(record)
	return &response, nil
}

// GetTotalStock returns total on-hand quantity for a product across all warehouses
func (s *InventoryService) GetTotalStock(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	return s.recordRepo.SumQuantityByProduct(ctx, productID)
}

// GetAvailableStock returns available quantity for a product. When warehouseID
// is non-nil, only that warehouse is considered.
func (s *InventoryService) GetAvailableStock(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	if warehouseID == nil {
		return s.recordRepo.SumAvailableByProduct(ctx, productID)
	}
	record, err := s.recordRepo.FindByProductAndWarehouse(ctx, productID, *warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return record.AvailableQuantity(), nil
}

// GetProductStockSummary returns aggregate quantities for a product across
// all warehouses
func (s *InventoryService) GetProductStockSummary(ctx context.Context, productID uuid.UUID) (*ProductStockSummaryResponse, error) {
	total, err := s.recordRepo.SumQuantityByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	available, err := s.recordRepo.SumAvailableByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	filter := shared.DefaultFilter()
	filter.Filters["product_id"] = productID
	filter.Filters["has_stock"] = true
	stocked, err := s.recordRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductStockSummaryResponse{
		ProductID:         productID,
		TotalQuantity:     total,
		TotalAvailable:    available,
		WarehousesStocked: stocked,
	}, nil
}

// ListRecords retrieves inventory records with filtering and pagination
func (s *InventoryService) ListRecords(ctx context.Context, filter RecordListFilter) ([]InventoryRecordResponse, int64, error) {
	domainFilter := buildRecordFilter(filter)

	records, err := s.recordRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInventoryRecordResponses(records), total, nil
}

// AddStock increases on-hand quantity for a product-warehouse pair, creating
// the record on first touch, and appends one stock-in ledger entry.
func (s *InventoryService) AddStock(ctx context.Context, req AddStockRequest) (*StockMovementResponse, error) {
	docRef, err := parseDocumentRef(req.DocumentKind, req.DocumentID)
	if err != nil {
		return nil, err
	}

	var response StockMovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().GetOrCreateForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		quantityBefore := record.Quantity
		if err := record.AddQuantity(req.Quantity, req.ActorID); err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		movement, err := s.appendMovement(ctx, repos, movementParams{
			prefix:         RefPrefixStockIn,
			productID:      req.ProductID,
			warehouseID:    req.WarehouseID,
			movementType:   inventory.MovementTypeStockIn,
			quantity:       req.Quantity,
			quantityBefore: quantityBefore,
			quantityAfter:  record.Quantity,
			unitCost:       req.UnitCost,
			batchID:        req.BatchID,
			reason:         req.Reason,
			docRef:         docRef,
			actorID:        req.ActorID,
		})
		if err != nil {
			return err
		}

		response = ToStockMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock added",
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("reference", response.ReferenceNumber))
	return &response, nil
}

// DeductStock decreases on-hand quantity for a product-warehouse pair and
// appends one stock-out ledger entry. A missing record is NOT_FOUND; an
// over-deduction fails with an insufficient-stock error and leaves no trace.
func (s *InventoryService) DeductStock(ctx context.Context, req DeductStockRequest) (*StockMovementResponse, error) {
	docRef, err := parseDocumentRef(req.DocumentKind, req.DocumentID)
	if err != nil {
		return nil, err
	}

	var response StockMovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		quantityBefore := record.Quantity
		if err := record.DeductQuantity(req.Quantity, false, req.ActorID); err != nil {
			return s.enrichStockError(ctx, err)
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		if req.BatchID != nil {
			if err := s.depleteBatch(ctx, repos, *req.BatchID, req.ProductID, req.WarehouseID, req.Quantity); err != nil {
				return err
			}
		}

		movement, err := s.appendMovement(ctx, repos, movementParams{
			prefix:         RefPrefixStockOut,
			productID:      req.ProductID,
			warehouseID:    req.WarehouseID,
			movementType:   inventory.MovementTypeStockOut,
			quantity:       req.Quantity,
			quantityBefore: quantityBefore,
			quantityAfter:  record.Quantity,
			unitCost:       req.UnitCost,
			batchID:        req.BatchID,
			reason:         req.Reason,
			docRef:         docRef,
			actorID:        req.ActorID,
		})
		if err != nil {
			return err
		}

		response = ToStockMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock deducted",
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("reference", response.ReferenceNumber))
	return &response, nil
}

// TransferStock moves stock between two warehouses atomically. It produces a
// transfer-out entry at the source and a transfer-in entry at the destination,
// then links both legs with the counterpart warehouse ids. Any failure rolls
// back both sides.
func (s *InventoryService) TransferStock(ctx context.Context, req TransferStockRequest) (*TransferResponse, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, shared.NewDomainError("SAME_WAREHOUSE", "Source and destination warehouse must differ")
	}

	docRef := inventory.DocumentRef{}
	if req.DocumentID != "" {
		docRef = inventory.NewDocumentRef(inventory.DocumentKindStockTransfer, req.DocumentID)
	}

	var response TransferResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.FromWarehouseID)
		if err != nil {
			return err
		}

		sourceBefore := source.Quantity
		if err := source.DeductQuantity(req.Quantity, false, req.ActorID); err != nil {
			return s.enrichStockError(ctx, err)
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, source); err != nil {
			return err
		}

		dest, err := repos.RecordRepo().GetOrCreateForUpdate(ctx, req.ProductID, req.ToWarehouseID)
		if err != nil {
			return err
		}
		destBefore := dest.Quantity
		if err := dest.AddQuantity(req.Quantity, req.ActorID); err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, dest); err != nil {
			return err
		}

		outMovement, err := s.appendMovement(ctx, repos, movementParams{
			prefix:         RefPrefixTransfer,
			productID:      req.ProductID,
			warehouseID:    req.FromWarehouseID,
			movementType:   inventory.MovementTypeTransferOut,
			quantity:       req.Quantity,
			quantityBefore: sourceBefore,
			quantityAfter:  source.Quantity,
			unitCost:       req.UnitCost,
			reason:         req.Reason,
			docRef:         docRef,
			actorID:        req.ActorID,
		})
		if err != nil {
			return err
		}

		inMovement, err := s.appendMovement(ctx, repos, movementParams{
			prefix:         RefPrefixTransfer,
			productID:      req.ProductID,
			warehouseID:    req.ToWarehouseID,
			movementType:   inventory.MovementTypeTransferIn,
			quantity:       req.Quantity,
			quantityBefore: destBefore,
			quantityAfter:  dest.Quantity,
			unitCost:       req.UnitCost,
			reason:         req.Reason,
			docRef:         docRef,
			actorID:        req.ActorID,
		})
		if err != nil {
			return err
		}

		// Backfill both legs with the counterpart warehouses
		if err := repos.MovementRepo().AnnotateTransferWarehouses(ctx,
			outMovement.ID, inMovement.ID, req.FromWarehouseID, req.ToWarehouseID); err != nil {
			return err
		}
		outMovement.FromWarehouseID = &req.FromWarehouseID
		outMovement.ToWarehouseID = &req.ToWarehouseID
		inMovement.FromWarehouseID = &req.FromWarehouseID
		inMovement.ToWarehouseID = &req.ToWarehouseID

		response = TransferResponse{
			OutMovement: ToStockMovementResponse(outMovement),
			InMovement:  ToStockMovementResponse(inMovement),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("product_id", req.ProductID.String()),
		zap.String("from_warehouse_id", req.FromWarehouseID.String()),
		zap.String("to_warehouse_id", req.ToWarehouseID.String()),
		zap.String("quantity", req.Quantity.String()))
	return &response, nil
}

// ReserveStock earmarks available quantity without moving it. Reservations do
// not write ledger entries.
func (s *InventoryService) ReserveStock(ctx context.Context, req ReserveStockRequest) (*InventoryRecordResponse, error) {
	var response InventoryRecordResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return s.enrichStockError(ctx,
					inventory.NewInsufficientStockError(req.ProductID, req.WarehouseID, req.Quantity, decimal.Zero))
			}
			return err
		}

		if err := record.Reserve(req.Quantity, req.ActorID); err != nil {
			return s.enrichStockError(ctx, err)
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		response = ToInventoryRecordResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock reserved",
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("quantity", req.Quantity.String()))
	return &response, nil
}

// ReleaseReservation returns reserved quantity to available. Releasing more
// than is reserved clamps at zero; the excess is logged, not an error.
func (s *InventoryService) ReleaseReservation(ctx context.Context, req ReleaseReservationRequest) (*InventoryRecordResponse, error) {
	var response InventoryRecordResponse
	var excess decimal.Decimal
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		excess, err = record.Release(req.Quantity, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		response = ToInventoryRecordResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if excess.IsPositive() {
		s.logger.Warn("release exceeded reserved quantity, clamped at zero",
			zap.String("product_id", req.ProductID.String()),
			zap.String("warehouse_id", req.WarehouseID.String()),
			zap.String("requested", req.Quantity.String()),
			zap.String("excess", excess.String()))
	}
	return &response, nil
}

// CreateBatch registers a new lot and adds its quantity to stock in one
// transaction, appending a stock-in ledger entry that names the batch.
func (s *InventoryService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	docRef, err := parseDocumentRef(req.DocumentKind, req.DocumentID)
	if err != nil {
		return nil, err
	}

	var response BatchResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.BatchRepo().FindByBatchNumber(ctx, req.ProductID, req.WarehouseID, req.BatchNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("BATCH_EXISTS", "Batch number already exists for this product and warehouse")
		}

		batch, err := inventory.NewBatch(
			req.BatchNumber, req.ProductID, req.WarehouseID,
			req.Quantity, req.UnitCost, req.ProductionDate, req.ExpiryDate,
		)
		if err != nil {
			return err
		}
		if !docRef.IsZero() {
			batch.WithSource(docRef)
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}

		record, err := repos.RecordRepo().GetOrCreateForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		quantityBefore := record.Quantity
		if err := record.AddQuantity(req.Quantity, req.ActorID); err != nil {
			return err
		}
		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		if _, err := s.appendMovement(ctx, repos, movementParams{
			prefix:         RefPrefixStockIn,
			productID:      req.ProductID,
			warehouseID:    req.WarehouseID,
			movementType:   inventory.MovementTypeStockIn,
			quantity:       req.Quantity,
			quantityBefore: quantityBefore,
			quantityAfter:  record.Quantity,
			unitCost:       req.UnitCost,
			batchID:        &batch.ID,
			docRef:         docRef,
			actorID:        req.ActorID,
		}); err != nil {
			return err
		}

		response = ToBatchResponse(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch created",
		zap.String("batch_number", req.BatchNumber),
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("quantity", req.Quantity.String()))
	return &response, nil
}

// ExpireBatches marks active batches whose expiry date has passed as expired.
// Quantities are untouched; stock corrections go through adjustments. Returns
// the number of batches marked.
func (s *InventoryService) ExpireBatches(ctx context.Context, asOf time.Time) (int, error) {
	batches, err := s.batchRepo.FindExpired(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range batches {
		batch := &batches[i]
		if err := batch.MarkExpired(asOf); err != nil {
			continue
		}
		if err := s.batchRepo.Save(ctx, batch); err != nil {
			return marked, err
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("batches marked expired", zap.Int("count", marked))
	}
	return marked, nil
}

// CreateAdjustment creates a stock correction. Changes below the approval
// threshold apply immediately with the creator stamped as approver; changes at
// or above it wait in pending_approval and touch no stock until approved.
func (s *InventoryService) CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest) (*AdjustmentResponse, error) {
	adjustmentType := inventory.AdjustmentType(req.AdjustmentType)
	if !adjustmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Invalid adjustment type")
	}

	var response AdjustmentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		// Decreases may not take a warehouse negative
		if req.QuantityChange.IsNegative() && record.Quantity.LessThan(req.QuantityChange.Abs()) {
			return s.enrichStockError(ctx,
				inventory.NewInsufficientStockError(req.ProductID, req.WarehouseID, req.QuantityChange.Abs(), record.Quantity))
		}

		number, err := s.refGen.Generate(ctx, RefPrefixAdjustment)
		if err != nil {
			return err
		}

		adjustment, err := inventory.NewAdjustment(
			number, req.ProductID, req.WarehouseID,
			adjustmentType, req.QuantityChange, record.Quantity,
			req.UnitCost, req.Reason, req.ActorID,
		)
		if err != nil {
			return err
		}
		if req.BatchID != nil {
			adjustment.WithBatchID(*req.BatchID)
		}

		if req.QuantityChange.Abs().GreaterThanOrEqual(s.config.ApprovalThreshold) {
			if err := adjustment.SubmitForApproval(); err != nil {
				return err
			}
		} else {
			if err := adjustment.AutoApprove(); err != nil {
				return err
			}
			if err := s.applyAdjustment(ctx, repos, adjustment, record, req.ActorID); err != nil {
				return err
			}
		}

		if err := repos.AdjustmentRepo().Save(ctx, adjustment); err != nil {
			return err
		}

		response = ToAdjustmentResponse(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("adjustment created",
		zap.String("adjustment_number", response.AdjustmentNumber),
		zap.String("type", response.AdjustmentType),
		zap.String("quantity_change", response.QuantityChange.String()),
		zap.String("status", response.Status))
	return &response, nil
}

// ApproveAdjustment approves a pending adjustment and applies it to stock.
// The approver must hold the approval permission and must not be the creator.
func (s *InventoryService) ApproveAdjustment(ctx context.Context, adjustmentID uuid.UUID, req ApproveAdjustmentRequest) (*AdjustmentResponse, error) {
	if err := s.checkApprovalPermission(ctx, req.ApproverID); err != nil {
		return nil, err
	}

	var response AdjustmentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Row lock on the adjustment: a concurrent decider blocks here and
		// then sees the committed status, so an adjustment applies once
		adjustment, err := repos.AdjustmentRepo().FindByIDForUpdate(ctx, adjustmentID)
		if err != nil {
			return err
		}

		record, err := repos.RecordRepo().FindByProductAndWarehouseForUpdate(ctx, adjustment.ProductID, adjustment.WarehouseID)
		if err != nil {
			return err
		}

		if err := adjustment.Approve(req.ApproverID, req.Notes); err != nil {
			return err
		}

		// Stock may have moved since creation; restate the balances at apply time
		adjustment.QuantityBefore = record.Quantity
		adjustment.QuantityAfter = record.Quantity.Add(adjustment.QuantityChange)

		if err := s.applyAdjustment(ctx, repos, adjustment, record, req.ApproverID); err != nil {
			return err
		}
		if err := repos.AdjustmentRepo().Save(ctx, adjustment); err != nil {
			return err
		}

		response = ToAdjustmentResponse(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("adjustment approved",
		zap.String("adjustment_number", response.AdjustmentNumber),
		zap.String("approver_id", req.ApproverID.String()))
	return &response, nil
}

// RejectAdjustment rejects a pending adjustment. Terminal; no stock mutation.
func (s *InventoryService) RejectAdjustment(ctx context.Context, adjustmentID uuid.UUID, req RejectAdjustmentRequest) (*AdjustmentResponse, error) {
	if err := s.checkApprovalPermission(ctx, req.ApproverID); err != nil {
		return nil, err
	}

	var response AdjustmentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		adjustment, err := repos.AdjustmentRepo().FindByIDForUpdate(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if err := adjustment.Reject(req.ApproverID, req.Notes); err != nil {
			return err
		}
		if err := repos.AdjustmentRepo().Save(ctx, adjustment); err != nil {
			return err
		}
		response = ToAdjustmentResponse(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("adjustment rejected",
		zap.String("adjustment_number", response.AdjustmentNumber),
		zap.String("approver_id", req.ApproverID.String()))
	return &response, nil
}

// applyAdjustment mutates the locked record and appends the single ledger
// entry for an approved adjustment. Decreases bypass the available-quantity
// check: the adjustment records what already happened in the warehouse.
// actorID is the user applying the adjustment, the approver when applied
// through approval and the creator on the auto-approve path.
func (s *InventoryService) applyAdjustment(ctx context.Context, repos TransactionalRepositories, adjustment *inventory.Adjustment, record *inventory.InventoryRecord, actorID uuid.UUID) error {
	quantityBefore := record.Quantity
	magnitude := adjustment.QuantityChange.Abs()

	if adjustment.IsDecrease() {
		if err := record.DeductQuantity(magnitude, true, actorID); err != nil {
			return err
		}
	} else {
		if err := record.AddQuantity(magnitude, actorID); err != nil {
			return err
		}
	}
	if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
		return err
	}

	if adjustment.BatchID != nil && adjustment.IsDecrease() {
		if err := s.depleteBatch(ctx, repos, *adjustment.BatchID, adjustment.ProductID, adjustment.WarehouseID, magnitude); err != nil {
			return err
		}
	}

	_, err := s.appendMovement(ctx, repos, movementParams{
		prefix:         RefPrefixAdjustment,
		productID:      adjustment.ProductID,
		warehouseID:    adjustment.WarehouseID,
		movementType:   adjustment.MovementType(),
		quantity:       magnitude,
		quantityBefore: quantityBefore,
		quantityAfter:  record.Quantity,
		unitCost:       adjustment.UnitCost,
		batchID:        adjustment.BatchID,
		reason:         adjustment.Reason,
		docRef:         inventory.NewDocumentRef(inventory.DocumentKindAdjustment, adjustment.AdjustmentNumber),
		actorID:        actorID,
	})
	return err
}

func (s *InventoryService) checkApprovalPermission(ctx context.Context, userID uuid.UUID) error {
	if s.permissions == nil {
		return nil
	}
	allowed, err := s.permissions.CanApproveAdjustments(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.NewDomainError("FORBIDDEN", "User may not approve adjustments")
	}
	return nil
}

// depleteBatch deducts from a batch inside the current transaction, clamping
// at zero. The batch must belong to the product-warehouse pair being mutated.
func (s *InventoryService) depleteBatch(ctx context.Context, repos TransactionalRepositories, batchID, productID, warehouseID uuid.UUID, quantity decimal.Decimal) error {
	batch, err := repos.BatchRepo().FindByIDForUpdate(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ProductID != productID || batch.WarehouseID != warehouseID {
		return shared.NewDomainError("BATCH_MISMATCH", "Batch does not belong to this product and warehouse")
	}
	if _, err := batch.DeductQuantity(quantity); err != nil {
		return err
	}
	return repos.BatchRepo().Save(ctx, batch)
}

// movementParams carries the fields for one ledger append
type movementParams struct {
	prefix         string
	productID      uuid.UUID
	warehouseID    uuid.UUID
	movementType   inventory.MovementType
	quantity       decimal.Decimal
	quantityBefore decimal.Decimal
	quantityAfter  decimal.Decimal
	unitCost       decimal.Decimal
	batchID        *uuid.UUID
	reason         string
	docRef         inventory.DocumentRef
	actorID        uuid.UUID
}

// appendMovement generates a reference number and appends one ledger entry
func (s *InventoryService) appendMovement(ctx context.Context, repos TransactionalRepositories, p movementParams) (*inventory.StockMovement, error) {
	reference, err := s.refGen.Generate(ctx, p.prefix)
	if err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(
		reference, p.productID, p.warehouseID,
		p.movementType, p.quantity, p.quantityBefore, p.quantityAfter,
	)
	if err != nil {
		return nil, err
	}
	if !p.unitCost.IsZero() {
		movement.WithUnitCost(p.unitCost)
	}
	if p.batchID != nil {
		movement.WithBatchID(*p.batchID)
	}
	if p.reason != "" {
		movement.WithReason(p.reason)
	}
	if !p.docRef.IsZero() {
		movement.WithDocumentRef(p.docRef)
	}
	movement.WithCreatedBy(p.actorID)

	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// GetMovementByReference retrieves a ledger entry by its reference number
func (s *InventoryService) GetMovementByReference(ctx context.Context, referenceNumber string) (*StockMovementResponse, error) {
	movement, err := s.movementRepo.FindByReferenceNumber(ctx, referenceNumber)
	if err != nil {
		return nil, err
	}
	response := ToStockMovementResponse(movement)
	return &response, nil
}

// ListMovements retrieves ledger entries with filtering and pagination
func (s *InventoryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	domainFilter := buildMovementFilter(filter)

	movements, err := s.movementRepo.FindByDateRange(ctx, timeOrZero(filter.StartDate), timeOrNow(filter.EndDate), domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockMovementResponses(movements), total, nil
}

// GetAdjustment retrieves an adjustment by ID
func (s *InventoryService) GetAdjustment(ctx context.Context, adjustmentID uuid.UUID) (*AdjustmentResponse, error) {
	adjustment, err := s.adjustmentRepo.FindByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}
	response := ToAdjustmentResponse(adjustment)
	return &response, nil
}

// ListAdjustments retrieves adjustments with filtering and pagination
func (s *InventoryService) ListAdjustments(ctx context.Context, filter AdjustmentListFilter) ([]AdjustmentResponse, int64, error) {
	domainFilter := buildAdjustmentFilter(filter)

	adjustments, err := s.adjustmentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.adjustmentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAdjustmentResponses(adjustments), total, nil
}

// ListPendingAdjustments retrieves adjustments awaiting approval
func (s *InventoryService) ListPendingAdjustments(ctx context.Context, filter AdjustmentListFilter) ([]AdjustmentResponse, int64, error) {
	pending := string(inventory.AdjustmentStatusPendingApproval)
	filter.Status = pending
	return s.ListAdjustments(ctx, filter)
}

// GetBatch retrieves a batch by ID
func (s *InventoryService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// ListBatches retrieves batches for a product-warehouse pair
func (s *InventoryService) ListBatches(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]BatchResponse, int64, error) {
	batches, err := s.batchRepo.FindByProductAndWarehouse(ctx, productID, warehouseID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.batchRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToBatchResponses(batches), total, nil
}

// ListExpiringBatches retrieves active batches expiring within the given days
func (s *InventoryService) ListExpiringBatches(ctx context.Context, withinDays int, filter shared.Filter) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindExpiringSoon(ctx, withinDays, filter)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// CheckLedgerConsistency verifies that the signed sum of ledger entries for a
// product-warehouse pair reproduces the record's on-hand quantity. Returns the
// difference (zero when consistent).
func (s *InventoryService) CheckLedgerConsistency(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	ledgerSum, err := s.movementRepo.SumSignedQuantity(ctx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}

	record, err := s.recordRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ledgerSum.Neg(), nil
		}
		return decimal.Zero, err
	}
	return record.Quantity.Sub(ledgerSum), nil
}

func parseDocumentRef(kind, id string) (inventory.DocumentRef, error) {
	if kind == "" && id == "" {
		return inventory.DocumentRef{}, nil
	}
	documentKind := inventory.DocumentKind(kind)
	if !documentKind.IsValid() {
		return inventory.DocumentRef{}, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Invalid document kind")
	}
	if id == "" {
		return inventory.DocumentRef{}, shared.NewDomainError("INVALID_DOCUMENT_ID", "Document ID is required with a document kind")
	}
	return inventory.NewDocumentRef(documentKind, id), nil
}

func buildRecordFilter(filter RecordListFilter) shared.Filter {
	domainFilter := normalizeFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.HasStock != nil {
		if *filter.HasStock {
			domainFilter.Filters["has_stock"] = true
		} else {
			domainFilter.Filters["no_stock"] = true
		}
	}
	return domainFilter
}

func buildMovementFilter(filter MovementListFilter) shared.Filter {
	domainFilter := normalizeFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.MovementType != "" {
		domainFilter.Filters["movement_type"] = filter.MovementType
	}
	if filter.DocumentKind != "" {
		domainFilter.Filters["reference_type"] = filter.DocumentKind
	}
	if filter.DocumentID != "" {
		domainFilter.Filters["reference_id"] = filter.DocumentID
	}
	return domainFilter
}

func buildAdjustmentFilter(filter AdjustmentListFilter) shared.Filter {
	domainFilter := normalizeFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.AdjustmentType != "" {
		domainFilter.Filters["adjustment_type"] = filter.AdjustmentType
	}
	if filter.CreatedBy != nil {
		domainFilter.Filters["created_by"] = *filter.CreatedBy
	}
	return domainFilter
}

func normalizeFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if orderBy == "" {
		orderBy = "created_at"
	}
	if orderDir == "" {
		orderDir = "desc"
	}
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Filters:  make(map[string]interface{}),
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func timeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now()
	}
	return *t
}

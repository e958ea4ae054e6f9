package inventory

import (
	"context"

	"github.com/erp/inventory/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// RecordRepo returns the inventory record repository scoped to the current transaction
	RecordRepo() inventory.InventoryRecordRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// AdjustmentRepo returns the adjustment repository scoped to the current transaction
	AdjustmentRepo() inventory.AdjustmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	recordRepo     inventory.InventoryRecordRepository
	movementRepo   inventory.StockMovementRepository
	batchRepo      inventory.BatchRepository
	adjustmentRepo inventory.AdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	recordRepo inventory.InventoryRecordRepository,
	movementRepo inventory.StockMovementRepository,
	batchRepo inventory.BatchRepository,
	adjustmentRepo inventory.AdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		recordRepo:     recordRepo,
		movementRepo:   movementRepo,
		batchRepo:      batchRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RecordRepo returns the inventory record repository.
func (s *NoOpTransactionScope) RecordRepo() inventory.InventoryRecordRepository {
	return s.recordRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.batchRepo
}

// AdjustmentRepo returns the adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.AdjustmentRepository {
	return s.adjustmentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

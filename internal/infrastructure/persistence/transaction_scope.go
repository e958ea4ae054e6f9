package persistence

import (
	"context"

	appinv "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// RecordRepo returns the inventory record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecordRepo() inventory.InventoryRecordRepository {
	return NewGormInventoryRecordRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// BatchRepo returns the batch repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// AdjustmentRepo returns the adjustment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AdjustmentRepo() inventory.AdjustmentRepository {
	return NewGormAdjustmentRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockRecordRepository creates a GormInventoryRecordRepository backed by a
// mocked postgres connection. The in-memory sqlite tests cannot exercise the
// FOR UPDATE paths, so those are covered here.
func newMockRecordRepository(t *testing.T) (*GormInventoryRecordRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInventoryRecordRepository(gormDB), mock, mockDB
}

func TestGormInventoryRecordRepository_FindByProductAndWarehouseForUpdate(t *testing.T) {
	t.Run("locks and returns the row", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "product_id", "warehouse_id", "quantity", "reserved_quantity", "version"}).
			AddRow(uuid.New(), productID, warehouseID, decimal.NewFromInt(80), decimal.NewFromInt(20), 3)

		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND warehouse_id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(rows)

		record, err := repo.FindByProductAndWarehouseForUpdate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, record.Quantity.Equal(decimal.NewFromInt(80)))
		assert.True(t, record.ReservedQuantity.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 3, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND warehouse_id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByProductAndWarehouseForUpdate(context.Background(), productID, warehouseID)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes through connection errors", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_records"`).
			WithArgs(productID, warehouseID, 1).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByProductAndWarehouseForUpdate(context.Background(), productID, warehouseID)

		assert.True(t, errors.Is(err, sql.ErrConnDone))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryRecordRepository_GetOrCreateForUpdate(t *testing.T) {
	t.Run("creates a zero record on first touch", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		// First lock attempt finds nothing
		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND warehouse_id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		// Insert races safely via ON CONFLICT DO NOTHING
		mock.ExpectExec(`INSERT INTO "inventory_records" .* ON CONFLICT \("product_id","warehouse_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Re-lock returns the created row
		rows := sqlmock.NewRows([]string{"id", "product_id", "warehouse_id", "quantity", "reserved_quantity", "version"}).
			AddRow(uuid.New(), productID, warehouseID, decimal.Zero, decimal.Zero, 1)
		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND warehouse_id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(rows)

		record, err := repo.GetOrCreateForUpdate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, record.Quantity.IsZero())
		assert.Equal(t, 1, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the existing row without inserting", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "product_id", "warehouse_id", "quantity", "reserved_quantity", "version"}).
			AddRow(uuid.New(), productID, warehouseID, decimal.NewFromInt(12), decimal.Zero, 2)
		mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND warehouse_id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(rows)

		record, err := repo.GetOrCreateForUpdate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, record.Quantity.Equal(decimal.NewFromInt(12)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package persistence

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/erp/inventory/internal/application/inventory"
	"gorm.io/gorm"
)

// ReferenceSequence is the per-prefix, per-day counter backing document
// number generation
type ReferenceSequence struct {
	Prefix  string `gorm:"type:varchar(10);primaryKey"`
	DateKey string `gorm:"type:varchar(8);primaryKey"`
	Counter int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ReferenceSequence) TableName() string {
	return "reference_sequences"
}

// GormReferenceGenerator issues unique document numbers in the format
// PREFIX-YYYYMMDD-NNNN, backed by an atomically incremented sequence row per
// prefix and day. Numbers consumed by rolled-back transactions leave gaps,
// which is acceptable; uniqueness is what matters.
type GormReferenceGenerator struct {
	db *gorm.DB
}

// NewGormReferenceGenerator creates a new GormReferenceGenerator
func NewGormReferenceGenerator(db *gorm.DB) *GormReferenceGenerator {
	return &GormReferenceGenerator{db: db}
}

// Generate returns the next reference number for the given prefix
func (g *GormReferenceGenerator) Generate(ctx context.Context, prefix string) (string, error) {
	dateKey := time.Now().Format("20060102")

	var counter int64
	err := g.db.WithContext(ctx).Raw(`
		INSERT INTO reference_sequences (prefix, date_key, counter)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, date_key)
		DO UPDATE SET counter = reference_sequences.counter + 1
		RETURNING counter`,
		prefix, dateKey,
	).Scan(&counter).Error
	if err != nil {
		return "", fmt.Errorf("failed to generate reference number: %w", err)
	}

	return fmt.Sprintf("%s-%s-%04d", prefix, dateKey, counter), nil
}

var _ appinv.ReferenceGenerator = (*GormReferenceGenerator)(nil)

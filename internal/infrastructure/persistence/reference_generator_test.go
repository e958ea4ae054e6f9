package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReferenceGenerator_Generate(t *testing.T) {
	db := setupInventoryTestDB(t)
	gen := NewGormReferenceGenerator(db)
	ctx := context.Background()
	today := time.Now().Format("20060102")

	t.Run("numbers are sequential within a prefix", func(t *testing.T) {
		first, err := gen.Generate(ctx, "IN")
		require.NoError(t, err)
		second, err := gen.Generate(ctx, "IN")
		require.NoError(t, err)

		assert.Equal(t, fmt.Sprintf("IN-%s-0001", today), first)
		assert.Equal(t, fmt.Sprintf("IN-%s-0002", today), second)
	})

	t.Run("prefixes keep independent counters", func(t *testing.T) {
		ref, err := gen.Generate(ctx, "ADJ")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ADJ-%s-0001", today), ref)

		ref, err = gen.Generate(ctx, "IN")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("IN-%s-0003", today), ref)
	})
}

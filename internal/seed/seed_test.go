package seed

import (
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := Generate(DefaultSize, 42, now)
	require.Len(t, products, DefaultSize)

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(1009)
	for i, p := range products {
		assert.True(t, domain.ValidIdentifier(p.ID), "id %q", p.ID)
		assert.Equal(t, now, p.CreatedAt)
		assert.True(t, p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max), "price %s", p.Price)
		assert.GreaterOrEqual(t, p.Stock, 0)
		assert.LessOrEqual(t, p.Rating, 5.0)
		assert.Len(t, p.Tags, 2)
		if i == 0 {
			assert.Equal(t, "1", p.ID)
			assert.Equal(t, "Product 1", p.Name)
		}
	}
}

func TestGenerate_SameSeedSameCatalog(t *testing.T) {
	now := time.Now()
	a := Generate(50, 7, now)
	b := Generate(50, 7, now)
	for i := range a {
		assert.True(t, a[i].Price.Equal(b[i].Price))
		assert.Equal(t, a[i].Category, b[i].Category)
	}
}

package product

import (
	"context"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Repository stores the product catalog.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	// Patch applies apply to the stored product while holding the write
	// lock, so concurrent patches of different fields all land.
	Patch(ctx context.Context, id string, apply func(*domain.Product)) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Price(id string) (decimal.Decimal, bool)
}

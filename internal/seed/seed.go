package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultSize is the number of products generated when no catalog file is
// configured.
const DefaultSize = 1000

var (
	categories = []string{"Electronics", "Clothing", "Books", "Home", "Sports", "Beauty"}
	brands     = []string{"BrandA", "BrandB", "BrandC", "BrandD", "BrandE"}
)

// Generate builds n products with ids "1".."n". The same seed always yields
// the same catalog apart from createdAt, which is set to now.
func Generate(n int, seed int64, now time.Time) []domain.Product {
	rng := rand.New(rand.NewSource(seed))
	created := now.UTC()
	products := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, domain.Product{
			ID:            strconv.Itoa(i),
			Name:          fmt.Sprintf("Product %d", i),
			Description:   fmt.Sprintf("This is product number %d with amazing features", i),
			Price:         decimal.NewFromInt(int64(rng.Intn(1000) + 10)),
			Category:      categories[rng.Intn(len(categories))],
			Brand:         brands[rng.Intn(len(brands))],
			Stock:         rng.Intn(100),
			Rating:        math.Round(rng.Float64()*50) / 10,
			Tags:          []string{fmt.Sprintf("tag%d", i), fmt.Sprintf("feature%d", i%10)},
			CreatedAt:     created,
			CostPrice:     decimal.NewFromInt(int64(rng.Intn(500) + 5)),
			Supplier:      fmt.Sprintf("Supplier %d", i%20),
			InternalNotes: fmt.Sprintf("Internal notes for product %d", i),
			AdminOnly:     rng.Float64() > 0.9,
		})
	}
	return products
}

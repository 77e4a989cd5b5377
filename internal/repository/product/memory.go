package product

import (
	"context"
	"strconv"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type memoryRepo struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
	logger   *logrus.Logger
}

// NewMemory builds a catalog over products, preserving their order.
func NewMemory(products []domain.Product, logger *logrus.Logger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &memoryRepo{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
		logger:   logger,
	}
	for _, p := range products {
		r.index[p.ID] = len(r.products)
		r.products = append(r.products, p.Clone())
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, len(r.products))
	for i, p := range r.products {
		out[i] = p.Clone()
	}
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := r.products[i].Clone()
	return &p, nil
}

// Create assigns the next id (max existing + 1) and appends p.
func (r *memoryRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = strconv.FormatInt(r.maxID()+1, 10)
	r.index[p.ID] = len(r.products)
	r.products = append(r.products, p.Clone())
	r.logger.WithFields(logrus.Fields{"id": p.ID, "count": len(r.products)}).Debug("product repo: created")
	return &p, nil
}

func (r *memoryRepo) Patch(_ context.Context, id string, apply func(*domain.Product)) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := r.products[i].Clone()
	apply(&p)
	p.ID = id
	r.products[i] = p.Clone()
	r.logger.WithField("id", id).Debug("product repo: patched")
	return &p, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.products); j++ {
		r.index[r.products[j].ID] = j
	}
	r.logger.WithFields(logrus.Fields{"id": id, "count": len(r.products)}).Debug("product repo: deleted")
	return nil
}

// Price returns the current catalog price of id.
func (r *memoryRepo) Price(id string) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return decimal.Zero, false
	}
	return r.products[i].Price, true
}

func (r *memoryRepo) maxID() int64 {
	var max int64
	for _, p := range r.products {
		n, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

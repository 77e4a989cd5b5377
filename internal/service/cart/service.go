package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	cartrepo "storefront/internal/repository/cart"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const saveTimeout = 5 * time.Second

// Catalog is the read contract the store needs from the product catalog.
type Catalog interface {
	Price(productID string) (decimal.Decimal, bool)
}

// Store keeps every subject's cart in memory and writes the full state to
// the snapshotter after each mutation. A single lock covers mutate,
// recompute and save so concurrent requests for one subject never lose
// updates.
type Store struct {
	mu        sync.RWMutex
	carts     map[string]*domain.Cart
	order     []string
	catalog   Catalog
	snapshots cartrepo.Snapshotter
	logger    *logrus.Logger
	now       func() time.Time
}

func New(catalog Catalog, snapshots cartrepo.Snapshotter, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		carts:     make(map[string]*domain.Cart),
		catalog:   catalog,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Restore replaces the in-memory state with the stored snapshot. Load errors
// are logged and the store starts empty.
func (s *Store) Restore(ctx context.Context) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("backend", s.snapshots.Name()).Warn("cart snapshot unreadable, starting with no carts")
		metrics.RecordSnapshotLoadFailure(s.snapshots.Name())
		snap = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = make(map[string]*domain.Cart, len(snap))
	s.order = s.order[:0]
	for _, entry := range snap {
		c := entry.Cart.Clone()
		if _, seen := s.carts[entry.SubjectID]; !seen {
			s.order = append(s.order, entry.SubjectID)
		}
		s.carts[entry.SubjectID] = &c
	}
	metrics.SetCarts(len(s.order))
	s.logger.WithFields(logrus.Fields{"carts": len(s.order), "backend": s.snapshots.Name()}).Info("carts restored")
}

// Len returns the number of carts held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// GetCart returns the subject's cart with its total priced against the
// current catalog, or an empty cart. It never creates an entry.
func (s *Store) GetCart(_ context.Context, subjectID string) domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[subjectID]
	if !ok {
		return domain.NewCart()
	}
	out := c.Clone()
	out.Recalculate(s.catalog.Price)
	return out
}

// AddItem adds quantity of productID, merging with an existing line up to
// domain.MaxItemQuantity.
func (s *Store) AddItem(ctx context.Context, subjectID, productID string, quantity int) (cart domain.Cart, err error) {
	defer func() { metrics.RecordCartMutation("add", err) }()

	if !domain.ValidIdentifier(productID) {
		return domain.Cart{}, domain.ErrInvalidIdentifier
	}
	if _, ok := s.catalog.Price(productID); !ok {
		return domain.Cart{}, domain.ErrProductNotFound
	}
	if !validQuantity(quantity) {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartLocked(subjectID)
	if i := c.IndexOf(productID); i >= 0 {
		c.Items[i].Quantity = min(c.Items[i].Quantity+quantity, domain.MaxItemQuantity)
	} else {
		c.Items = append(c.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now().UTC(),
		})
	}
	c.Recalculate(s.catalog.Price)
	s.persistLocked(ctx)

	s.logger.WithFields(logrus.Fields{"subject": subjectID, "product": productID, "quantity": quantity}).Debug("cart item added")
	return c.Clone(), nil
}

// UpdateItem sets the quantity of an item already in the cart.
func (s *Store) UpdateItem(ctx context.Context, subjectID, productID string, quantity int) (cart domain.Cart, err error) {
	defer func() { metrics.RecordCartMutation("update", err) }()

	if !domain.ValidIdentifier(productID) {
		return domain.Cart{}, domain.ErrInvalidIdentifier
	}
	if !validQuantity(quantity) {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[subjectID]
	if !ok {
		return domain.Cart{}, domain.ErrItemNotFound
	}
	i := c.IndexOf(productID)
	if i < 0 {
		return domain.Cart{}, domain.ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	c.Recalculate(s.catalog.Price)
	s.persistLocked(ctx)

	return c.Clone(), nil
}

// RemoveItem deletes productID from the cart and returns the removed line.
// The cart is left untouched when the item is absent.
func (s *Store) RemoveItem(ctx context.Context, subjectID, productID string) (cart domain.Cart, removed domain.CartItem, err error) {
	defer func() { metrics.RecordCartMutation("remove", err) }()

	if !domain.ValidIdentifier(productID) {
		return domain.Cart{}, domain.CartItem{}, domain.ErrInvalidIdentifier
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[subjectID]
	if !ok {
		return domain.Cart{}, domain.CartItem{}, domain.ErrItemNotFound
	}
	i := c.IndexOf(productID)
	if i < 0 {
		return domain.Cart{}, domain.CartItem{}, domain.ErrItemNotFound
	}
	removed = c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate(s.catalog.Price)
	s.persistLocked(ctx)

	return c.Clone(), removed, nil
}

// Close writes the final state. Unlike per-mutation saves, its error is
// returned to the caller.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.snapshots.Save(ctx, s.snapshotLocked())
	metrics.RecordSnapshotSave(s.snapshots.Name(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("flush carts: %w", err)
	}
	return nil
}

func (s *Store) cartLocked(subjectID string) *domain.Cart {
	c, ok := s.carts[subjectID]
	if !ok {
		fresh := domain.NewCart()
		c = &fresh
		s.carts[subjectID] = c
		s.order = append(s.order, subjectID)
		metrics.SetCarts(len(s.order))
	}
	return c
}

// persistLocked saves the store. A failed save is logged and counted but the
// mutation stands; the next successful save carries it.
func (s *Store) persistLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	start := time.Now()
	err := s.snapshots.Save(ctx, s.snapshotLocked())
	metrics.RecordSnapshotSave(s.snapshots.Name(), time.Since(start), err)
	if err != nil {
		s.logger.WithError(err).WithField("backend", s.snapshots.Name()).Error("save cart snapshot")
	}
}

func (s *Store) snapshotLocked() domain.Snapshot {
	snap := make(domain.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		c := s.carts[id].Clone()
		c.Recalculate(s.catalog.Price)
		snap = append(snap, domain.SnapshotEntry{SubjectID: id, Cart: c})
	}
	return snap
}

func validQuantity(q int) bool {
	return q >= domain.MinItemQuantity && q <= domain.MaxItemQuantity
}

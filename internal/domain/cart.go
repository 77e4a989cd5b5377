package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinItemQuantity = 1
	MaxItemQuantity = 100
)

// CartItem references a product by id. The unit price is resolved from the
// catalog whenever the total is computed.
type CartItem struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart holds one subject's items. Total is derived and recomputed after
// every change; it is never the source of truth.
type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{Items: []CartItem{}, Total: decimal.Zero}
}

// Clone returns a deep copy of c.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, Total: c.Total}
}

// IndexOf returns the position of productID in the cart or -1.
func (c Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the number of distinct items.
func (c Cart) ItemCount() int {
	return len(c.Items)
}

// Recalculate sets Total from the current prices. A product missing from
// priceOf contributes zero.
func (c *Cart) Recalculate(priceOf func(productID string) (decimal.Decimal, bool)) {
	total := decimal.Zero
	for _, item := range c.Items {
		price, ok := priceOf(item.ProductID)
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.Total = total
}

// SnapshotEntry is one (subject, cart) pair. It serializes as a two
// element JSON array.
type SnapshotEntry struct {
	SubjectID string
	Cart      Cart
}

// Snapshot is the full ordered state of the cart store.
type Snapshot []SnapshotEntry

func (e SnapshotEntry) MarshalJSON() ([]byte, error) {
	cart := e.Cart
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return json.Marshal([2]interface{}{e.SubjectID, cart})
}

func (e *SnapshotEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("snapshot entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.SubjectID); err != nil {
		return fmt.Errorf("snapshot entry subject: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal(pair[1], &cart); err != nil {
		return fmt.Errorf("snapshot entry cart %q: %w", e.SubjectID, err)
	}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	e.Cart = cart
	return nil
}

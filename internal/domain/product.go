package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var identifierPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// ValidIdentifier reports whether id is a positive decimal integer without
// leading zeros. Anything else is rejected before any lookup.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// Product is a catalog entry. The internal fields are never serialized;
// use Public for anything that leaves the process.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`

	CostPrice     decimal.Decimal `json:"-"`
	Supplier      string          `json:"-"`
	InternalNotes string          `json:"-"`
	AdminOnly     bool            `json:"-"`
}

// PublicProduct is the read contract exposed over HTTP.
type PublicProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Public projects p onto its public fields.
func (p Product) Public() PublicProduct {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PublicProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Stock:       p.Stock,
		Rating:      p.Rating,
		Tags:        append([]string(nil), tags...),
		CreatedAt:   p.CreatedAt,
	}
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	return out
}

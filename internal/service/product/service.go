package product

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultSort  = "name"
)

var costRatio = decimal.RequireFromString("0.7")

type Service struct {
	repo     productrepo.Repository
	validate *validator.Validate
	now      func() time.Time
}

func New(repo productrepo.Repository) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Service{repo: repo, validate: v, now: time.Now}
}

// ListQuery describes a catalog page request. Zero values fall back to the
// defaults.
type ListQuery struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type ListResult struct {
	Items      []domain.Product
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// CreateInput mirrors the POST /products body.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"required,min=5,max=500"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required,min=2,max=50"`
	Brand       string   `json:"brand" validate:"required,min=2,max=50"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// UpdateInput mirrors the PUT /products/:id body; nil fields are left as is.
type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=5,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,min=2,max=50"`
	Brand       *string  `json:"brand" validate:"omitempty,min=2,max=50"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// NormalizePage clamps page to >= 1 and limit to [1, MaxLimit], using
// DefaultLimit for non-positive limits.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return ListResult{}, err
	}

	filtered := all
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		filtered = filtered[:0:0]
		for _, p := range all {
			if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
				filtered = append(filtered, p)
			}
		}
	}
	if q.Category != "" {
		byCategory := make([]domain.Product, 0, len(filtered))
		for _, p := range filtered {
			if p.Category == q.Category {
				byCategory = append(byCategory, p)
			}
		}
		filtered = byCategory
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = DefaultSort
	}
	sortProducts(filtered, sortBy, strings.EqualFold(q.SortOrder, "desc"))

	page, limit := NormalizePage(q.Page, q.Limit)
	total := len(filtered)
	res := ListResult{
		Items:      []domain.Product{},
		TotalItems: total,
		TotalPages: (total + limit - 1) / limit,
		Page:       page,
		Limit:      limit,
	}
	start := (page - 1) * limit
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		res.Items = filtered[start:end]
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if !domain.ValidIdentifier(id) {
		return nil, domain.ErrInvalidIdentifier
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	price := decimal.NewFromFloat(*in.Price)
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return s.repo.Create(ctx, domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Category:    in.Category,
		Brand:       in.Brand,
		Stock:       stock,
		Rating:      0,
		Tags:        tags,
		CreatedAt:   s.now().UTC(),
		CostPrice:   price.Mul(costRatio),
		Supplier:    "Unknown",
	})
}

// Update applies the non-nil fields of in to product id. The merge happens
// inside the repository lock; the existence check only orders the errors.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	if !domain.ValidIdentifier(id) {
		return nil, domain.ErrInvalidIdentifier
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	return s.repo.Patch(ctx, id, func(p *domain.Product) {
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Price != nil {
			p.Price = decimal.NewFromFloat(*in.Price)
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.Brand != nil {
			p.Brand = *in.Brand
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if in.Tags != nil {
			p.Tags = append([]string(nil), in.Tags...)
		}
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !domain.ValidIdentifier(id) {
		return domain.ErrInvalidIdentifier
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return &domain.ValidationError{Details: details}
}

func describe(fe validator.FieldError) string {
	field := strconv.Quote(fe.Field())
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return field + " must be a positive number"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// sortProducts orders products in place by the named public field. Ties keep
// their catalog order; unknown fields leave the slice untouched.
func sortProducts(products []domain.Product, field string, desc bool) {
	less := lessFunc(field)
	if less == nil {
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func lessFunc(field string) func(a, b domain.Product) bool {
	switch field {
	case "id":
		return func(a, b domain.Product) bool { return numericID(a.ID) < numericID(b.ID) }
	case "name":
		return func(a, b domain.Product) bool { return a.Name < b.Name }
	case "description":
		return func(a, b domain.Product) bool { return a.Description < b.Description }
	case "price":
		return func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case "category":
		return func(a, b domain.Product) bool { return a.Category < b.Category }
	case "brand":
		return func(a, b domain.Product) bool { return a.Brand < b.Brand }
	case "stock":
		return func(a, b domain.Product) bool { return a.Stock < b.Stock }
	case "rating":
		return func(a, b domain.Product) bool { return a.Rating < b.Rating }
	case "createdAt":
		return func(a, b domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return nil
	}
}

func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

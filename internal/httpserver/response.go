package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	errAdminRequired     = errors.New("admin privileges required")
	errProductIDRequired = errors.New("product id required")
	errInvalidProductID  = errors.New("invalid product id format")
	errInvalidBody       = errors.New("invalid request body")
	errBodyTooLarge      = errors.New("request body too large")
	errInvalidQuantity   = errors.New("invalid quantity")
)

// respondError maps service errors onto status codes and the {"error"} body.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": verr.Details})
	case errors.Is(err, auth.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, auth.ErrMissingSubject):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, errAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required to delete products"})
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
	case errors.Is(err, errInvalidBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	case errors.Is(err, errProductIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
	case errors.Is(err, domain.ErrInvalidIdentifier), errors.Is(err, errInvalidProductID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, errInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be an integer between 1 and 100"})
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

type cartView struct {
	Items []domain.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func toCartView(cart domain.Cart) cartView {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartView{Items: items, Total: cart.Total}
}

type cartMetadata struct {
	LastUpdated string `json:"lastUpdated"`
	ItemCount   int    `json:"itemCount"`
}

// productSummary is the listing shape; it leaves out createdAt.
type productSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Tags        []string        `json:"tags"`
}

func toProductSummary(p domain.Product) productSummary {
	pub := p.Public()
	return productSummary{
		ID:          pub.ID,
		Name:        pub.Name,
		Description: pub.Description,
		Price:       pub.Price,
		Category:    pub.Category,
		Brand:       pub.Brand,
		Stock:       pub.Stock,
		Rating:      pub.Rating,
		Tags:        pub.Tags,
	}
}

type pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

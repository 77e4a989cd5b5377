package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type cartItemRequest struct {
	ProductID json.RawMessage `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

func getCartHandler(svc CartService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		cart := svc.GetCart(c.Request.Context(), identity.SubjectID)
		c.Header("X-Cart-Items", strconv.Itoa(cart.ItemCount()))
		c.JSON(http.StatusOK, gin.H{
			"cart": toCartView(cart),
			"metadata": cartMetadata{
				LastUpdated: time.Now().UTC().Format(time.RFC3339Nano),
				ItemCount:   cart.ItemCount(),
			},
		})
	}
}

func addCartItemHandler(svc CartService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		productID, quantity, err := decodeCartItem(c, false)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), identity.SubjectID, productID, quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": toCartView(cart)})
	}
}

func updateCartItemHandler(svc CartService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		productID, quantity, err := decodeCartItem(c, true)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		cart, err := svc.UpdateItem(c.Request.Context(), identity.SubjectID, productID, quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "cart": toCartView(cart)})
	}
}

func removeCartItemHandler(svc CartService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		productID := strings.TrimSpace(c.Query("productId"))
		if productID == "" {
			respondError(c, logger, errProductIDRequired)
			return
		}
		cart, removed, err := svc.RemoveItem(c.Request.Context(), identity.SubjectID, productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Item removed from cart",
			"cart":        toCartView(cart),
			"removedItem": removed,
		})
	}
}

// decodeCartItem reads {productId, quantity}. productId may be a string or
// an integer. quantity defaults to 1 unless required; it may be an integral
// number or a numeric string.
func decodeCartItem(c *gin.Context, quantityRequired bool) (string, int, error) {
	var req cartItemRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if bodyTooLarge(err) {
			return "", 0, errBodyTooLarge
		}
		return "", 0, errInvalidBody
	}
	productID, err := parseProductID(req.ProductID)
	if err != nil {
		return "", 0, err
	}
	if isAbsent(req.Quantity) {
		if quantityRequired {
			return "", 0, errInvalidQuantity
		}
		return productID, 1, nil
	}
	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		return "", 0, err
	}
	return productID, quantity, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func parseProductID(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", errProductIDRequired
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", errProductIDRequired
		}
		return s, nil
	}
	n, ok := integral(raw)
	if !ok {
		return "", errInvalidProductID
	}
	return strconv.FormatInt(n, 10), nil
}

func parseQuantity(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, errInvalidQuantity
		}
		return n, nil
	}
	n, ok := integral(raw)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errInvalidQuantity
	}
	return int(n), nil
}

// integral accepts JSON numbers with no fractional part, including forms
// like 2.0 or 1e2.
func integral(raw json.RawMessage) (int64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

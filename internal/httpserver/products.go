package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func listProductsHandler(svc ProductService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		res, err := svc.List(c.Request.Context(), productsvc.ListQuery{
			Search:    c.Query("search"),
			Category:  c.Query("category"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			Page:      page,
			Limit:     limit,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		items := make([]productSummary, 0, len(res.Items))
		for _, p := range res.Items {
			items = append(items, toProductSummary(p))
		}
		c.Header("X-Total-Count", strconv.Itoa(res.TotalItems))
		c.JSON(http.StatusOK, gin.H{
			"products": items,
			"pagination": pagination{
				CurrentPage:  res.Page,
				TotalPages:   res.TotalPages,
				TotalItems:   res.TotalItems,
				ItemsPerPage: res.Limit,
			},
		})
	}
}

func getProductHandler(svc ProductService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p.Public())
	}
}

func createProductHandler(svc ProductService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		var in productsvc.CreateInput
		if err := decodeStrict(c.Request.Body, &in); err != nil {
			respondError(c, logger, err)
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": p.Public()})
	}
}

func updateProductHandler(svc ProductService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		id := c.Param("id")
		if _, err := svc.Get(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		var in productsvc.UpdateInput
		if err := decodeStrict(c.Request.Body, &in); err != nil {
			respondError(c, logger, err)
			return
		}
		p, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": p.Public()})
	}
}

func deleteProductHandler(svc ProductService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !domain.ValidIdentifier(id) {
			respondError(c, logger, domain.ErrInvalidIdentifier)
			return
		}
		identity, ok := identityFrom(c)
		if !ok {
			respondError(c, logger, auth.ErrMissingSubject)
			return
		}
		if !identity.IsAdmin() {
			respondError(c, logger, errAdminRequired)
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.WithFields(logrus.Fields{"id": id, "subject": identity.SubjectID}).Info("product deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// decodeStrict decodes a JSON object into dst, rejecting unknown fields.
// Decode failures come back as a ValidationError naming the field.
func decodeStrict(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case bodyTooLarge(err):
		return errBodyTooLarge
	case errors.As(err, &typeErr):
		return &domain.ValidationError{Details: []string{
			fmt.Sprintf("%q must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())),
		}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return &domain.ValidationError{Details: []string{field + " is not allowed"}}
	default:
		return &domain.ValidationError{Details: []string{"body must be a valid JSON object"}}
	}
}

func jsonKind(kind string) string {
	switch kind {
	case "string":
		return "string"
	case "slice", "array":
		return "array"
	case "float64", "float32", "int", "int64", "int32":
		return "number"
	case "struct", "map":
		return "object"
	default:
		return kind
	}
}

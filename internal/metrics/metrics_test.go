package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	if after-before != 1 {
		t.Fatalf("expected one request counted, got %v", after-before)
	}
}

func TestRecordSnapshot(t *testing.T) {
	before := testutil.ToFloat64(snapshotSaves.WithLabelValues("file", "error"))
	RecordSnapshotSave("file", time.Millisecond, errors.New("disk full"))
	if got := testutil.ToFloat64(snapshotSaves.WithLabelValues("file", "error")) - before; got != 1 {
		t.Fatalf("expected one failed save, got %v", got)
	}

	RecordSnapshotLoadFailure("file")
	if got := testutil.ToFloat64(snapshotLoadFailures.WithLabelValues("file")); got < 1 {
		t.Fatalf("expected load failure recorded, got %v", got)
	}
}

func TestHandler_ExposesRegistry(t *testing.T) {
	SetCatalogProducts(3)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storefront_catalog_products 3") {
		t.Fatalf("catalog gauge missing from output")
	}
}

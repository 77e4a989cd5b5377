package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
	"storefront/internal/service/auth"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const testSecret = "test-secret"

func logDiscard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memorySnapshots struct {
	saves   int
	last    domain.Snapshot
	pingErr error
}

func (m *memorySnapshots) Name() string { return "memory" }

func (m *memorySnapshots) Load(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, nil
}

func (m *memorySnapshots) Save(_ context.Context, snap domain.Snapshot) error {
	m.saves++
	m.last = snap
	return nil
}

func (m *memorySnapshots) Ping(context.Context) error { return m.pingErr }

type testEnv struct {
	router    *gin.Engine
	verifier  *auth.Verifier
	snapshots *memorySnapshots
}

func newTestEnv(t *testing.T, products int, opts Options) *testEnv {
	t.Helper()
	return newCatalogEnv(t, seed.Generate(products, 1, time.Now()), opts)
}

func newCatalogEnv(t *testing.T, products []domain.Product, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	repo := productrepo.NewMemory(products, nil)
	snaps := &memorySnapshots{}
	store := cartsvc.New(repo, snaps, nil)

	router, err := buildRouter(logDiscard(), Deps{
		ProductSvc: productsvc.New(repo),
		CartSvc:    store,
		Verifier:   verifier,
		Snapshots:  snaps,
	}, opts)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, verifier: verifier, snapshots: snaps}
}

func (e *testEnv) token(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := e.verifier.Issue(subject, role, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := decodeBody(t, rec)["error"]; got != message {
		t.Fatalf("expected error %q, got %v", message, got)
	}
}

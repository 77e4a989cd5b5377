package httpserver

import (
	"net/http"
	"strings"
	"testing"
)

func TestListProducts_Pagination(t *testing.T) {
	env := newTestEnv(t, 1000, Options{})

	rec := env.do(http.MethodGet, "/products?page=1&limit=20", "", "")
	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("X-Total-Count"); got != "1000" {
		t.Fatalf("expected X-Total-Count 1000, got %q", got)
	}
	body := decodeBody(t, rec)
	products := body["products"].([]interface{})
	if len(products) != 20 {
		t.Fatalf("expected 20 products, got %d", len(products))
	}
	page := body["pagination"].(map[string]interface{})
	if page["totalPages"].(float64) != 50 || page["currentPage"].(float64) != 1 || page["itemsPerPage"].(float64) != 20 {
		t.Fatalf("unexpected pagination %v", page)
	}

	first := products[0].(map[string]interface{})
	for _, hidden := range []string{"costPrice", "supplier", "internalNotes", "adminOnly", "createdAt"} {
		if _, ok := first[hidden]; ok {
			t.Fatalf("listing leaked %q", hidden)
		}
	}

	rec = env.do(http.MethodGet, "/products?page=999&limit=500", "", "")
	expectStatus(t, rec, http.StatusOK)
	body = decodeBody(t, rec)
	if got := body["products"].([]interface{}); len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}
	if body["pagination"].(map[string]interface{})["itemsPerPage"].(float64) != 100 {
		t.Fatalf("expected limit clamped to 100")
	}

	rec = env.do(http.MethodGet, "/products?page=abc&limit=-4", "", "")
	expectStatus(t, rec, http.StatusOK)
	page = decodeBody(t, rec)["pagination"].(map[string]interface{})
	if page["currentPage"].(float64) != 1 || page["itemsPerPage"].(float64) != 20 {
		t.Fatalf("expected defaults, got %v", page)
	}
}

func TestListProducts_SearchAndSort(t *testing.T) {
	env := newTestEnv(t, 30, Options{})

	rec := env.do(http.MethodGet, "/products?search=product%2025&sortBy=id&sortOrder=desc", "", "")
	expectStatus(t, rec, http.StatusOK)
	products := decodeBody(t, rec)["products"].([]interface{})
	if len(products) != 1 || products[0].(map[string]interface{})["id"] != "25" {
		t.Fatalf("unexpected search result %v", products)
	}

	rec = env.do(http.MethodGet, "/products?sortBy=id&sortOrder=desc&limit=3", "", "")
	products = decodeBody(t, rec)["products"].([]interface{})
	if products[0].(map[string]interface{})["id"] != "30" {
		t.Fatalf("expected highest id first, got %v", products[0])
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t, 999, Options{})

	for _, bad := range []string{"0", "01", "%3Cscript%3E", "abc"} {
		expectError(t, env.do(http.MethodGet, "/products/"+bad, "", ""), http.StatusBadRequest, "Invalid product ID")
	}
	expectError(t, env.do(http.MethodGet, "/products/1000", "", ""), http.StatusNotFound, "Product not found")

	rec := env.do(http.MethodGet, "/products/999", "", "")
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["id"] != "999" || body["createdAt"] == nil {
		t.Fatalf("unexpected product %v", body)
	}
	if _, ok := body["costPrice"]; ok {
		t.Fatalf("product leaked internal fields")
	}
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t, 10, Options{})
	tok := env.token(t, "u1", "")
	payload := `{"name":"Kettle","description":"Boils water","price":19.99,"category":"Home","brand":"BrandA","tags":["kitchen"]}`

	expectError(t, env.do(http.MethodPost, "/products", "", payload), http.StatusUnauthorized, "Authentication required")

	rec := env.do(http.MethodPost, "/products", tok, payload)
	expectStatus(t, rec, http.StatusCreated)
	body := decodeBody(t, rec)
	if body["message"] != "Product created successfully" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	product := body["product"].(map[string]interface{})
	if product["id"] != "11" || product["price"].(float64) != 19.99 || product["stock"].(float64) != 0 || product["rating"].(float64) != 0 {
		t.Fatalf("unexpected product %v", product)
	}
	if _, ok := product["supplier"]; ok {
		t.Fatalf("product leaked internal fields")
	}

	expectStatus(t, env.do(http.MethodGet, "/products/11", "", ""), http.StatusOK)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t, 1, Options{})
	tok := env.token(t, "u1", "")

	rec := env.do(http.MethodPost, "/products", tok, `{"name":"K","price":-3}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid input")
	details := decodeBody(t, rec)["details"].([]interface{})
	joined := make([]string, 0, len(details))
	for _, d := range details {
		joined = append(joined, d.(string))
	}
	all := strings.Join(joined, "|")
	for _, want := range []string{`"name" length must be at least 2 characters long`, `"price" must be a positive number`, `"brand" is required`} {
		if !strings.Contains(all, want) {
			t.Fatalf("missing detail %q in %v", want, joined)
		}
	}

	rec = env.do(http.MethodPost, "/products", tok, `{"name":"Kettle","description":"Boils water","price":5,"category":"Home","brand":"BrandA","costPrice":1}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid input")
	if got := decodeBody(t, rec)["details"].([]interface{})[0]; got != `"costPrice" is not allowed` {
		t.Fatalf("unexpected detail %v", got)
	}

	rec = env.do(http.MethodPost, "/products", tok, `{"name":"Kettle","description":"Boils water","price":"cheap","category":"Home","brand":"BrandA"}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid input")
	if got := decodeBody(t, rec)["details"].([]interface{})[0]; got != `"price" must be a number` {
		t.Fatalf("unexpected detail %v", got)
	}
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	tok := env.token(t, "u1", "")

	expectError(t, env.do(http.MethodPut, "/products/01", tok, `{"name":"New"}`), http.StatusBadRequest, "Invalid product ID")
	expectError(t, env.do(http.MethodPut, "/products/77", tok, `{"name":"New"}`), http.StatusNotFound, "Product not found")
	expectError(t, env.do(http.MethodPut, "/products/2", tok, `{"stock":-1}`), http.StatusBadRequest, "Invalid input")

	rec := env.do(http.MethodPut, "/products/2", tok, `{"name":"Renamed","stock":7}`)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["message"] != "Product updated successfully" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	product := body["product"].(map[string]interface{})
	if product["name"] != "Renamed" || product["stock"].(float64) != 7 {
		t.Fatalf("unexpected product %v", product)
	}
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t, 5, Options{})
	user := env.token(t, "u1", "")
	admin := env.token(t, "root", "admin")

	expectError(t, env.do(http.MethodDelete, "/products/3", "", ""), http.StatusUnauthorized, "Authentication required")
	expectError(t, env.do(http.MethodDelete, "/products/0", user, ""), http.StatusBadRequest, "Invalid product ID")
	expectError(t, env.do(http.MethodDelete, "/products/3", user, ""), http.StatusForbidden, "Admin privileges required to delete products")
	expectError(t, env.do(http.MethodDelete, "/products/42", admin, ""), http.StatusNotFound, "Product not found")

	rec := env.do(http.MethodDelete, "/products/3", admin, "")
	expectStatus(t, rec, http.StatusOK)
	if decodeBody(t, rec)["message"] != "Product deleted successfully" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	expectError(t, env.do(http.MethodGet, "/products/3", "", ""), http.StatusNotFound, "Product not found")
}

func TestDeletedProductStaysInCartAtZero(t *testing.T) {
	env := newCatalogEnv(t, cartCatalog(), Options{})
	user := env.token(t, "u1", "")
	admin := env.token(t, "root", "admin")

	expectStatus(t, env.do(http.MethodPost, "/cart", user, `{"productId":"1","quantity":1}`), http.StatusOK)
	expectStatus(t, env.do(http.MethodPost, "/cart", user, `{"productId":"2","quantity":1}`), http.StatusOK)
	expectStatus(t, env.do(http.MethodDelete, "/products/1", admin, ""), http.StatusOK)

	items, total := cartFrom(t, decodeBody(t, env.do(http.MethodGet, "/cart", user, "")))
	if len(items) != 2 || total != 5 {
		t.Fatalf("expected both items with total 5, got %d / %v", len(items), total)
	}
}

func TestPriceChangeReachesCart(t *testing.T) {
	env := newCatalogEnv(t, cartCatalog(), Options{})
	user := env.token(t, "u1", "")

	expectStatus(t, env.do(http.MethodPost, "/cart", user, `{"productId":"1","quantity":2}`), http.StatusOK)
	expectStatus(t, env.do(http.MethodPut, "/products/1", user, `{"price":25}`), http.StatusOK)

	rec := env.do(http.MethodGet, "/cart", user, "")
	expectStatus(t, rec, http.StatusOK)
	if _, total := cartFrom(t, decodeBody(t, rec)); total != 50 {
		t.Fatalf("expected cart repriced to 50, got %v", total)
	}

	expectStatus(t, env.do(http.MethodPost, "/cart", env.token(t, "u2", ""), `{"productId":"2"}`), http.StatusOK)
	if got := env.snapshots.last[0].Cart.Total.String(); got != "50" {
		t.Fatalf("expected next snapshot to carry total 50, got %s", got)
	}
}

func TestOversizedBodiesAreRejected(t *testing.T) {
	env := newCatalogEnv(t, cartCatalog(), Options{})
	tok := env.token(t, "u1", "")
	pad := strings.Repeat("x", maxBodyBytes+1)

	expectError(t, env.do(http.MethodPost, "/cart", tok, `{"productId":"1","note":"`+pad+`"}`),
		http.StatusRequestEntityTooLarge, "Request body too large")
	expectError(t, env.do(http.MethodPut, "/cart", tok, `{"productId":"1","quantity":2,"note":"`+pad+`"}`),
		http.StatusRequestEntityTooLarge, "Request body too large")
	expectError(t, env.do(http.MethodPost, "/products", tok, `{"name":"`+pad+`"}`),
		http.StatusRequestEntityTooLarge, "Request body too large")
	expectError(t, env.do(http.MethodPut, "/products/1", tok, `{"description":"`+pad+`"}`),
		http.StatusRequestEntityTooLarge, "Request body too large")

	if env.snapshots.saves != 0 {
		t.Fatalf("rejected bodies must not mutate carts, got %d saves", env.snapshots.saves)
	}
	expectStatus(t, env.do(http.MethodPost, "/cart", tok, `{"productId":"1","note":"`+strings.Repeat("x", 1024)+`"}`), http.StatusOK)
}

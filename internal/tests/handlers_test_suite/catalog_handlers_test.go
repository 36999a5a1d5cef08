package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

func TestCategoryHandlers(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	tools := createCategory(r, "Tools")
	createCategory(r, "Electronics")

	t.Run("List ordered by name", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/categories", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var categories []models.Category
		_ = json.NewDecoder(w.Body).Decode(&categories)
		if len(categories) != 2 || categories[0].Name != "Electronics" {
			t.Errorf("expected [Electronics Tools], got %v", categories)
		}
	})

	t.Run("Duplicated name", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/categories", token, handler.CategoryRequest{Name: "tools"})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409 Conflict, got %d", w.Code)
		}
	})

	t.Run("Empty name", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/categories", token, handler.CategoryRequest{Name: "  "})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})

	t.Run("Update", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/categories/"+tools.ID.String(), token, handler.CategoryRequest{Name: "Hand tools", Description: strPtr("Manual")})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var c models.Category
		_ = json.NewDecoder(w.Body).Decode(&c)
		if c.Name != "Hand tools" || c.Description == nil || *c.Description != "Manual" {
			t.Errorf("unexpected category after update: %+v", c)
		}
	})

	t.Run("Get unknown", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/categories/"+uuid.NewString(), token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 Not Found, got %d", w.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/categories/"+tools.ID.String(), token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204 No Content, got %d", w.Code)
		}
		w = doJSON(r, http.MethodGet, "/categories/"+tools.ID.String(), token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", w.Code)
		}
	})
}

func TestSupplierHandlers(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	acme := createSupplier(r, handler.SupplierRequest{Name: "Acme", Email: strPtr("sales@acme.test"), City: strPtr("Lisbon")})
	createSupplier(r, handler.SupplierRequest{Name: "Globex", Email: strPtr("orders@globex.test")})
	createSupplier(r, handler.SupplierRequest{Name: "Initech", IsActive: boolPtr(false)})

	list := func(t *testing.T, query string) []models.Supplier {
		t.Helper()
		w := doJSON(r, http.MethodGet, "/suppliers"+query, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var suppliers []models.Supplier
		_ = json.NewDecoder(w.Body).Decode(&suppliers)
		return suppliers
	}

	t.Run("New suppliers are active unless stated", func(t *testing.T) {
		if !acme.IsActive {
			t.Error("expected supplier to default to active")
		}
	})

	t.Run("List all", func(t *testing.T) {
		if got := list(t, ""); len(got) != 3 {
			t.Errorf("expected 3 suppliers, got %d", len(got))
		}
	})

	t.Run("Active only", func(t *testing.T) {
		got := list(t, "?active=true")
		if len(got) != 2 || got[0].Name != "Acme" || got[1].Name != "Globex" {
			t.Errorf("expected [Acme Globex], got %v", got)
		}
	})

	t.Run("Search by email", func(t *testing.T) {
		got := list(t, "?search=GLOBEX.test")
		if len(got) != 1 || got[0].Name != "Globex" {
			t.Errorf("expected [Globex], got %v", got)
		}
	})

	t.Run("Invalid active flag", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/suppliers?active=maybe", token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})

	t.Run("Invalid email", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/suppliers", token, handler.SupplierRequest{Name: "Umbrella", Email: strPtr("not-an-email")})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 Bad Request, got %d", w.Code)
		}
		var resp []handler.ValidationError
		_ = json.NewDecoder(w.Body).Decode(&resp)
		if len(resp) != 1 || resp[0].Field != "email" {
			t.Errorf("expected an email validation error, got %v", resp)
		}
	})

	t.Run("Deactivate", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/suppliers/"+acme.ID.String(), token, handler.SupplierRequest{Name: "Acme", IsActive: boolPtr(false)})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if got := list(t, "?active=true"); len(got) != 1 {
			t.Errorf("expected 1 active supplier, got %d", len(got))
		}
	})

	t.Run("Delete unknown", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/suppliers/"+uuid.NewString(), token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 Not Found, got %d", w.Code)
		}
	})
}

func TestCatalogDelete_ClearsProductReferences(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	garden := createCategory(r, "Garden")
	initech := createSupplier(r, handler.SupplierRequest{Name: "Initech"})
	created := mustCreateProduct(r, handler.ProductRequest{
		Name:       "Hose",
		SKU:        "HOS-1",
		CategoryID: &garden.ID,
		SupplierID: &initech.ID,
	})

	for _, path := range []string{"/categories/" + garden.ID.String(), "/suppliers/" + initech.ID.String()} {
		if w := doJSON(r, http.MethodDelete, path, token, nil); w.Code != http.StatusNoContent {
			t.Fatalf("DELETE %s: expected 204 No Content, got %d", path, w.Code)
		}
	}

	w := doJSON(r, http.MethodGet, "/products?category_id="+garden.ID.String(), token, nil)
	var listed handler.ProductsSearchResult
	_ = json.NewDecoder(w.Body).Decode(&listed)
	if len(listed.Data) != 0 {
		t.Errorf("expected no products in the deleted category, got %d", len(listed.Data))
	}

	w = doJSON(r, http.MethodGet, "/products/"+created.ID.String(), token, nil)
	var got handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&got)
	if got.CategoryID != nil || got.SupplierID != nil {
		t.Errorf("expected category and supplier to be cleared, got %v and %v", got.CategoryID, got.SupplierID)
	}

	echo := handler.ProductRequest{Name: got.Name, SKU: got.SKU, CategoryID: got.CategoryID, SupplierID: got.SupplierID}
	if w := doJSON(r, http.MethodPut, "/products/"+created.ID.String(), token, echo); w.Code != http.StatusOK {
		t.Errorf("expected echoed product to save, got %d: %s", w.Code, w.Body.String())
	}
}

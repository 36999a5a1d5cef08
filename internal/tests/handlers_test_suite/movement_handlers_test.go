package handlers_test_suite

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

func TestAdjustQuantityHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	created := mustCreateProduct(r, handler.ProductRequest{Name: "Cable", SKU: "CAB-1", StockQuantity: 20, MinStock: intPtr(5)})

	t.Run("Increase", func(t *testing.T) {
		w := adjustProduct(r, created.ID, handler.QuantityAdjustmentRequest{Delta: 5})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp handler.ProductResponse
		_ = json.NewDecoder(w.Body).Decode(&resp)
		if resp.StockQuantity != 25 {
			t.Errorf("expected 25 units, got %d", resp.StockQuantity)
		}
	})

	t.Run("Decrease into low stock", func(t *testing.T) {
		w := adjustProduct(r, created.ID, handler.QuantityAdjustmentRequest{Delta: -21})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp handler.ProductResponse
		_ = json.NewDecoder(w.Body).Decode(&resp)
		if resp.StockQuantity != 4 || !resp.LowStock {
			t.Errorf("expected 4 units flagged as low stock, got %d (low=%v)", resp.StockQuantity, resp.LowStock)
		}
	})

	t.Run("Below zero is rejected", func(t *testing.T) {
		w := adjustProduct(r, created.ID, handler.QuantityAdjustmentRequest{Delta: -5})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409 Conflict, got %d", w.Code)
		}
	})

	t.Run("Zero delta is rejected", func(t *testing.T) {
		w := adjustProduct(r, created.ID, handler.QuantityAdjustmentRequest{Delta: 0})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})

	t.Run("Unknown product", func(t *testing.T) {
		w := adjustProduct(r, uuid.New(), handler.QuantityAdjustmentRequest{Delta: 1})
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 Not Found, got %d", w.Code)
		}
	})

	t.Run("Each accepted adjustment is logged", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/products/%s/movements", created.ID), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var resp handler.MovementsSearchResult
		_ = json.NewDecoder(w.Body).Decode(&resp)
		// initial stock, +5, -21
		if resp.Meta.TotalCount != 3 {
			t.Errorf("expected 3 movements, got %d", resp.Meta.TotalCount)
		}
	})
}

func TestGetMovementsHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	product, _ := productRepo.Create(t.Context(), models.Product{Name: "Lamp", SKU: "LMP-1", Status: models.StatusActive})
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		addMovement(product.ID, i+1, base.AddDate(0, 0, i))
	}

	path := fmt.Sprintf("/products/%s/movements", product.ID)

	tests := []struct {
		name        string
		query       string
		expectCode  int
		expectTotal int
		expectFirst int
	}{
		{"All newest first", "", http.StatusOK, 5, 5},
		{"Since", "?since=" + url.QueryEscape(base.AddDate(0, 0, 3).Format(time.RFC3339)), http.StatusOK, 2, 5},
		{"Until", "?until=" + url.QueryEscape(base.AddDate(0, 0, 1).Format(time.RFC3339)), http.StatusOK, 2, 2},
		{"Unescaped offset", "?until=2025-07-02T14:00:00+02:00", http.StatusOK, 2, 2},
		{"Limit and offset", "?limit=2&offset=1", http.StatusOK, 5, 4},
		{"Invalid since", "?since=yesterday", http.StatusBadRequest, 0, 0},
		{"Invalid limit", "?limit=0", http.StatusBadRequest, 0, 0},
		{"Negative offset", "?offset=-1", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, path+tt.query, token, nil)
			if w.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d", tt.expectCode, w.Code)
			}
			if tt.expectCode != http.StatusOK {
				return
			}

			var resp handler.MovementsSearchResult
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Meta.TotalCount != tt.expectTotal {
				t.Errorf("expected total %d, got %d", tt.expectTotal, resp.Meta.TotalCount)
			}
			if len(resp.Data) == 0 || resp.Data[0].Delta != tt.expectFirst {
				t.Errorf("expected first delta %d, got %v", tt.expectFirst, resp.Data)
			}
		})
	}

	t.Run("Unknown product", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/products/%s/movements", uuid.New()), token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 Not Found, got %d", w.Code)
		}
	})
}

func TestExportMovementsHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	product, _ := productRepo.Create(t.Context(), models.Product{Name: "Chair", SKU: "CHR-1", Status: models.StatusActive})
	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	addMovement(product.ID, 3, base)
	addMovement(product.ID, -1, base.Add(time.Hour))

	t.Run("CSV", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/products/%s/movements/export?format=csv", product.ID), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("expected text/csv, got %q", ct)
		}

		records, err := csv.NewReader(w.Body).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if records[1][2] != "-1" {
			t.Errorf("expected newest movement first, got %v", records[1])
		}
	})

	t.Run("JSON", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/products/%s/movements/export?format=json", product.ID), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		var movements []models.Movement
		if err := json.NewDecoder(w.Body).Decode(&movements); err != nil {
			t.Fatalf("failed to decode export: %v", err)
		}
		if len(movements) != 2 {
			t.Errorf("expected 2 movements, got %d", len(movements))
		}
	})

	t.Run("Unknown format", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/products/%s/movements/export?format=xml", product.ID), token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 Bad Request, got %d", w.Code)
		}
	})
}

package handlers_test_suite

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/rogerio-castellano/inventory-master/internal/sse"
	"github.com/shopspring/decimal"
)

func refreshDashboard(t *testing.T, r http.Handler) dashboard.Snapshot {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/dashboard/refresh", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK from refresh, got %d", w.Code)
	}
	var snap dashboard.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	return snap
}

func TestDashboardHandler_Stats(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	tools := createCategory(r, "Tools")
	createSupplier(r, handler.SupplierRequest{Name: "Acme"})
	createSupplier(r, handler.SupplierRequest{Name: "Dormant", IsActive: boolPtr(false)})

	hammer := mustCreateProduct(r, handler.ProductRequest{
		Name: "Hammer", SKU: "HAM-1", Price: decimal.NewFromInt(10), StockQuantity: 5, MinStock: intPtr(10), CategoryID: &tools.ID,
	})
	mustCreateProduct(r, handler.ProductRequest{
		Name: "Drill", SKU: "DRL-1", Price: decimal.NewFromInt(20), StockQuantity: 100, MinStock: intPtr(5),
	})
	// inactive products stay out of the dashboard
	mustCreateProduct(r, handler.ProductRequest{
		Name: "Old saw", SKU: "SAW-1", Price: decimal.NewFromInt(1000), StockQuantity: 1000, Status: string(models.StatusInactive),
	})

	snap := refreshDashboard(t, r)

	if snap.Stats.TotalProducts != 2 {
		t.Errorf("expected 2 active products, got %d", snap.Stats.TotalProducts)
	}
	if snap.Stats.LowStockProducts != 1 {
		t.Errorf("expected 1 low stock product, got %d", snap.Stats.LowStockProducts)
	}
	if !snap.Stats.TotalInventoryValue.Equal(decimal.NewFromInt(2050)) {
		t.Errorf("expected inventory value 2050, got %s", snap.Stats.TotalInventoryValue)
	}
	if snap.Stats.AverageStockLevel != 52.5 {
		t.Errorf("expected average stock 52.5, got %v", snap.Stats.AverageStockLevel)
	}
	if snap.Stats.TotalSuppliers != 1 || snap.Stats.TotalCategories != 1 {
		t.Errorf("expected 1 active supplier and 1 category, got %d and %d", snap.Stats.TotalSuppliers, snap.Stats.TotalCategories)
	}

	if len(snap.TopProducts) != 2 || snap.TopProducts[0].Name != "Drill" {
		t.Errorf("expected Drill to lead top products, got %v", snap.TopProducts)
	}
	if len(snap.LowStockItems) != 1 || snap.LowStockItems[0].ID != hammer.ID {
		t.Errorf("expected Hammer as the only low stock item, got %v", snap.LowStockItems)
	}
	if snap.LowStockItems[0].StockPercentage != 50 {
		t.Errorf("expected 50%% of minimum stock, got %v", snap.LowStockItems[0].StockPercentage)
	}
	if len(snap.Categories) != 2 {
		t.Errorf("expected Tools and uncategorized buckets, got %v", snap.Categories)
	}

	total := 0
	for _, b := range snap.StockLevels {
		total += b.Count
	}
	if total != 2 {
		t.Errorf("expected stock levels to cover 2 products, got %d", total)
	}

	if len(snap.Trend) != dashboard.DefaultOptions().TrendDays {
		t.Fatalf("expected %d trend points, got %d", dashboard.DefaultOptions().TrendDays, len(snap.Trend))
	}
	today := snap.Trend[len(snap.Trend)-1]
	if today.UnitsIn != 105 {
		t.Errorf("expected today's units in to cover only active products, got %d", today.UnitsIn)
	}
}

func TestDashboardHandler_ETag(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	mustCreateProduct(r, handler.ProductRequest{Name: "Tape", SKU: "TAP-1", Price: decimal.NewFromInt(3), StockQuantity: 40})
	refreshDashboard(t, r)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}
	if w.Header().Get("Server-Timing") == "" {
		t.Error("expected a Server-Timing header")
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Errorf("expected 304 Not Modified, got %d", w.Code)
	}

	mustCreateProduct(r, handler.ProductRequest{Name: "Glue", SKU: "GLU-1", StockQuantity: 1})
	refreshDashboard(t, r)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 OK after the snapshot changed, got %d", w.Code)
	}
}

func TestDashboardHandler_RequiresToken(t *testing.T) {
	r := api.NewRouter()

	for _, path := range []string{"/dashboard", "/dashboard/stream"} {
		w := doJSON(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 Unauthorized, got %d", path, w.Code)
		}
	}
}

func TestDashboardHandler_LiveRefresh(t *testing.T) {
	t.Cleanup(clearCatalog)
	r := api.NewRouter()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	sub, err := dashboardSvc.Mount(ctx, realtime.NewManager(changes))
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	defer sub.Close()

	before := refreshDashboard(t, r).Stats.TotalProducts
	mustCreateProduct(r, handler.ProductRequest{Name: "Ladder", SKU: "LAD-1", StockQuantity: 3})

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := dashboardSvc.Current(ctx)
		if err == nil && snap.Stats.TotalProducts == before+1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dashboard was not refreshed after a product change")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamDashboardHandler(t *testing.T) {
	t.Cleanup(clearCatalog)
	hub := sse.NewHub()
	handler.SetStreamHub(hub)
	t.Cleanup(func() { handler.SetStreamHub(sse.NewHub()) })

	srv := httptest.NewServer(api.NewRouter())
	defer srv.Close()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/dashboard/stream?access_token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("stream ended: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, _ := nextEvent()
	if event != sse.EventSnapshot {
		t.Fatalf("expected an initial snapshot event, got %q", event)
	}

	publisher := sse.NewSnapshotNotifier(hub)
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	publisher.PublishSnapshot(dashboard.Snapshot{Sequence: 4242})

	event, data := nextEvent()
	if event != sse.EventSnapshot {
		t.Fatalf("expected a snapshot event, got %q", event)
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		t.Fatalf("invalid snapshot payload: %v", err)
	}
	if snap.Sequence != 4242 {
		t.Errorf("expected the published snapshot, got sequence %d", snap.Sequence)
	}
}

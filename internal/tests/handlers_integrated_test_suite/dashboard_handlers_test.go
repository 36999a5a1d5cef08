package handlers_integrated_test_suite

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/shopspring/decimal"
)

func TestDashboardRefresh(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	mustCreate(t, r, handler.ProductRequest{Name: "A", SKU: "A-1", Price: decimal.NewFromInt(10), StockQuantity: 5, MinStock: intPtr(10)})
	mustCreate(t, r, handler.ProductRequest{Name: "B", SKU: "B-1", Price: decimal.NewFromInt(20), StockQuantity: 100, MinStock: intPtr(5)})

	w := doJSON(r, http.MethodPost, "/dashboard/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var snap dashboard.Snapshot
	_ = json.NewDecoder(w.Body).Decode(&snap)

	if snap.Stats.TotalProducts != 2 || snap.Stats.LowStockProducts != 1 {
		t.Errorf("unexpected stats: %+v", snap.Stats)
	}
	if !snap.Stats.TotalInventoryValue.Equal(decimal.NewFromInt(2050)) {
		t.Errorf("expected inventory value 2050, got %s", snap.Stats.TotalInventoryValue)
	}
	if snap.Stats.AverageStockLevel != 52.5 {
		t.Errorf("expected average stock 52.5, got %v", snap.Stats.AverageStockLevel)
	}
}

func TestDashboardFollowsTableNotifications(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := api.NewRouter()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	sub, err := dashboardSvc.Mount(ctx, realtime.NewManager(realtime.NewPGSource(dbURL)))
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	defer sub.Close()

	snap, err := dashboardSvc.Current(ctx)
	if err != nil {
		t.Fatalf("no initial snapshot: %v", err)
	}
	before := snap.Stats.TotalProducts

	mustCreate(t, r, handler.ProductRequest{Name: "Notified", SKU: "NTF-1", StockQuantity: 1})

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := dashboardSvc.Current(ctx)
		if err == nil && snap.Stats.TotalProducts == before+1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("dashboard was not refreshed after a products notification")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func intPtr(v int) *int { return &v }

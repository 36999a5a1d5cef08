package handlers

import (
	"context"

	"github.com/rogerio-castellano/inventory-master/internal/auth"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rogerio-castellano/inventory-master/internal/sse"
)

// DashboardService serves dashboard snapshots.
type DashboardService interface {
	Current(ctx context.Context) (dashboard.Snapshot, error)
	Refresh(ctx context.Context) (dashboard.Snapshot, error)
}

var (
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	supplierRepo repo.SupplierRepository
	movementRepo repo.MovementRepository
	userRepo     repo.UserRepository

	tokenStore       auth.TokenStore = auth.NewMemoryTokenStore()
	dashboardService DashboardService
	streamHub        = sse.NewHub()
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetCategoryRepo(r repo.CategoryRepository) {
	categoryRepo = r
}

func SetSupplierRepo(r repo.SupplierRepository) {
	supplierRepo = r
}

func SetMovementRepo(r repo.MovementRepository) {
	movementRepo = r
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetTokenStore(s auth.TokenStore) {
	tokenStore = s
}

func SetDashboardService(s DashboardService) {
	dashboardService = s
}

func SetStreamHub(h *sse.Hub) {
	streamHub = h
}

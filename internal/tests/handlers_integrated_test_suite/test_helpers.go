package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	"github.com/rogerio-castellano/inventory-master/internal/db"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-master/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "secret-password"
)

var (
	token        string
	database     *sql.DB
	dbURL        string
	productRepo  *repo.PostgresProductRepository
	movementRepo *repo.PostgresMovementRepository
	userRepo     *repo.PostgresUserRepository
	dashboardSvc *dashboard.Service
)

func setupTestRepos(ctx context.Context, url string) error {
	var err error
	database, err = db.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	dbURL = url
	rl.Configure(1000, 1000)

	categoryRepo := repo.NewPostgresCategoryRepository(database)
	handler.SetCategoryRepo(categoryRepo)
	supplierRepo := repo.NewPostgresSupplierRepository(database)
	handler.SetSupplierRepo(supplierRepo)

	productRepo = repo.NewPostgresProductRepository(database)
	handler.SetProductRepo(productRepo)

	movementRepo = repo.NewPostgresMovementRepository(database)
	handler.SetMovementRepo(movementRepo)

	userRepo = repo.NewPostgresUserRepository(database)
	handler.SetUserRepo(userRepo)

	if err := createAdminIfNotExists(ctx); err != nil {
		return err
	}

	dashboardSvc = dashboard.NewService(
		repo.NewDashboardFetcher(productRepo, supplierRepo, categoryRepo, movementRepo),
		dashboard.DefaultOptions(),
		nil,
		nil,
	)
	handler.SetDashboardService(dashboardSvc)
	return nil
}

func createAdminIfNotExists(ctx context.Context) error {
	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		return nil
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	_, err := userRepo.CreateUser(ctx, models.User{
		Email:        adminEmail,
		FullName:     "Admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	return err
}

func generateToken(r http.Handler, email, password string) (string, error) {
	payload := handler.CredentialsRequest{Email: email, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func clearAllProducts() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.ExecContext(ctx, "TRUNCATE TABLE products, categories, suppliers RESTART IDENTITY CASCADE")
	if err != nil {
		fmt.Println(fmt.Errorf("failed to truncate catalog tables: %w", err))
	}
}

func clearAllUsersExceptAdmin() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.ExecContext(ctx, "DELETE FROM users WHERE lower(email) <> lower($1)", adminEmail)
	if err != nil {
		fmt.Println(fmt.Errorf("failed to delete users: %w", err))
	}
}

func doJSON(r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, "/products", p)
}

func adjustProduct(r http.Handler, productID uuid.UUID, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, fmt.Sprintf("/products/%s/adjust", productID), adj)
}

func addMovement(productID uuid.UUID, delta int, at time.Time) {
	query := `INSERT INTO movements (product_id, delta, created_at) VALUES ($1, $2, $3)`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := database.ExecContext(ctx, query, productID, delta, at); err != nil {
		fmt.Println(fmt.Errorf("failed to add movement: %w", err))
	}
}

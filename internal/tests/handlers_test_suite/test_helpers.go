package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	handler "github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-master/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/rogerio-castellano/inventory-master/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	userEmail     = "user@example.com"
	adminPassword = "secret-password"
)

var (
	token     string
	userToken string
	adminID   uuid.UUID
	plainUser models.User

	productRepo  *repo.InMemoryProductRepository
	categoryRepo *repo.InMemoryCategoryRepository
	supplierRepo *repo.InMemorySupplierRepository
	movementRepo *repo.InMemoryMovementRepository
	userRepo     *repo.InMemoryUserRepository
	changes      *realtime.MemorySource
	dashboardSvc *dashboard.Service
)

func init() {
	rl.Configure(1000, 1000)
	setupTestRepos(adminPassword)
	r := api.NewRouter()

	var err error
	token, err = generateToken(r, adminEmail, adminPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	userToken, err = generateToken(r, userEmail, adminPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating user token: %v", err))
	}
}

func setupTestRepos(password string) {
	changes = realtime.NewMemorySource()

	categoryRepo = repo.NewInMemoryCategoryRepository()
	categoryRepo.SetPublisher(changes)
	handler.SetCategoryRepo(categoryRepo)

	supplierRepo = repo.NewInMemorySupplierRepository()
	supplierRepo.SetPublisher(changes)
	handler.SetSupplierRepo(supplierRepo)

	productRepo = repo.NewInMemoryProductRepository()
	productRepo.SetPublisher(changes)
	productRepo.SetLabelSources(categoryRepo, supplierRepo)
	categoryRepo.SetProductRepo(productRepo)
	supplierRepo.SetProductRepo(productRepo)
	handler.SetProductRepo(productRepo)

	movementRepo = repo.NewInMemoryMovementRepository()
	handler.SetMovementRepo(movementRepo)

	userRepo = repo.NewInMemoryUserRepository()
	handler.SetUserRepo(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	admin, _ := userRepo.CreateUser(context.Background(), models.User{
		Email:        adminEmail,
		FullName:     "Admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	adminID = admin.ID
	plainUser, _ = userRepo.CreateUser(context.Background(), models.User{
		Email:        userEmail,
		FullName:     "Regular User",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})

	dashboardSvc = dashboard.NewService(
		repo.NewDashboardFetcher(productRepo, supplierRepo, categoryRepo, movementRepo),
		dashboard.DefaultOptions(),
		nil,
		nil,
	)
	handler.SetDashboardService(dashboardSvc)
}

func clearAllProducts() {
	productRepo.Clear()
	movementRepo.Clear()
}

func clearCatalog() {
	clearAllProducts()
	categoryRepo.Clear()
	supplierRepo.Clear()
}

func generateToken(r http.Handler, email, password string) (string, error) {
	w := login(r, email, password)
	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", w.Code)
	}

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func login(r http.Handler, email, password string) *httptest.ResponseRecorder {
	payload := handler.CredentialsRequest{Email: email, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r http.Handler, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, "/products", token, p)
}

// mustCreateProduct creates p and returns the stored product, panicking on
// anything but 201 so table setups stay short.
func mustCreateProduct(r http.Handler, p handler.ProductRequest) handler.ProductResponse {
	w := createProduct(r, p)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("product creation failed: %d %s", w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func createCategory(r http.Handler, name string) models.Category {
	w := doJSON(r, http.MethodPost, "/categories", token, handler.CategoryRequest{Name: name})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("category creation failed: %d", w.Code))
	}
	var c models.Category
	_ = json.NewDecoder(w.Body).Decode(&c)
	return c
}

func createSupplier(r http.Handler, req handler.SupplierRequest) models.Supplier {
	w := doJSON(r, http.MethodPost, "/suppliers", token, req)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("supplier creation failed: %d", w.Code))
	}
	var s models.Supplier
	_ = json.NewDecoder(w.Body).Decode(&s)
	return s
}

func adjustProduct(r http.Handler, productID uuid.UUID, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, fmt.Sprintf("/products/%s/adjust", productID), token, adj)
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func addMovement(productID uuid.UUID, delta int, at time.Time) {
	movementRepo.AddMovement(productID, delta, at)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	models "github.com/rogerio-castellano/inventory-master/internal/models"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rs/zerolog/log"
)

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, LowStock: p.IsLowStock()}
}

func productFromRequest(req ProductRequest) models.Product {
	p := models.Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           strings.TrimSpace(req.SKU),
		Description:   req.Description,
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		MinStock:      models.DefaultMinStock,
		Status:        models.StatusActive,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.Status != "" {
		p.Status = models.ProductStatus(req.Status)
	}
	return p
}

// logStockChange records a movement so stock history stays complete. Failures
// are logged only; the product write already succeeded.
func logStockChange(r *http.Request, id uuid.UUID, delta int) {
	if delta == 0 {
		return
	}
	if err := movementRepo.Log(r.Context(), id, delta); err != nil {
		log.Error().Err(err).Str("product_id", id.String()).Int("delta", delta).Msg("could not log movement")
	}
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the inventory
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ValidationError
// @Failure 409 {string} string "Duplicated SKU"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors, err := validateProduct(r.Context(), req)
	if err != nil {
		writeRepoError(w, err, "validate product")
		return
	}
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	created, err := productRepo.Create(r.Context(), productFromRequest(req))
	if err != nil {
		writeRepoError(w, err, "create product")
		return
	}
	logStockChange(r, created.ID, created.StockQuantity)

	respond(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List products
// @Description Products ordered by name, with category and supplier names
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or SKU contains (case-insensitive)"
// @Param category_id query string false "Category ID"
// @Param supplier_id query string false "Supplier ID"
// @Param stock query string false "Stock filter (all|low|normal)"
// @Param status query string false "Status (active|inactive|discontinued)"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {string} string "Invalid query"
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repo.ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Stock:  strings.ToLower(q.Get("stock")),
		Status: models.ProductStatus(q.Get("status")),
	}

	for param, target := range map[string]**uuid.UUID{"category_id": &filter.CategoryID, "supplier_id": &filter.SupplierID} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid "+param, http.StatusBadRequest)
			return
		}
		*target = &id
	}

	switch filter.Stock {
	case "", repo.StockFilterAll, repo.StockFilterLow, repo.StockFilterNormal:
	default:
		http.Error(w, "stock must be all, low or normal", http.StatusBadRequest)
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	products, err := productRepo.Filter(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err, "fetch products")
		return
	}

	resp := ProductsSearchResult{
		Data: make([]ProductResponse, len(products)),
		Meta: Meta{TotalCount: len(products)},
	}
	for i, p := range products {
		resp.Data[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, resp)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	product, err := productRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "fetch product")
		return
	}
	respond(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Duplicated SKU"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	validationErrors, err := validateProduct(r.Context(), req)
	if err != nil {
		writeRepoError(w, err, "validate product")
		return
	}
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	product := productFromRequest(req)
	product.ID = id

	updated, stockDelta, err := productRepo.Update(r.Context(), product)
	if err != nil {
		writeRepoError(w, err, "update product")
		return
	}
	logStockChange(r, id, stockDelta)

	respond(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}
	if err := productRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

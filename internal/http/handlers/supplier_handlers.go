package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/inventory-master/internal/models"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
)

func supplierFromRequest(req SupplierRequest) models.Supplier {
	s := models.Supplier{
		Name:        strings.TrimSpace(req.Name),
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return s
}

// CreateSupplierHandler godoc
// @Summary Create a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param supplier body SupplierRequest true "Supplier to add"
// @Success 201 {object} models.Supplier
// @Failure 400 {array} ValidationError
// @Router /suppliers [post]
func CreateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if validationErrors := validateSupplier(req); len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	created, err := supplierRepo.Create(r.Context(), supplierFromRequest(req))
	if err != nil {
		writeRepoError(w, err, "create supplier")
		return
	}
	respond(w, http.StatusCreated, created)
}

// GetSuppliersHandler godoc
// @Summary List suppliers ordered by name
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email contains (case-insensitive)"
// @Param active query bool false "Only active suppliers"
// @Success 200 {array} models.Supplier
// @Failure 400 {string} string "Invalid query"
// @Failure 500 {string} string "Internal error"
// @Router /suppliers [get]
func GetSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	filter := repo.SupplierFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "active must be a boolean", http.StatusBadRequest)
			return
		}
		filter.ActiveOnly = active
	}

	suppliers, err := supplierRepo.List(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err, "fetch suppliers")
		return
	}
	respond(w, http.StatusOK, suppliers)
}

// GetSupplierByIDHandler godoc
// @Summary Get supplier by ID
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /suppliers/{id} [get]
func GetSupplierByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "supplier")
	if !ok {
		return
	}
	supplier, err := supplierRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "fetch supplier")
		return
	}
	respond(w, http.StatusOK, supplier)
}

// UpdateSupplierHandler godoc
// @Summary Update a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Param supplier body SupplierRequest true "Updated supplier"
// @Success 200 {object} models.Supplier
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Not found"
// @Router /suppliers/{id} [put]
func UpdateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "supplier")
	if !ok {
		return
	}

	var req SupplierRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if validationErrors := validateSupplier(req); len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	supplier := supplierFromRequest(req)
	supplier.ID = id
	updated, err := supplierRepo.Update(r.Context(), supplier)
	if err != nil {
		writeRepoError(w, err, "update supplier")
		return
	}
	respond(w, http.StatusOK, updated)
}

// DeleteSupplierHandler godoc
// @Summary Delete a supplier
// @Description Products of the supplier keep existing without a supplier
// @Tags suppliers
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /suppliers/{id} [delete]
func DeleteSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "supplier")
	if !ok {
		return
	}
	if err := supplierRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

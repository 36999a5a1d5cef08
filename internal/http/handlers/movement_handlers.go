package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/models"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rs/zerolog/log"
)

// AdjustQuantityHandler godoc
// @Summary Adjust quantity of a product
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid adjustment"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Quantity cannot be negative"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/adjust [post]
func AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	var req QuantityAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, "delta must not be zero", http.StatusBadRequest)
		return
	}

	product, err := productRepo.AdjustQuantity(r.Context(), id, req.Delta)
	if err != nil {
		writeRepoError(w, err, "update quantity")
		return
	}
	logStockChange(r, id, req.Delta)

	if product.IsLowStock() {
		log.Warn().
			Str("product_id", product.ID.String()).
			Str("name", product.Name).
			Int("stock_quantity", product.StockQuantity).
			Int("min_stock", product.MinStock).
			Msg("product is at or below minimum stock")
	}

	respond(w, http.StatusOK, toProductResponse(product))
}

// restorePlus undoes the form decoding of "+" to " " in an RFC3339 zone
// offset, so 2025-07-03T17:44:03+02:00 survives being sent unescaped.
func restorePlus(s string) string {
	if n := len(s); n == len(time.RFC3339) && s[n-6] == ' ' {
		return s[:n-6] + "+" + s[n-5:]
	}
	return s
}

// movementFilterFrom reads since/until and, when paged is set, limit/offset
// from the query string. The returned message is meant for a 400 response.
func movementFilterFrom(q url.Values, paged bool) (repo.MovementFilter, string) {
	var mf repo.MovementFilter
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"since", &mf.Since}, {"until", &mf.Until}} {
		raw := restorePlus(q.Get(p.key))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mf, "invalid " + p.key + " timestamp, expected RFC3339"
		}
		*p.dst = &ts
	}
	if !paged {
		return mf, ""
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return mf, "limit must be a positive integer"
		}
		mf.Limit = &n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return mf, "offset must be a non-negative integer"
		}
		mf.Offset = &n
	}
	return mf, ""
}

// GetMovementsHandler godoc
// @Summary Get product movement logs
// @Tags movements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/movements [get]
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}
	mf, msg := movementFilterFrom(r.URL.Query(), true)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if _, err := productRepo.GetByID(r.Context(), id); err != nil {
		writeRepoError(w, err, "fetch product")
		return
	}

	movements, total, err := movementRepo.GetByProductID(r.Context(), id, mf)
	if err != nil {
		writeRepoError(w, err, "list movements")
		return
	}

	result := MovementsSearchResult{Data: []MovementResponse{}, Meta: Meta{TotalCount: total}}
	for _, m := range movements {
		result.Data = append(result.Data, MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Delta:     m.Delta,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	respond(w, http.StatusOK, result)
}

// ExportMovementsHandler godoc
// @Summary Export product movement logs
// @Tags movements
// @Produce text/csv, application/json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param format query string true "Export format (csv or json)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id}/movements/export [get]
func ExportMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	q := r.URL.Query()
	write, ok := movementWriters[q.Get("format")]
	if !ok {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}
	mf, msg := movementFilterFrom(q, false)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	movements, _, err := movementRepo.GetByProductID(r.Context(), id, mf)
	if err != nil {
		writeRepoError(w, err, "export movements")
		return
	}
	if err := write(w, movements); err != nil {
		log.Error().Err(err).Str("product_id", id.String()).Msg("movement export interrupted")
	}
}

var movementWriters = map[string]func(http.ResponseWriter, []models.Movement) error{
	"json": writeMovementsJSON,
	"csv":  writeMovementsCSV,
}

func writeMovementsJSON(w http.ResponseWriter, movements []models.Movement) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.json"`)
	return json.NewEncoder(w).Encode(movements)
}

func writeMovementsCSV(w http.ResponseWriter, movements []models.Movement) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "product_id", "delta", "created_at"}); err != nil {
		return err
	}
	for _, m := range movements {
		row := []string{
			strconv.FormatInt(m.ID, 10),
			m.ProductID.String(),
			strconv.Itoa(m.Delta),
			m.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/inventory-master/internal/models"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/shopspring/decimal"
)

var requiredImportColumns = []string{"sku", "name", "price", "stock_quantity"}

type csvRow struct {
	SKU           string
	Name          string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	StockQuantity int
	MinStock      int
}

type csvRecord struct {
	row csvRow
	err error
}

func parseCSV(file io.Reader) ([]csvRecord, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing CSV column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var records []csvRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{
			SKU:      field(record, "sku"),
			Name:     field(record, "name"),
			Cost:     decimal.Zero,
			MinStock: models.DefaultMinStock,
		}
		rec := csvRecord{}
		if row.Price, err = decimal.NewFromString(field(record, "price")); err != nil {
			rec.err = errors.New("invalid price")
		}
		if raw := field(record, "cost"); raw != "" && rec.err == nil {
			if row.Cost, err = decimal.NewFromString(raw); err != nil {
				rec.err = errors.New("invalid cost")
			}
		}
		if row.StockQuantity, err = strconv.Atoi(field(record, "stock_quantity")); err != nil && rec.err == nil {
			rec.err = errors.New("invalid stock_quantity")
		}
		if raw := field(record, "min_stock"); raw != "" && rec.err == nil {
			if row.MinStock, err = strconv.Atoi(raw); err != nil {
				rec.err = errors.New("invalid min_stock")
			}
		}
		rec.row = row
		records = append(records, rec)
	}
	return records, nil
}

func validateRow(r csvRow) error {
	if r.SKU == "" {
		return errors.New("missing sku")
	}
	if r.Name == "" {
		return errors.New("missing name")
	}
	if r.Price.IsNegative() {
		return errors.New("invalid price")
	}
	if r.Cost.IsNegative() {
		return errors.New("invalid cost")
	}
	if r.StockQuantity < 0 {
		return errors.New("invalid stock_quantity")
	}
	if r.MinStock < 0 {
		return errors.New("invalid min_stock")
	}
	return nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: sku, name, price, stock_quantity, and optionally cost and min_stock. Existing SKUs are skipped or updated depending on mode.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 500 {string} string "Internal error"
// @Router /products/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := ImportProductsResult{Errors: []ValidationError{}}
	rowError := func(rowNum int, format string, args ...any) {
		result.Errors = append(result.Errors, ValidationError{
			Field:       fmt.Sprintf("row %d", rowNum),
			Description: fmt.Sprintf(format, args...),
		})
	}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		if rec.err != nil {
			rowError(rowNum, "%v", rec.err)
			continue
		}
		if err := validateRow(rec.row); err != nil {
			rowError(rowNum, "%v", err)
			continue
		}

		existing, err := productRepo.GetBySKU(r.Context(), rec.row.SKU)
		switch {
		case err == nil:
			if mode == "skip" {
				rowError(rowNum, "product '%s' already exists", rec.row.SKU)
				continue
			}
			existing.Name = rec.row.Name
			existing.Price = rec.row.Price
			existing.Cost = rec.row.Cost
			existing.StockQuantity = rec.row.StockQuantity
			existing.MinStock = rec.row.MinStock
			_, delta, err := productRepo.Update(r.Context(), existing)
			if err != nil {
				rowError(rowNum, "failed to update '%s'", rec.row.SKU)
				continue
			}
			logStockChange(r, existing.ID, delta)
			result.UpdatedProductsCount++

		case errors.Is(err, repo.ErrProductNotFound):
			created, err := productRepo.Create(r.Context(), models.Product{
				SKU:           rec.row.SKU,
				Name:          rec.row.Name,
				Price:         rec.row.Price,
				Cost:          rec.row.Cost,
				StockQuantity: rec.row.StockQuantity,
				MinStock:      rec.row.MinStock,
				Status:        models.StatusActive,
			})
			if err != nil {
				rowError(rowNum, "%v", err)
				continue
			}
			logStockChange(r, created.ID, created.StockQuantity)
			result.ImportedProductsCount++

		default:
			rowError(rowNum, "could not look up '%s'", rec.row.SKU)
		}
	}

	respond(w, http.StatusOK, result)
}

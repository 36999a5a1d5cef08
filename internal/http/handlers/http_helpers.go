package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// readJSON decodes exactly one JSON value from a body capped at 1MB.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// respond encodes data as the JSON response body. Encoding failures are
// logged because the status line is already gone.
func respond(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Msg("client went away before response was written")
	}
}

// idParam parses the {id} URL parameter. It writes a 400 and returns false
// when the value is not a uuid.
func idParam(w http.ResponseWriter, r *http.Request, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid "+entity+" ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeRepoError maps repository errors to HTTP statuses. Anything it does
// not recognise is logged and reported as a generic 500.
func writeRepoError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repo.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrCategoryNotFound):
		http.Error(w, "category not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrSupplierNotFound):
		http.Error(w, "supplier not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrDuplicatedValueUnique):
		http.Error(w, "could not "+action+": duplicated value", http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidQuantityChange):
		http.Error(w, "quantity cannot be negative", http.StatusConflict)
	default:
		log.Error().Err(err).Str("action", action).Msg("repository call failed")
		http.Error(w, "could not "+action, http.StatusInternalServerError)
	}
}

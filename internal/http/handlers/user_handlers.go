package handlers

import (
	"net/http"

	mw "github.com/rogerio-castellano/inventory-master/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rs/zerolog/log"
)

// GetUsersHandler godoc
// @Summary List users ordered by name
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {string} string "Internal error"
// @Router /users [get]
func GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := userRepo.List(r.Context())
	if err != nil {
		writeRepoError(w, err, "fetch users")
		return
	}
	respond(w, http.StatusOK, users)
}

// UpdateUserRoleHandler godoc
// @Summary Change a user's role
// @Description Admins cannot change their own role.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param role body RoleUpdateRequest true "New role (admin|user)"
// @Success 200 {object} models.User
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Router /users/{id}/role [put]
func UpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "user")
	if !ok {
		return
	}

	var req RoleUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		http.Error(w, "role must be admin or user", http.StatusBadRequest)
		return
	}

	if current, ok := mw.UserIDFromContext(r.Context()); ok && current == id {
		http.Error(w, "cannot change your own role", http.StatusForbidden)
		return
	}

	updated, err := userRepo.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		writeRepoError(w, err, "update role")
		return
	}

	log.Info().Str("user_id", id.String()).Str("role", updated.Role).Msg("user role changed")
	respond(w, http.StatusOK, updated)
}

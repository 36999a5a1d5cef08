package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/inventory-master/internal/auth"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// RegisterHandler godoc
// @Summary Register new user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "email, password and full name"
// @Success 201 {object} RegisterResult
// @Failure 400 {array} ValidationError
// @Failure 409 {string} string "User exists"
// @Router /register [post]
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds CredentialsRequest
	if err := readJSON(w, r, &creds); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)

	if validationErrors := validateCredentials(creds); len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	user, err := userRepo.CreateUser(r.Context(), models.User{
		Email:        creds.Email,
		FullName:     strings.TrimSpace(creds.FullName),
		PasswordHash: string(hashed),
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		log.Error().Err(err).Msg("failed to register user")
		http.Error(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusCreated, RegisterResult{
		Message: "user registered",
		Token:   token,
	})
}

// LoginHandler godoc
// @Summary Authenticate user and return access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "email and password"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials CredentialsRequest
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	user, err := userRepo.GetByEmail(r.Context(), strings.TrimSpace(credentials.Email))
	if err != nil {
		if !errors.Is(err, repo.ErrUserNotFound) {
			log.Error().Err(err).Msg("could not look up user")
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	result, err := issueTokens(r, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("could not issue tokens")
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, result)
}

// RefreshHandler godoc
// @Summary Exchange a refresh token for a new token pair
// @Description The presented refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "refresh token"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /refresh [post]
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	userID, err := tokenStore.Lookup(r.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, auth.ErrRefreshTokenNotFound) {
			log.Error().Err(err).Msg("could not look up refresh token")
		}
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := userRepo.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	if err := tokenStore.Revoke(r.Context(), req.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("could not revoke refresh token")
	}

	result, err := issueTokens(r, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("could not issue tokens")
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, result)
}

func issueTokens(r *http.Request, user models.User) (LoginResult, error) {
	token, err := auth.GenerateToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	refresh := auth.NewRefreshToken()
	if err := tokenStore.Save(r.Context(), refresh, user.ID, auth.RefreshTokenTTL); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, RefreshToken: refresh}, nil
}

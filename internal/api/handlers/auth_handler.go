package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	middleware "github.com/markdave123-py/pdfcsv/internal/api/middlewares"
	"github.com/markdave123-py/pdfcsv/internal/models"
	"github.com/markdave123-py/pdfcsv/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	secret string
	logger *slog.Logger
}

func NewAuthHandler(users *services.UserService, secret string, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{users: users, secret: secret, logger: logger}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, NewBadRequestError("invalid body", err))
		return
	}

	user, err := h.users.Register(r.Context(), req.FirstName, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		RespondWithError(w, NewBadRequestError(err.Error(), nil))
		return
	case errors.Is(err, services.ErrEmailTaken):
		RespondWithError(w, NewConflictError("user exists"))
		return
	case err != nil:
		h.logger.Error("auth.signup.failed", "error", err)
		RespondWithError(w, NewInternalError("could not create user", nil))
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, NewBadRequestError("invalid body", err))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondWithError(w, NewUnauthorizedError("invalid credentials"))
		return
	case err != nil:
		h.logger.Error("auth.login.failed", "error", err)
		RespondWithError(w, NewInternalError("could not sign in", nil))
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := middleware.IssueToken(h.secret, user.ID, time.Now())
	if err != nil {
		h.logger.Error("auth.token.failed", "error", err)
		RespondWithError(w, NewInternalError("could not issue token", nil))
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: user})
}

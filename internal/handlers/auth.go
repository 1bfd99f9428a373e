package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"memories-backend/internal/domain"
	"memories-backend/internal/service/credential"
	"memories-backend/pkg/api"
	appErrors "memories-backend/pkg/errors"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// AuthHandler serves registration, login and the token check endpoint.
type AuthHandler struct {
	accounts credential.Service
	tokens   TokenIssuer
	errs     ErrorResponder
	logger   *zap.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(accounts credential.Service, tokens TokenIssuer, errs ErrorResponder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, errs: errs, logger: logger}
}

// Register handles POST /auth/register
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body api.RegisterRequest true "Account details"
// @Success 201 {object} api.MessageResponse
// @Failure 400 {object} errors.ErrorResponse "Missing field, bad email, weak password or taken email"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.FirstName, req.Email, req.Password)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, api.MessageResponse{
		Message: fmt.Sprintf("User %s registered successfully", user),
	})
}

// Login handles POST /auth/login
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body api.LoginRequest true "Credentials"
// @Success 200 {object} api.LoginResponse
// @Failure 400 {object} errors.ErrorResponse "Missing email or password"
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.errs.Handle(w, r, appErrors.NewInternalError("Could not issue token").WithCause(err))
		return
	}

	h.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	api.Success(w, http.StatusOK, api.LoginResponse{Message: "Login successful", Token: token})
}

// Protected handles GET /auth/protected
// @Summary Check a bearer token
// @Tags auth
// @Produce json
// @Success 200 {object} api.ProtectedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /auth/protected [get]
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request, user *domain.User) {
	api.Success(w, http.StatusOK, api.ProtectedResponse{
		Message: fmt.Sprintf("Welcome, %s!", user),
		UserID:  user.ID,
		Email:   user.Email,
	})
}

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "admissions/internal/errors"
	"admissions/internal/model"
	"admissions/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken string           `json:"access_token"`
	User        *model.Principal `json:"user"`
}

// RegisterResponse represents a registration response.
type RegisterResponse struct {
	Message string           `json:"message"`
	User    *model.Principal `json:"user"`
}

// Register godoc
// @Summary Register an applicant
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			return errorJSON(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS", map[string][]string{
				"email": {"An account with this email already exists."},
			})
		}
		if errors.Is(err, apperrors.ErrRoleNotFound) {
			return mapError(err)
		}
		return errorJSON(http.StatusInternalServerError, "failed to register user", "REGISTRATION_FAILED", nil)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		User:    user.Principal(),
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	accessToken, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS", nil)
		}
		return errorJSON(http.StatusInternalServerError, "failed to login", "LOGIN_FAILED", nil)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken: accessToken,
		User:        user.Principal(),
	})
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer"))
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return errorJSON(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN", nil)
		}
		return errorJSON(http.StatusInternalServerError, "failed to logout", "LOGOUT_FAILED", nil)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me godoc
// @Summary Current principal
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Principal
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// The account behind a still-valid token is gone.
			return errorJSON(http.StatusUnauthorized, "user no longer exists", "INVALID_TOKEN", nil)
		}
		return mapError(err)
	}

	return c.JSON(http.StatusOK, user.Principal())
}

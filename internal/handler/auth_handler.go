package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"kairos/internal/auth"
	"kairos/internal/errors"
	"kairos/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	issuer      *auth.TokenIssuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{authService: authService, issuer: issuer}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Name     string `json:"name" validate:"max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	OK bool `json:"ok"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.UserProjection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Name, req.Password)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, user.Projection())
}

// Login godoc
// @Summary Log in and receive the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} model.UserProjection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(err)
	}

	c.SetCookie(h.issuer.SessionCookie(token))
	return c.JSON(http.StatusOK, user.Projection())
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Success 200 {object} model.UserProjection
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(errors.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, user.Projection())
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie and revokes the presented token. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} LogoutResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context(), h.issuer.TokenFromRequest(c))
	c.SetCookie(h.issuer.ClearCookie())
	return c.JSON(http.StatusOK, LogoutResponse{OK: true})
}

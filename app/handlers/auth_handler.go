package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authFlow businessflow.AuthFlow
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(),
		authFlow:    authFlow,
	}
}

// Login verifies local credentials and issues a token pair
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.authFlow.Login(h.createRequestContext(c, "/api/v1/auth/login"), &req, h.clientMetadata(c))
	if err != nil {
		// Wrong netid and wrong password are deliberately the same answer
		if businessflow.IsUserNotFound(err) || businessflow.IsIncorrectPassword(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Refresh rotates an access/refresh token pair
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.authFlow.Refresh(h.createRequestContext(c, "/api/v1/auth/refresh"), &req)
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) && businessErr.Code == "INVALID_REFRESH_TOKEN" {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Refresh token is invalid or expired", businessErr.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Token refreshed", result)
}

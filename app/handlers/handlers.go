// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

const defaultRequestTimeout = 30 * time.Second

// BaseHandler carries the pieces every handler shares: the validator and
// the response/context helpers
type BaseHandler struct {
	validator *validator.Validate
}

func NewBaseHandler() BaseHandler {
	return BaseHandler{validator: validator.New()}
}

func (h *BaseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BaseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ValidateRequest runs struct validation and writes the 400 itself; the
// caller just returns on non-nil
func (h *BaseHandler) ValidateRequest(c fiber.Ctx, req any) error {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, getValidationErrorMessage(fe))
			}
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *BaseHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}

// clientMetadata snapshots the request attributes the flows record on
// visits. Fiber hands out zero-copy strings backed by the pooled request
// buffer, and the visit recorder reads the metadata after the handler
// returns, so every value is cloned here.
func (h *BaseHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(strings.Clone(c.IP()), strings.Clone(c.Get("User-Agent")))
	metadata.Referer = strings.Clone(c.Get("Referer"))
	metadata.SetRequestID(strings.Clone(c.Get(businessflow.RequestIDKey)))
	return metadata
}

// sessionNetid reads the identity the auth middleware stored
func (h *BaseHandler) sessionNetid(c fiber.Ctx) string {
	if netid, ok := c.Locals("netid").(string); ok {
		return netid
	}
	return ""
}

func (h *BaseHandler) sessionIsAdmin(c fiber.Ctx) bool {
	isAdmin, _ := c.Locals("is_admin").(bool)
	return isAdmin
}

// uintParam parses a numeric path parameter; the second return value is a
// ready 400 response when parsing fails
func (h *BaseHandler) uintParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid "+name+" parameter", "INVALID_PARAMETER", nil)
	}
	return uint(id), nil
}

// decodeBase32Param decodes a base32 path segment. Entities and ticket ids
// travel base32-encoded because they may contain slashes. Padding is
// tolerated either way.
func decodeBase32Param(raw string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimRight(raw, "="))
	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(trimmed)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

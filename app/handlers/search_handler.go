package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// SearchHandlerInterface defines the contract for search handlers
type SearchHandlerInterface interface {
	Search(c fiber.Ctx) error
}

// SearchHandler handles the typed link search
type SearchHandler struct {
	BaseHandler
	searchFlow businessflow.SearchFlow
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchFlow businessflow.SearchFlow) *SearchHandler {
	return &SearchHandler{
		BaseHandler: NewBaseHandler(),
		searchFlow:  searchFlow,
	}
}

// Search runs a faceted search over the caller's links, or everyone's for
// admins
func (h *SearchHandler) Search(c fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.searchFlow.Search(h.createRequestContext(c, "/api/v1/search"), h.sessionNetid(c), h.sessionIsAdmin(c), &req)
	if err != nil {
		if businessflow.IsForbidden(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Searching all links requires admin privileges", "FORBIDDEN", nil)
		}
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErr.Message, businessErr.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Search failed", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Search completed", result)
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// LinkHandlerInterface defines the contract for link handlers
type LinkHandlerInterface interface {
	CreateLink(c fiber.Ctx) error
	GetLink(c fiber.Ctx) error
	ListLinks(c fiber.Ctx) error
	UpdateLink(c fiber.Ctx) error
	DeleteLink(c fiber.Ctx) error
	AddAlias(c fiber.Ctx) error
	RemoveAlias(c fiber.Ctx) error
}

// LinkHandler handles link CRUD and alias management
type LinkHandler struct {
	BaseHandler
	linkFlow businessflow.LinkFlow
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkFlow businessflow.LinkFlow) *LinkHandler {
	return &LinkHandler{
		BaseHandler: NewBaseHandler(),
		linkFlow:    linkFlow,
	}
}

// CreateLink creates a link and binds its first alias
func (h *LinkHandler) CreateLink(c fiber.Ctx) error {
	var req dto.CreateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.linkFlow.CreateLink(h.createRequestContext(c, "/api/core/link"), h.sessionNetid(c), &req, h.clientMetadata(c))
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Link created", result)
}

// GetLink returns one link with its live aliases
func (h *LinkHandler) GetLink(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.linkFlow.GetLink(h.createRequestContext(c, "/api/core/link/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link retrieved", result)
}

// ListLinks pages through the caller's links
func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.linkFlow.ListLinks(h.createRequestContext(c, "/api/core/link"), h.sessionNetid(c), page, pageSize)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links retrieved", result)
}

// UpdateLink patches mutable link fields
func (h *LinkHandler) UpdateLink(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	var req dto.UpdateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.linkFlow.UpdateLink(h.createRequestContext(c, "/api/core/link/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID, &req)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link updated", result)
}

// DeleteLink soft-deletes a link and frees its aliases
func (h *LinkHandler) DeleteLink(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	err := h.linkFlow.DeleteLink(h.createRequestContext(c, "/api/core/link/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddAlias attaches another alias to an existing link
func (h *LinkHandler) AddAlias(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	var req dto.AddAliasRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.linkFlow.AddAlias(h.createRequestContext(c, "/api/core/link/:id/alias"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID, &req)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Alias added", result)
}

// RemoveAlias detaches one alias from a link
func (h *LinkHandler) RemoveAlias(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}
	alias := c.Params("alias")
	if alias == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid alias parameter", "INVALID_PARAMETER", nil)
	}

	err := h.linkFlow.RemoveAlias(h.createRequestContext(c, "/api/core/link/:id/alias/:alias"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID, alias)
	if err != nil {
		return h.linkErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// linkErrorResponse maps link flow errors onto HTTP statuses
func (h *LinkHandler) linkErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsLinkNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
	case businessflow.IsAliasNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Alias not found", "ALIAS_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission to manage this link", "FORBIDDEN", nil)
	case businessflow.IsAliasTaken(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Alias is already taken", "ALIAS_TAKEN", nil)
	case businessflow.IsAliasReserved(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Alias is reserved", "ALIAS_RESERVED", nil)
	case businessflow.IsInvalidAlias(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Alias contains invalid characters or length", "INVALID_ALIAS", nil)
	case businessflow.IsInvalidURL(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Long URL is invalid", "INVALID_URL", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

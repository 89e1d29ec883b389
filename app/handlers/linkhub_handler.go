package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// LinkHubHandlerInterface defines the contract for LinkHub handlers
type LinkHubHandlerInterface interface {
	CreateLinkHub(c fiber.Ctx) error
	GetLinkHub(c fiber.Ctx) error
	UpdateLinkHub(c fiber.Ctx) error
	DeleteLinkHub(c fiber.Ctx) error
	AddCollaborator(c fiber.Ctx) error
	RemoveCollaborator(c fiber.Ctx) error
}

// LinkHubHandler handles LinkHub CRUD and collaborator management
type LinkHubHandler struct {
	BaseHandler
	linkHubFlow businessflow.LinkHubFlow
}

// NewLinkHubHandler creates a new LinkHub handler
func NewLinkHubHandler(linkHubFlow businessflow.LinkHubFlow) *LinkHubHandler {
	return &LinkHubHandler{
		BaseHandler: NewBaseHandler(),
		linkHubFlow: linkHubFlow,
	}
}

// CreateLinkHub creates a hub and binds its alias
func (h *LinkHubHandler) CreateLinkHub(c fiber.Ctx) error {
	var req dto.CreateLinkHubRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.linkHubFlow.CreateLinkHub(h.createRequestContext(c, "/api/core/linkhub"), h.sessionNetid(c), &req)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "LinkHub created", result)
}

// GetLinkHub returns a hub visible to the caller, collaborators included
func (h *LinkHubHandler) GetLinkHub(c fiber.Ctx) error {
	hubID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.linkHubFlow.GetLinkHub(h.createRequestContext(c, "/api/core/linkhub/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), hubID)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "LinkHub retrieved", result)
}

// UpdateLinkHub patches hub fields; a non-nil links array replaces the list
func (h *LinkHubHandler) UpdateLinkHub(c fiber.Ctx) error {
	hubID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	var req dto.UpdateLinkHubRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.linkHubFlow.UpdateLinkHub(h.createRequestContext(c, "/api/core/linkhub/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), hubID, &req)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "LinkHub updated", result)
}

// DeleteLinkHub soft-deletes a hub and frees its alias
func (h *LinkHubHandler) DeleteLinkHub(c fiber.Ctx) error {
	hubID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	err := h.linkHubFlow.DeleteLinkHub(h.createRequestContext(c, "/api/core/linkhub/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), hubID)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddCollaborator grants a netid or org viewer/editor access
func (h *LinkHubHandler) AddCollaborator(c fiber.Ctx) error {
	hubID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	var req dto.AddCollaboratorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	err := h.linkHubFlow.AddCollaborator(h.createRequestContext(c, "/api/core/linkhub/:id/collaborator"), h.sessionNetid(c), h.sessionIsAdmin(c), hubID, &req)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Collaborator added", nil)
}

// RemoveCollaborator revokes a collaborator grant
func (h *LinkHubHandler) RemoveCollaborator(c fiber.Ctx) error {
	hubID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}
	entityType := c.Params("entity_type")
	entity := c.Params("entity")
	if (entityType != "netid" && entityType != "org") || entity == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid collaborator parameters", "INVALID_PARAMETER", nil)
	}

	err := h.linkHubFlow.RemoveCollaborator(h.createRequestContext(c, "/api/core/linkhub/:id/collaborator/:entity_type/:entity"), h.sessionNetid(c), h.sessionIsAdmin(c), hubID, entityType, entity)
	if err != nil {
		return h.hubErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// hubErrorResponse maps LinkHub flow errors onto HTTP statuses
func (h *LinkHubHandler) hubErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsLinkHubNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "LinkHub not found", "LINKHUB_NOT_FOUND", nil)
	case businessflow.IsOrgNotFound(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Organization does not exist", "ORG_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission on this LinkHub", "FORBIDDEN", nil)
	case businessflow.IsCollaboratorExists(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Collaborator already exists", "COLLABORATOR_EXISTS", nil)
	case businessflow.IsAliasTaken(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Alias is already taken", "ALIAS_TAKEN", nil)
	case businessflow.IsAliasReserved(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Alias is reserved", "ALIAS_RESERVED", nil)
	case businessflow.IsInvalidAlias(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Alias contains invalid characters or length", "INVALID_ALIAS", nil)
	case businessflow.IsInvalidURL(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "A hub link URL is invalid", "INVALID_URL", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

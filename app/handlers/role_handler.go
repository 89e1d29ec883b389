package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// RoleHandlerInterface defines the contract for role grant handlers
type RoleHandlerInterface interface {
	Grant(c fiber.Ctx) error
	Revoke(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// RoleHandler handles role grant administration. Entities travel
// base32-encoded in the path because blocked URLs contain slashes.
type RoleHandler struct {
	BaseHandler
	roleFlow businessflow.RoleFlow
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleFlow businessflow.RoleFlow) *RoleHandler {
	return &RoleHandler{
		BaseHandler: NewBaseHandler(),
		roleFlow:    roleFlow,
	}
}

// Grant assigns a role to an entity; 204 on success
func (h *RoleHandler) Grant(c fiber.Ctx) error {
	role := c.Params("role")
	entity, err := decodeBase32Param(c.Params("entity"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Entity is not valid base32", "INVALID_ENTITY_ENCODING", nil)
	}

	// Body is optional; an empty body means a grant without a comment
	var req dto.GrantRoleRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.ValidateRequest(c, &req); err != nil {
			return err
		}
	}

	err = h.roleFlow.Grant(h.createRequestContext(c, "/api/v1/role/:role/entity/:entity"), h.sessionNetid(c), h.sessionIsAdmin(c), role, entity, &req)
	if err != nil {
		return h.roleErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Revoke removes a grant; revoking an absent grant still answers 204
func (h *RoleHandler) Revoke(c fiber.Ctx) error {
	role := c.Params("role")
	entity, err := decodeBase32Param(c.Params("entity"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Entity is not valid base32", "INVALID_ENTITY_ENCODING", nil)
	}

	err = h.roleFlow.Revoke(h.createRequestContext(c, "/api/v1/role/:role/entity/:entity"), h.sessionNetid(c), h.sessionIsAdmin(c), role, entity)
	if err != nil {
		return h.roleErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List returns every entity currently holding a role
func (h *RoleHandler) List(c fiber.Ctx) error {
	role := c.Params("role")

	result, err := h.roleFlow.List(h.createRequestContext(c, "/api/v1/role/:role"), h.sessionIsAdmin(c), role)
	if err != nil {
		return h.roleErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Role entities retrieved", result)
}

// roleErrorResponse maps role flow errors onto HTTP statuses
func (h *RoleHandler) roleErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Admin privileges required", "FORBIDDEN", nil)
	case businessflow.IsUnknownRole(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", "UNKNOWN_ROLE", nil)
	case businessflow.IsInvalidEntity(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Entity format is invalid for this role", "INVALID_ENTITY", nil)
	case businessflow.IsAlreadyGranted(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Role already granted to entity", "ALREADY_GRANTED", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

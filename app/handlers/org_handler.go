package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// OrgHandlerInterface defines the contract for organization handlers
type OrgHandlerInterface interface {
	CreateOrg(c fiber.Ctx) error
	GetOrg(c fiber.Ctx) error
	ListOrgs(c fiber.Ctx) error
	AddMember(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
	SetMemberAdmin(c fiber.Ctx) error
	DeleteOrg(c fiber.Ctx) error
}

// OrgHandler handles organization and membership management
type OrgHandler struct {
	BaseHandler
	orgFlow businessflow.OrgFlow
}

// NewOrgHandler creates a new organization handler
func NewOrgHandler(orgFlow businessflow.OrgFlow) *OrgHandler {
	return &OrgHandler{
		BaseHandler: NewBaseHandler(),
		orgFlow:     orgFlow,
	}
}

// CreateOrg creates an organization with the caller as first admin
func (h *OrgHandler) CreateOrg(c fiber.Ctx) error {
	var req dto.CreateOrgRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.orgFlow.CreateOrg(h.createRequestContext(c, "/api/v1/org"), h.sessionNetid(c), &req)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Organization created", result)
}

// GetOrg returns one organization with its members
func (h *OrgHandler) GetOrg(c fiber.Ctx) error {
	orgID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.orgFlow.GetOrg(h.createRequestContext(c, "/api/v1/org/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), orgID)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Organization retrieved", result)
}

// ListOrgs lists the caller's organizations, or all of them for admins
func (h *OrgHandler) ListOrgs(c fiber.Ctx) error {
	result, err := h.orgFlow.ListOrgs(h.createRequestContext(c, "/api/v1/org"), h.sessionNetid(c), h.sessionIsAdmin(c))
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Organizations retrieved", result)
}

// AddMember adds a netid to an organization
func (h *OrgHandler) AddMember(c fiber.Ctx) error {
	orgID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	var req dto.AddOrgMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	err := h.orgFlow.AddMember(h.createRequestContext(c, "/api/v1/org/:id/member"), h.sessionNetid(c), h.sessionIsAdmin(c), orgID, &req)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Member added", nil)
}

// RemoveMember removes a member; removing the last admin is rejected
func (h *OrgHandler) RemoveMember(c fiber.Ctx) error {
	orgID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}
	memberNetid := c.Params("netid")
	if memberNetid == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid netid parameter", "INVALID_PARAMETER", nil)
	}

	err := h.orgFlow.RemoveMember(h.createRequestContext(c, "/api/v1/org/:id/member/:netid"), h.sessionNetid(c), h.sessionIsAdmin(c), orgID, memberNetid)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetMemberAdmin promotes or demotes a member; demoting the last admin is
// rejected
func (h *OrgHandler) SetMemberAdmin(c fiber.Ctx) error {
	orgID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}
	memberNetid := c.Params("netid")
	if memberNetid == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid netid parameter", "INVALID_PARAMETER", nil)
	}

	var req dto.SetOrgMemberAdminRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	err := h.orgFlow.SetMemberAdmin(h.createRequestContext(c, "/api/v1/org/:id/member/:netid/admin"), h.sessionNetid(c), h.sessionIsAdmin(c), orgID, memberNetid, &req)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteOrg soft-deletes an organization
func (h *OrgHandler) DeleteOrg(c fiber.Ctx) error {
	orgID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	err := h.orgFlow.DeleteOrg(h.createRequestContext(c, "/api/v1/org/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), orgID)
	if err != nil {
		return h.orgErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// orgErrorResponse maps organization flow errors onto HTTP statuses
func (h *OrgHandler) orgErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsOrgNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORG_NOT_FOUND", nil)
	case businessflow.IsMemberNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Organization admin privileges required", "FORBIDDEN", nil)
	case businessflow.IsOrgNameTaken(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Organization name is already taken", "ORG_NAME_TAKEN", nil)
	case businessflow.IsMemberExists(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Member already exists", "MEMBER_EXISTS", nil)
	case businessflow.IsLastAdmin(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Organization must keep at least one admin", "LAST_ADMIN", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

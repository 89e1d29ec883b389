package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// TicketHandlerInterface defines the contract for ticket handlers
type TicketHandlerInterface interface {
	CreateTicket(c fiber.Ctx) error
	ListTickets(c fiber.Ctx) error
	CloseTicket(c fiber.Ctx) error
	DeleteTicket(c fiber.Ctx) error
}

// TicketHandler handles the ticket lifecycle. Ticket ids travel
// base32-encoded in the path.
type TicketHandler struct {
	BaseHandler
	ticketFlow businessflow.TicketFlow
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketFlow businessflow.TicketFlow) *TicketHandler {
	return &TicketHandler{
		BaseHandler: NewBaseHandler(),
		ticketFlow:  ticketFlow,
	}
}

// CreateTicket submits a request ticket
func (h *TicketHandler) CreateTicket(c fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.ticketFlow.CreateTicket(h.createRequestContext(c, "/api/v1/ticket"), h.sessionNetid(c), &req)
	if err != nil {
		return h.ticketErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Ticket created", result)
}

// ListTickets returns the caller's tickets, or every ticket for admins
func (h *TicketHandler) ListTickets(c fiber.Ctx) error {
	result, err := h.ticketFlow.ListTickets(h.createRequestContext(c, "/api/v1/ticket"), h.sessionNetid(c), h.sessionIsAdmin(c))
	if err != nil {
		return h.ticketErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tickets retrieved", result)
}

// CloseTicket closes an open ticket, optionally granting the requested role
func (h *TicketHandler) CloseTicket(c fiber.Ctx) error {
	ticketUUID, err := decodeBase32Param(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket id is not valid base32", "INVALID_TICKET_ID", nil)
	}

	// Body is optional; an empty body closes without granting
	var req dto.CloseTicketRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	result, err := h.ticketFlow.CloseTicket(h.createRequestContext(c, "/api/v1/ticket/:id"), h.sessionNetid(c), h.sessionIsAdmin(c), ticketUUID, &req)
	if err != nil {
		return h.ticketErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Ticket closed", result)
}

// DeleteTicket lets a creator withdraw their own open ticket
func (h *TicketHandler) DeleteTicket(c fiber.Ctx) error {
	ticketUUID, err := decodeBase32Param(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Ticket id is not valid base32", "INVALID_TICKET_ID", nil)
	}

	err = h.ticketFlow.DeleteTicket(h.createRequestContext(c, "/api/v1/ticket/:id"), h.sessionNetid(c), ticketUUID)
	if err != nil {
		return h.ticketErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ticketErrorResponse maps ticket flow errors onto HTTP statuses
func (h *TicketHandler) ticketErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsTicketNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission on this ticket", "FORBIDDEN", nil)
	case businessflow.IsDuplicateTicket(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "An open ticket for this request already exists", "DUPLICATE_TICKET", nil)
	case businessflow.IsRoleAlreadyHeld(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Requested role is already held", "ROLE_ALREADY_HELD", nil)
	case businessflow.IsUnknownTicketReason(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown ticket reason", "UNKNOWN_REASON", nil)
	case businessflow.IsTicketEntityNeeded(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Entity is required for this reason", "ENTITY_REQUIRED", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

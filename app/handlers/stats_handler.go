package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/plexlink/plexlink/app/dto"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// StatsHandlerInterface defines the contract for statistics handlers
type StatsHandlerInterface interface {
	LinkVisits(c fiber.Ctx) error
	LinkBrowsers(c fiber.Ctx) error
	LinkReferers(c fiber.Ctx) error
	EndpointStats(c fiber.Ctx) error
	OverviewStats(c fiber.Ctx) error
}

// StatsHandler handles per-link and instance-wide statistics
type StatsHandler struct {
	BaseHandler
	statsFlow businessflow.StatsFlow
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(statsFlow businessflow.StatsFlow) *StatsHandler {
	return &StatsHandler{
		BaseHandler: NewBaseHandler(),
		statsFlow:   statsFlow,
	}
}

// LinkVisits returns the total visit count for one link
func (h *StatsHandler) LinkVisits(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.statsFlow.LinkVisitCount(h.createRequestContext(c, "/api/core/link/:id/stats/visits"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID)
	if err != nil {
		return h.statsErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Visit count retrieved", result)
}

// LinkBrowsers returns the browser and platform distribution for one link
func (h *StatsHandler) LinkBrowsers(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.statsFlow.LinkBrowserStats(h.createRequestContext(c, "/api/core/link/:id/stats/browser"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID)
	if err != nil {
		return h.statsErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Browser stats retrieved", result)
}

// LinkReferers returns the normalized referer distribution for one link
func (h *StatsHandler) LinkReferers(c fiber.Ctx) error {
	linkID, errResp := h.uintParam(c, "id")
	if errResp != nil {
		return errResp
	}

	result, err := h.statsFlow.LinkRefererStats(h.createRequestContext(c, "/api/core/link/:id/stats/referer"), h.sessionNetid(c), h.sessionIsAdmin(c), linkID)
	if err != nil {
		return h.statsErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Referer stats retrieved", result)
}

// EndpointStats returns the admin totals snapshot
func (h *StatsHandler) EndpointStats(c fiber.Ctx) error {
	result, err := h.statsFlow.EndpointStats(h.createRequestContext(c, "/api/v1/admin/stats/endpoint"), h.sessionIsAdmin(c))
	if err != nil {
		return h.statsErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Endpoint stats retrieved", result)
}

// OverviewStats returns per-day visit totals for a date range
func (h *StatsHandler) OverviewStats(c fiber.Ctx) error {
	var req dto.OverviewStatsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.ValidateRequest(c, &req); err != nil {
		return err
	}

	result, err := h.statsFlow.OverviewStats(h.createRequestContext(c, "/api/v1/admin/stats/overview"), h.sessionIsAdmin(c), &req)
	if err != nil {
		return h.statsErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Overview stats retrieved", result)
}

// statsErrorResponse maps statistics flow errors onto HTTP statuses
func (h *StatsHandler) statsErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsLinkNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission to view these stats", "FORBIDDEN", nil)
	case businessflow.IsStartDateAfterEndDate(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date must be before end date", "INVALID_DATE_RANGE", nil)
	default:
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Operation failed", "INTERNAL_ERROR", nil)
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/plexlink/plexlink/business_flow"
)

// RedirectHandlerInterface defines the contract for public resolution handlers
type RedirectHandlerInterface interface {
	Redirect(c fiber.Ctx) error
	ResolveLinkHub(c fiber.Ctx) error
	TrackingPixel(c fiber.Ctx) error
}

// RedirectHandler serves the public alias surface: redirects, hub pages,
// and tracking pixels
type RedirectHandler struct {
	BaseHandler
	visitFlow   businessflow.VisitFlow
	linkHubFlow businessflow.LinkHubFlow
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(visitFlow businessflow.VisitFlow, linkHubFlow businessflow.LinkHubFlow) *RedirectHandler {
	return &RedirectHandler{
		BaseHandler: NewBaseHandler(),
		visitFlow:   visitFlow,
		linkHubFlow: linkHubFlow,
	}
}

// Redirect resolves an alias to its long URL and issues a 302. Absent,
// deleted, expired, and blocked aliases all answer 404.
func (h *RedirectHandler) Redirect(c fiber.Ctx) error {
	alias := c.Params("alias")
	if alias == "" {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
	}

	longURL, err := h.visitFlow.ResolveLink(h.createRequestContext(c, "/:alias"), alias, h.clientMetadata(c))
	if err != nil {
		if businessflow.IsAliasNotFound(err) || businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Resolution failed", "INTERNAL_ERROR", nil)
	}

	return c.Redirect().Status(fiber.StatusFound).To(longURL)
}

// ResolveLinkHub serves the public hub page as JSON
func (h *RedirectHandler) ResolveLinkHub(c fiber.Ctx) error {
	alias := c.Params("alias")
	if alias == "" {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
	}

	result, err := h.linkHubFlow.ResolveLinkHub(h.createRequestContext(c, "/h/:alias"), alias)
	if err != nil {
		if businessflow.IsLinkHubNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Resolution failed", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "LinkHub resolved", result)
}

// TrackingPixel serves the 1x1 image for a tracking-pixel link and records
// the visit. The image name travels in the X-Image-Name header.
func (h *RedirectHandler) TrackingPixel(c fiber.Ctx) error {
	alias := c.Params("alias")
	if alias == "" {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
	}

	result, err := h.visitFlow.ResolvePixel(h.createRequestContext(c, "/api/core/t/:alias"), alias, h.clientMetadata(c))
	if err != nil {
		if businessflow.IsAliasNotFound(err) || businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", "NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Resolution failed", "INTERNAL_ERROR", nil)
	}

	c.Set("X-Image-Name", result.ImageName)
	c.Set("Content-Type", result.ContentType)
	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).Send(result.Body)
}

// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/app/handlers"
	"github.com/plexlink/plexlink/app/middleware"
	"github.com/plexlink/plexlink/config"
	"github.com/plexlink/plexlink/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every handler the router mounts
type Handlers struct {
	Auth     handlers.AuthHandlerInterface
	Link     handlers.LinkHandlerInterface
	LinkHub  handlers.LinkHubHandlerInterface
	Redirect handlers.RedirectHandlerInterface
	Role     handlers.RoleHandlerInterface
	Org      handlers.OrgHandlerInterface
	Ticket   handlers.TicketHandlerInterface
	Stats    handlers.StatsHandlerInterface
	Search   handlers.SearchHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      *config.ProductionConfig
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, auth *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Plexlink API",
		ServerHeader: "Plexlink",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		cfg:      cfg,
		handlers: h,
		auth:     auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		path := r.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.AuthRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/refresh", r.handlers.Auth.Refresh)

	// Core link/hub API
	core := r.app.Group("/api/core")

	// Tracking pixels are public
	core.Get("/t/:alias", r.handlers.Redirect.TrackingPixel)

	authed := core.Group("", r.auth.Authenticate())
	authed.Post("/link", r.handlers.Link.CreateLink)
	authed.Get("/link", r.handlers.Link.ListLinks)
	authed.Get("/link/:id", r.handlers.Link.GetLink)
	authed.Patch("/link/:id", r.handlers.Link.UpdateLink)
	authed.Delete("/link/:id", r.handlers.Link.DeleteLink)
	authed.Post("/link/:id/alias", r.handlers.Link.AddAlias)
	authed.Delete("/link/:id/alias/:alias", r.handlers.Link.RemoveAlias)
	authed.Get("/link/:id/stats/visits", r.handlers.Stats.LinkVisits)
	authed.Get("/link/:id/stats/browser", r.handlers.Stats.LinkBrowsers)
	authed.Get("/link/:id/stats/referer", r.handlers.Stats.LinkReferers)

	authed.Post("/linkhub", r.handlers.LinkHub.CreateLinkHub)
	authed.Get("/linkhub/:id", r.handlers.LinkHub.GetLinkHub)
	authed.Patch("/linkhub/:id", r.handlers.LinkHub.UpdateLinkHub)
	authed.Delete("/linkhub/:id", r.handlers.LinkHub.DeleteLinkHub)
	authed.Post("/linkhub/:id/collaborator", r.handlers.LinkHub.AddCollaborator)
	authed.Delete("/linkhub/:id/collaborator/:entity_type/:entity", r.handlers.LinkHub.RemoveCollaborator)

	// Authenticated v1 routes
	v1 := api.Group("", r.auth.Authenticate())
	v1.Post("/search", r.handlers.Search.Search)

	v1.Post("/ticket", r.handlers.Ticket.CreateTicket)
	v1.Get("/ticket", r.handlers.Ticket.ListTickets)
	v1.Put("/ticket/:id", r.handlers.Ticket.CloseTicket)
	v1.Delete("/ticket/:id", r.handlers.Ticket.DeleteTicket)

	v1.Post("/org", r.handlers.Org.CreateOrg)
	v1.Get("/org", r.handlers.Org.ListOrgs)
	v1.Get("/org/:id", r.handlers.Org.GetOrg)
	v1.Delete("/org/:id", r.handlers.Org.DeleteOrg)
	v1.Post("/org/:id/member", r.handlers.Org.AddMember)
	v1.Delete("/org/:id/member/:netid", r.handlers.Org.RemoveMember)
	v1.Put("/org/:id/member/:netid/admin", r.handlers.Org.SetMemberAdmin)

	// Admin-only routes
	admin := api.Group("", r.auth.AdminAuthenticate())
	admin.Put("/role/:role/entity/:entity", r.handlers.Role.Grant)
	admin.Delete("/role/:role/entity/:entity", r.handlers.Role.Revoke)
	admin.Get("/role/:role", r.handlers.Role.List)
	admin.Get("/admin/stats/endpoint", r.handlers.Stats.EndpointStats)
	admin.Post("/admin/stats/overview", r.handlers.Stats.OverviewStats)

	// Public hub pages
	r.app.Get("/h/:alias", r.handlers.Redirect.ResolveLinkHub)

	// The redirect catch-all must be mounted after every other route
	r.app.Get("/:alias", r.handlers.Redirect.Redirect)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Image-Name"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.Level(r.cfg.Server.CompressionLevel),
			Next: func(c fiber.Ctx) bool {
				contentType := c.Get("Content-Type")
				return contains(contentType, "image/")
			},
		}))
	}

	// Prometheus request metrics
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Structured access logging
	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health"
			},
		}))
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start begins listening for requests
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "plexlink-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

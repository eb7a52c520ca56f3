package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/api/http/handlers"
	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireSession(), cfg.Auth.Logout)

	app.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireSession(), cfg.Auth.Me)

	user := app.Group("/user", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleUser))
	user.Get("/dashboard", cfg.Tickets.Dashboard)
	user.Get("/tickets/:id", cfg.Tickets.GetTicket)
	user.Put("/tickets/:id", cfg.Tickets.UpdateTicket)
	user.Post("/tickets", cfg.Tickets.CreateTicket)
	user.Get("/teams/:team/users", cfg.Tickets.TeamUsers)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/tickets/:id", cfg.Admin.GetTicket)
	admin.Put("/tickets/:id", cfg.Admin.UpdateTicket)
	admin.Get("/tickets/:id/audit", cfg.Admin.AuditTrail)
	admin.Post("/users", cfg.Admin.CreateUser)
}

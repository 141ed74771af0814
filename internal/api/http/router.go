package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	AttentionPoints *handlers.AttentionPointsHandler
	Requesters      *handlers.RequestersHandler
	Statistics      *handlers.StatisticsHandler
	Staff           *handlers.StaffHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Intake and read endpoints are
// public; lifecycle transitions require staff and fleet or priority
// administration requires the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/auth/staff/login", cfg.Staff.Login)
	app.Post("/staff", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.StaffRoleAdmin), cfg.Staff.CreateStaff)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	staffOnly := tickets.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyStaff())
	staffOnly.Post("/:id/advance", cfg.Tickets.AdvanceTicket)
	staffOnly.Post("/:id/close", cfg.Tickets.CloseTicket)

	points := app.Group("/attention-points")
	points.Get("", cfg.AttentionPoints.ListAttentionPoints)
	points.Post("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.StaffRoleAdmin), cfg.AttentionPoints.CreateAttentionPoint)

	requesters := app.Group("/requesters")
	requesters.Post("", cfg.Requesters.Register)
	requesters.Patch("/:national_id/priority", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.StaffRoleAdmin), cfg.Requesters.UpdatePriority)

	stats := app.Group("/statistics")
	stats.Get("/tickets", cfg.Statistics.TicketStatistics)
	stats.Get("/dashboard", cfg.Statistics.DashboardStatistics)
	stats.Get("/attention-points", cfg.Statistics.AttentionPointStatistics)
}

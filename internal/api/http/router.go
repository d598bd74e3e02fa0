package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loto-fleet/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Lockers *handlers.LockersHandler
	Admin   *handlers.AdminHandler
	History *handlers.HistoryHandler
}

// RegisterRoutes wires HTTP routes. The three groups mirror the operational,
// admin and history views of the fleet UI.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	lockers := app.Group("/lockers")
	lockers.Get("/", cfg.Lockers.ListLockers)
	lockers.Get("/:id", cfg.Lockers.GetLocker)
	lockers.Post("/:id/transition", cfg.Lockers.RequestTransition)

	admin := app.Group("/admin/lockers")
	admin.Post("/", cfg.Admin.Provision)
	admin.Post("/bulk", cfg.Admin.BulkProvision)
	admin.Put("/:id/status", cfg.Admin.ForceStatus)
	admin.Delete("/:id", cfg.Admin.DeleteLocker)

	history := app.Group("/history")
	history.Get("/", cfg.History.Feed)
	history.Get("/export", cfg.History.ExportCSV)
}

package routes

import (
	"conversion-analytics/internal/controller"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register attaches all HTTP routes to the Fiber app.
func Register(app *fiber.App, eventController controller.EventController) {
	app.Post("/events", eventController.CreateEvent)
	app.Get("/metrics", eventController.GetMetrics)
	app.Get("/metrics/prometheus", adaptor.HTTPHandler(promhttp.Handler()))

	sessions := app.Group("/sessions")
	sessions.Post("/", eventController.StartSession)
	sessions.Get("/current", eventController.CurrentSession)
	sessions.Delete("/current", eventController.EndSession)

	app.Post("/scroll", eventController.Scroll)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

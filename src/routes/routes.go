package routes

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"matchbook/src/handlers"
	"matchbook/src/middleware"
)

func SetupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler) {
	serviceAvailability := middleware.DefaultServiceAvailability()
	app.Use(serviceAvailability.Middleware())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if os.Getenv("RATE_LIMIT_DISABLED") != "1" {
		maxRequests := 100
		if envMax := os.Getenv("RATE_LIMIT_MAX"); envMax != "" {
			if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
				maxRequests = parsed
			}
		}
		window := time.Second
		if envWindow := os.Getenv("RATE_LIMIT_WINDOW"); envWindow != "" {
			if parsed, err := time.ParseDuration(envWindow); err == nil && parsed > 0 {
				window = parsed
			}
		}
		api.Use(middleware.NewRateLimiter(maxRequests, window).Middleware())
	}

	api.Post("/orders", orderHandler.SubmitOrder)
	api.Put("/orders/:id", orderHandler.AmendOrder)
	api.Delete("/orders/:id", orderHandler.CancelOrder)
	api.Get("/orders/:id", orderHandler.GetOrderStatus)
	api.Get("/orderbook/:ticker", orderHandler.GetOrderBook)
	api.Get("/orderbook/:ticker/render", orderHandler.RenderOrderBook)

	app.Get("/health", orderHandler.HealthCheck)
	app.Get("/metrics", orderHandler.Metrics)
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"matchbook/src/engine"
	"matchbook/src/handlers"
	"matchbook/src/logger"
	"matchbook/src/replay"
	"matchbook/src/routes"
)

func main() {
	log := logger.Init()
	defer logger.Close()

	log.Info().Msg("Initializing matchbook")

	ex := engine.NewExchange(engine.DefaultPlugins...)

	// REPLAY_FILE preloads one ticker's book from a historical message
	// feed before the server starts taking orders.
	if file := os.Getenv("REPLAY_FILE"); file != "" {
		ticker := os.Getenv("REPLAY_TICKER")
		if ticker == "" {
			ticker = "REPLAY"
		}
		var scale int64
		if env := os.Getenv("PRICE_SCALE"); env != "" {
			if parsed, err := strconv.ParseInt(env, 10, 64); err == nil && parsed > 0 {
				scale = parsed
			}
		}

		fp, err := os.Open(file)
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Cannot open replay file")
		}
		stats, err := replay.Replay(ex, ticker, fp, scale)
		_ = fp.Close()
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Replay failed")
		}
		log.Info().
			Str("ticker", ticker).
			Int("submitted", stats.Submitted).
			Int("fills", stats.Fills).
			Str("book", ex.Render(ticker)).
			Msg("Replay loaded")
	}

	orderHandler := handlers.NewOrderHandler(ex)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, orderHandler)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	go func() {
		if err := app.Listen(port); err != nil {
			log.Fatal().
				Err(err).
				Str("port", port).
				Msg("Server failed to start")
		}
	}()

	log.Info().Str("port", port).Msg("matchbook started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info().Msg("Received shutdown signal, shutting down...")

	shutdownTimeout := 10 * time.Second
	if env := os.Getenv("SHUTDOWN_TIMEOUT"); env != "" {
		if parsed, err := time.ParseDuration(env); err == nil && parsed > 0 {
			shutdownTimeout = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Dur("timeout", shutdownTimeout).Msg("Shutdown timeout exceeded")
		} else {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}
}

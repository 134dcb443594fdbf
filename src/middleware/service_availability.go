package middleware

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ServiceAvailability gates requests behind a maintenance switch and an
// optional in-flight request ceiling. Health checks always pass.
type ServiceAvailability struct {
	maintenance atomic.Bool
	maxInFlight int64
	inFlight    atomic.Int64
}

func NewServiceAvailability(maxInFlight int64) *ServiceAvailability {
	sa := &ServiceAvailability{maxInFlight: maxInFlight}
	if os.Getenv("MAINTENANCE_MODE") == "1" {
		sa.maintenance.Store(true)
		log.Warn().Msg("Service is in maintenance mode - all requests will return 503")
	}
	return sa
}

func DefaultServiceAvailability() *ServiceAvailability {
	var maxInFlight int64
	if env := os.Getenv("MAX_CONCURRENT_REQUESTS"); env != "" {
		if parsed, err := strconv.ParseInt(env, 10, 64); err == nil && parsed > 0 {
			maxInFlight = parsed
			log.Info().
				Int64("max_concurrent_requests", maxInFlight).
				Msg("Server overload detection enabled")
		}
	}
	return NewServiceAvailability(maxInFlight)
}

func (sa *ServiceAvailability) SetMaintenanceMode(enabled bool) {
	sa.maintenance.Store(enabled)
	if enabled {
		log.Warn().Msg("Service maintenance mode enabled")
	} else {
		log.Info().Msg("Service maintenance mode disabled")
	}
}

func (sa *ServiceAvailability) IsMaintenanceMode() bool {
	return sa.maintenance.Load()
}

func (sa *ServiceAvailability) InFlightRequests() int64 {
	return sa.inFlight.Load()
}

func (sa *ServiceAvailability) Middleware() fiber.Handler {
	unavailable := func(c *fiber.Ctx, message string) error {
		log.Warn().
			Str("path", c.Path()).
			Str("method", c.Method()).
			Str("ip", c.IP()).
			Msg("Request rejected: " + message)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "Service unavailable",
			"message": message,
			"code":    fiber.StatusServiceUnavailable,
		})
	}

	return func(c *fiber.Ctx) error {
		// edge case: health check always available
		if c.Path() == "/health" {
			return c.Next()
		}

		if sa.maintenance.Load() {
			return unavailable(c, "service in maintenance mode")
		}

		if sa.maxInFlight > 0 && sa.inFlight.Load() >= sa.maxInFlight {
			return unavailable(c, "service overloaded")
		}

		sa.inFlight.Add(1)
		defer sa.inFlight.Add(-1)

		return c.Next()
	}
}

package shared

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const ProductionEnv = "production"

// DevOnlyMiddleware rejects requests when the service runs in production.
func DevOnlyMiddleware(appEnv string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if appEnv == ProductionEnv {
			slog.Error("Trying request to dev endpoint in production", "path", ctx.Path())
			return fiber.NewError(fiber.StatusServiceUnavailable, "dev endpoint is unavailable")
		}

		return ctx.Next()
	}
}

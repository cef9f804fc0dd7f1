package middlewares

import (
	"errors"
	"time"

	helper "gerejaku_backend/internals/helpers"
	"gerejaku_backend/internals/middlewares/logger"
	"gerejaku_backend/internals/middlewares/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// SetupMiddlewares installs the global chain, outermost first.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.RequestID(5 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(metrics.Middleware())
	app.Use(CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
}

// ErrorHandler renders errors returned by handlers and middlewares in the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound && fe.Message == fiber.ErrNotFound.Message {
		return helper.JsonError(c, fiber.StatusNotFound, "Route not found")
	}
	return helper.FromFiberError(c, err)
}

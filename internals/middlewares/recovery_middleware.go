package middlewares

import (
	"fmt"

	"gerejaku_backend/internals/configs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RecoveryMiddleware turns panics into 500s; the stack goes to the log only.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			configs.Log.WithField("path", c.Path()).
				WithField("request_id", c.Locals("requestid")).
				Error(fmt.Sprintf("[PANIC] %v", e))
		},
	})
}

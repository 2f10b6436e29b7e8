package router

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware allows the origins listed in CORS_ORIGIN (comma separated).
// Unset means open, which suits local development.
func CorsMiddleware() fiber.Handler {
	origins := strings.TrimSpace(os.Getenv("CORS_ORIGIN"))
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	})
}

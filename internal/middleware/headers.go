package middleware

import (
	"github.com/gofiber/fiber/v3"
)

const VersionHeader = "X-Posturai-Version"

// Version stamps every response with the running build version.
func Version(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set(VersionHeader, version)
		return c.Next()
	}
}

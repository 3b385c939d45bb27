// Package httpx holds small response and request helpers for fiber handlers.
package httpx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
)

// ErrorBody is the standard error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON payload with the provided status code.
func JSON(c fiber.Ctx, status int, payload any) error {
	if err := c.Status(status).JSON(payload); err != nil {
		logging.L().Warn("failed to encode JSON response", zap.Error(err))
		return err
	}
	return nil
}

// Error writes a standard error envelope.
func Error(c fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorBody{Error: message})
}

// ReadJSON decodes the request body as JSON into dst.
func ReadJSON(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errors.New("request body is empty")
	}
	return c.Bind().JSON(dst)
}

// QueryInt fetches an integer query parameter. ok is false when the value
// is present but not an integer.
func QueryInt(c fiber.Ctx, key string, defaultValue int) (value int, ok bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return defaultValue, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue, false
	}
	return parsed, true
}

// QueryString fetches a query string parameter with a default value.
func QueryString(c fiber.Ctx, key, defaultValue string) string {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// WantsJSON reports whether the client prefers JSON over HTML.
func WantsJSON(c fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

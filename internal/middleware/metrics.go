// Package middleware holds the fiber middleware shared by every route.
package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/posturai/internal/metrics"
)

// RequestMetrics records request counts, durations and in-flight requests
// labelled by the matched route pattern.
func RequestMetrics(m *metrics.Manager) fiber.Handler {
	return func(c fiber.Ctx) error {
		begin := time.Now()
		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()

		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		m.CounterRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

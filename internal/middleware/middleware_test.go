package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/posturai/internal/metrics"
)

func TestRequestMetricsLabelsByRoute(t *testing.T) {
	m := metrics.NewTestManager()
	app := fiber.New()
	app.Use(RequestMetrics(m))
	app.Get("/chat/:topic", func(c fiber.Ctx) error {
		return c.SendString(c.Params("topic"))
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream down")
	})

	for _, path := range []string{"/chat/tips", "/chat/breaks", "/boom"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "/chat/:topic", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "/boom", "502")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GaugeRequests))
}

func TestVersionHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Version("1.2.3"))
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", resp.Header.Get(VersionHeader))
}

func TestTrustedOriginsAllowed(t *testing.T) {
	trusted := NewTrustedOrigins([]string{"dashboard.example.com", "localhost:5173"})

	assert.True(t, trusted.Allowed("https://dashboard.example.com", "api.local"))
	assert.True(t, trusted.Allowed("http://localhost:5173", "api.local"))
	assert.True(t, trusted.Allowed("http://api.local:3000", "api.local:3000"))
	assert.False(t, trusted.Allowed("http://localhost:8080", "api.local"))
	assert.False(t, trusted.Allowed("https://evil.test", "api.local"))
	assert.False(t, trusted.Allowed("not a url", "api.local"))

	trusted.Set([]string{"evil.test"})
	assert.True(t, trusted.Allowed("https://evil.test", "api.local"))
	assert.False(t, trusted.Allowed("https://dashboard.example.com", "api.local"))
}

func TestRequireTrustedOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(RequireTrustedOrigin(NewTrustedOrigins([]string{"localhost"})))
	app.All("/api/chat", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		name   string
		method string
		origin string
		status int
	}{
		{"get from anywhere", http.MethodGet, "https://evil.test", fiber.StatusOK},
		{"post without origin", http.MethodPost, "", fiber.StatusOK},
		{"post from trusted host", http.MethodPost, "http://localhost:5173", fiber.StatusOK},
		{"post from untrusted host", http.MethodPost, "https://evil.test", fiber.StatusForbidden},
		{"delete from untrusted host", http.MethodDelete, "https://evil.test", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/chat", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

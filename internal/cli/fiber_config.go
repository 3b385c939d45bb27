//go:build !docker

package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string, views fiber.Views) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Views:        views,
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
		TrustProxy:  true,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Loopback: true,
		},
	}
}

// createListenConfig returns the listener options.
func createListenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{
		DisableStartupMessage: false,
	}
}

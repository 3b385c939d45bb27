//go:build docker

package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration for Docker deployments.
// The container sits behind a proxy on the private network.
func createFiberConfig(appName string, views fiber.Views) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Views:        views,
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
		ProxyHeader:  fiber.HeaderXForwardedFor,
		TrustProxy:   true,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Loopback: true,
			Private:  true,
		},
	}
}

// createListenConfig returns the listener options. Container logs only
// carry structured entries.
func createListenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{
		DisableStartupMessage: true,
	}
}

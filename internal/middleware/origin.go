package middleware

import (
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/posturai/internal/httpx"
)

// TrustedOrigins is the set of hosts allowed to post to the API from a
// browser.
type TrustedOrigins struct {
	mu    sync.RWMutex
	hosts map[string]struct{}
}

func NewTrustedOrigins(hosts []string) *TrustedOrigins {
	t := &TrustedOrigins{}
	t.Set(hosts)
	return t
}

// Set replaces the trusted hosts.
func (t *TrustedOrigins) Set(hosts []string) {
	next := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		next[strings.ToLower(h)] = struct{}{}
	}
	t.mu.Lock()
	t.hosts = next
	t.mu.Unlock()
}

// Allowed reports whether the Origin header value is trusted. The request's
// own host is always trusted.
func (t *TrustedOrigins) Allowed(origin, requestHost string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	if host == strings.ToLower(requestHost) {
		return true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.hosts[host]; ok {
		return true
	}
	_, ok := t.hosts[strings.ToLower(u.Hostname())]
	return ok
}

// RequireTrustedOrigin rejects cross-site state-changing requests. Requests
// without an Origin header (curl, server to server) pass.
func RequireTrustedOrigin(trusted *TrustedOrigins) fiber.Handler {
	return func(c fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || trusted.Allowed(origin, c.Host()) {
			return c.Next()
		}
		return httpx.Error(c, fiber.StatusForbidden, "origin not allowed")
	}
}

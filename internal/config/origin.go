package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
)

var ErrInvalidOrigin = errors.New("invalid trusted origin")

// SanitizeTrustedDomain reduces a trusted origin to its lowercase
// host[:port]. A scheme and a bare trailing slash are accepted; paths,
// queries, fragments and wildcards are not.
func SanitizeTrustedDomain(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidOrigin)
	}
	for _, scheme := range []string{"http://", "https://"} {
		host = strings.TrimPrefix(host, scheme)
	}
	host = strings.TrimSuffix(host, "/")

	switch {
	case strings.ContainsAny(host, " \t\r\n"):
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidOrigin, raw)
	case strings.Contains(host, "*"):
		return "", fmt.Errorf("%w: %q uses a wildcard", ErrInvalidOrigin, raw)
	}

	u, err := url.Parse("http://" + host)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidOrigin, raw, err)
	}
	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", fmt.Errorf("%w: %q must be a bare host", ErrInvalidOrigin, raw)
	}
	return u.Host, nil
}

// ParseTrustedOrigins splits a comma separated list. Valid hosts are
// returned in order together with every rejected entry.
func ParseTrustedOrigins(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return []string{}, nil
	}

	var errs error
	parts := strings.Split(list, ",")
	hosts := make([]string, 0, len(parts))
	for _, part := range parts {
		host, err := SanitizeTrustedDomain(part)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts, errs
}

// parseTrustedOrigins keeps the valid hosts and logs the rest.
func parseTrustedOrigins(list string) []string {
	hosts, err := ParseTrustedOrigins(list)
	for _, e := range multierr.Errors(err) {
		logging.L().Warn("ignoring trusted origin", zap.Error(e))
	}
	return hosts
}

// AllowedOrigins turns the trusted hosts into CORS origins for both schemes.
func (c *Config) AllowedOrigins() []string {
	out := make([]string, 0, len(c.TrustedOrigins)*2)
	for _, host := range c.TrustedOrigins {
		out = append(out, "http://"+host, "https://"+host)
	}
	return out
}

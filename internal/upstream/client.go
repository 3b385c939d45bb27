// Package upstream talks to the posture monitoring backend: statistics,
// the alert feed and the PosturAI chat endpoint.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/metrics"
	"github.com/seuros/posturai/internal/posture"
)

const (
	statsPath  = "/api/posture-stats"
	chatPath   = "/chat_ai"
	alertsPath = "/get_alerts_data"

	cacheSize = 8 * 1024 * 1024
)

var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrInvalidDays      = errors.New("days must be positive")
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Endpoint string
	Status   int
	// Message is the error or reply text of the response body, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// ChatRequest is the question forwarded to the assistant.
type ChatRequest struct {
	Question string `json:"question"`
	Topic    string `json:"topic,omitempty"`
	Context  string `json:"context,omitempty"`
}

// ChatResponse is the assistant answer.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Alerts is the latest alert feed, newest first.
type Alerts struct {
	Alerts []string `json:"alerts"`
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Metrics  *metrics.Manager
}

// Client is safe for concurrent use.
type Client struct {
	baseURL  string
	timeout  time.Duration
	cacheTTL int
	cache    *freecache.Cache
	http     *fasthttp.Client
	metrics  *metrics.Manager
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(u.String(), "/"),
		timeout:  timeout,
		cacheTTL: int(opts.CacheTTL / time.Second),
		metrics:  opts.Metrics,
		http: &fasthttp.Client{
			Name:         "posturai",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
	if c.cacheTTL > 0 {
		c.cache = freecache.NewCache(cacheSize)
	}
	return c, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostureStats fetches aggregate statistics for the last days. Responses
// are cached per window.
func (c *Client) PostureStats(ctx context.Context, days int) (*posture.Stats, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}

	cacheKey := []byte("stats::" + strconv.Itoa(days))
	if c.cache != nil {
		if cached, err := c.cache.Get(cacheKey); err == nil {
			stats := &posture.Stats{}
			if err := json.Unmarshal(cached, stats); err == nil {
				logging.L().Debug("posture stats served from cache", zap.Int("days", days))
				return stats, nil
			}
		}
	}

	body, err := c.do(ctx, "posture_stats", fasthttp.MethodGet, statsPath+"?days="+strconv.Itoa(days), nil)
	if err != nil {
		return nil, err
	}

	stats := &posture.Stats{}
	if err := json.Unmarshal(body, stats); err != nil {
		return nil, fmt.Errorf("failed to decode posture stats: %w", err)
	}
	stats.Normalize()

	if c.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := c.cache.Set(cacheKey, encoded, c.cacheTTL); err != nil {
				logging.L().Warn("failed to cache posture stats", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Chat forwards a question to the assistant.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	body, err := c.do(ctx, "chat", fasthttp.MethodPost, chatPath, payload)
	if err != nil {
		return nil, err
	}

	resp := &ChatResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return resp, nil
}

// Alerts returns the latest alert messages.
func (c *Client) Alerts(ctx context.Context) (*Alerts, error) {
	body, err := c.do(ctx, "alerts", fasthttp.MethodGet, alertsPath, nil)
	if err != nil {
		return nil, err
	}

	alerts := &Alerts{}
	if err := json.Unmarshal(body, alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	if alerts.Alerts == nil {
		alerts.Alerts = []string{}
	}
	return alerts, nil
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Alerts(ctx)
	return err
}

// InvalidateStats drops every cached statistics window.
func (c *Client) InvalidateStats() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	c.observe(endpoint, start, resp.StatusCode(), err)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if status < 200 || status >= 300 {
		return nil, &StatusError{Endpoint: endpoint, Status: status, Message: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) observe(endpoint string, start time.Time, status int, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case status < 200 || status >= 300:
		outcome = strconv.Itoa(status)
	}
	c.metrics.CounterUpstreamCalls.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.HistUpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// errorMessage extracts {"error": ...} or {"reply": ...} from a failed
// response body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Reply
}

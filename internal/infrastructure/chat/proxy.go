// Package chat forwards onboarding chat requests to an OpenAI-compatible
// completion API. The browser never sees the API key and the upstream never
// sees the portal's cookies.
package chat

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nadlan-invest/portal/internal/api/metrics"
)

// Path is the route the proxy is mounted on.
const Path = "/api/chat"

const (
	completionsPath   = "/chat/completions"
	defaultTimeout    = 60 * time.Second
	limiterExpiration = 3 * time.Minute
)

// Config configures the upstream and the per-client rate limit.
type Config struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1.
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RateLimit is the sustained requests per second allowed per client IP.
	RateLimit float64
	Burst     int
}

// Proxy serves POST /api/chat: a per-IP rate limiter followed by the reverse
// proxy.
type Proxy struct {
	chain []echo.MiddlewareFunc
}

func NewProxy(cfg Config, log zerolog.Logger) (*Proxy, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat: api key is required")
	}
	target, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("chat: parse base url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("chat: base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     cfg.Burst,
			ExpiresIn: limiterExpiration,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many chat requests")
		},
	})

	proxy := echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{{URL: target}}),
		Rewrite:  map[string]string{Path: completionsPath},
		Transport: &keyTransport{
			apiKey: cfg.APIKey,
			base:   &http.Transport{Proxy: http.ProxyFromEnvironment, ResponseHeaderTimeout: timeout},
		},
		ModifyResponse: func(res *http.Response) error {
			res.Header.Del("Set-Cookie")
			metrics.ChatProxyResponsesTotal.WithLabelValues(statusClass(res.StatusCode)).Inc()
			return nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			metrics.ChatProxyResponsesTotal.WithLabelValues("error").Inc()
			log.Error().Err(err).Msg("chat upstream failed")
			return echo.NewHTTPError(http.StatusBadGateway, "chat service unavailable")
		},
	})

	return &Proxy{chain: []echo.MiddlewareFunc{limiter, proxy}}, nil
}

// Mount registers the proxy on e. before runs ahead of the rate limiter,
// e.g. session authentication.
func (p *Proxy) Mount(e *echo.Echo, before ...echo.MiddlewareFunc) {
	mw := append(append([]echo.MiddlewareFunc{}, before...), p.chain...)
	e.POST(Path, proxied, mw...)
}

// proxied is never reached: the proxy middleware answers every request.
func proxied(echo.Context) error { return echo.ErrNotFound }

// keyTransport authenticates upstream requests and drops client credentials.
type keyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Host = out.URL.Host
	out.Header.Del("Cookie")
	out.Header.Del("X-Forwarded-For")
	out.Header.Set(echo.HeaderAuthorization, "Bearer "+t.apiKey)
	return t.base.RoundTrip(out)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

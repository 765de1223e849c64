package services

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/jsync/internal/shared"
)

// NewHTTPClient builds the shared Jira [http.Client] from cfg.
//
// Transport layers, outermost first: rate limiting, authentication, then a pooled [http.Transport].
// The client is built once and is safe for concurrent use.
func NewHTTPClient(cfg shared.JiraConfig) (*http.Client, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("%w: set jira.username and jira.api_token, or jira.access_token", shared.ErrMissingCredentials)
	}

	var rt http.RoundTripper = newPooledTransport(cfg)

	if cfg.AccessToken != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}),
			Base:   rt,
		}
	} else {
		rt = &basicAuthTransport{username: cfg.Username, token: cfg.APIToken, base: rt}
	}

	if cfg.RequestsPerSecond > 0 {
		rt = newRateLimitedTransport(cfg.RequestsPerSecond, rt)
	}

	return &http.Client{Transport: rt, Timeout: cfg.RequestTimeout.Duration}, nil
}

func newPooledTransport(cfg shared.JiraConfig) *http.Transport {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout.Duration, KeepAlive: 30 * time.Second}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = dialer.DialContext
	t.MaxIdleConns = cfg.MaxTotalConnections
	t.MaxIdleConnsPerHost = cfg.MaxConnectionsPerRoute
	t.MaxConnsPerHost = cfg.MaxConnectionsPerRoute
	t.ResponseHeaderTimeout = cfg.SocketTimeout.Duration
	return t
}

// basicAuthTransport sets HTTP Basic credentials on every request.
type basicAuthTransport struct {
	username string
	token    string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.token)
	return t.base.RoundTrip(r)
}

// rateLimitedTransport blocks each request until the limiter admits it or the request context ends.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func newRateLimitedTransport(rps float64, base http.RoundTripper) *rateLimitedTransport {
	burst := max(int(rps), 1)
	return &rateLimitedTransport{limiter: rate.NewLimiter(rate.Limit(rps), burst), base: base}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

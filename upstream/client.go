// Package upstream is the outbound HTTP client used for the score and news feeds
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wolfhub_upstream_requests_total",
		Help: "Outbound requests by host and status code (0 for transport errors)",
	}, []string{"host", "code"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wolfhub_upstream_request_duration_seconds",
		Help:    "Duration of outbound requests",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
	}, []string{"host"})
)

const maxBodySize = 10 << 20

const DefaultUserAgent = "NC State Sports Hub/1.0"

type Config struct {
	UserAgent string
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond caps outbound traffic across all hosts. Zero or less disables the limit.
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, e.g. for httptest servers
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(cfg Config, opts ...Option) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	c := &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL and returns the body. Transport failures and non-2xx
// answers come back as *NetworkError. Nothing is retried.
func (c *Client) Get(ctx context.Context, rawURL string, accept string) ([]byte, error) {
	host := hostOf(rawURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Url: rawURL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{Url: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	upstreamDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamRequests.WithLabelValues(host, "0").Inc()
		log.WithFields(log.Fields{
			"url":   rawURL,
			"error": err,
		}).Warn("Upstream request failed")
		return nil, &NetworkError{Url: rawURL, Err: err}
	}
	defer resp.Body.Close()

	upstreamRequests.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()

	log.WithFields(log.Fields{
		"url":     rawURL,
		"status":  resp.StatusCode,
		"latency": time.Since(start),
	}).Debug("Upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &NetworkError{Url: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Url: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.Get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Source: rawURL, Err: err}
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

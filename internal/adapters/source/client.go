// Package source provides a resilient REST client for the chat platform API
package source

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "chatmirror-syncd"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
	defaultPageSize  = 100

	maxBodyBytes = 4 << 20
)

// Options configures the Client
type Options struct {
	// BaseURL is the platform API root, no trailing slash
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Comma separated bot tokens passed in from CLI or config.
	// More than one spreads the rate budget via round robin rotation
	TokensCSV string

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// Metrics is optional; nil disables request/retry counters
	Metrics *metrics.Metrics
}

// Client is a read-only platform API client with token rotation,
// rate-limit handling, and bounded retries
type Client struct {
	http   *http.Client
	opts   Options
	tokens []string
	cur    atomic.Int32
	log    logger.Logger
	met    *metrics.Metrics
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	var toks []string
	for t := range strings.SplitSeq(o.TokensCSV, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			toks = append(toks, t)
		}
	}
	return &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		tokens: toks,
		log:    *logger.Named("source"),
		met:    o.Metrics,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// getToken returns the next token in a round robin rotation
func (c *Client) getToken() string {
	if len(c.tokens) == 0 {
		return ""
	}
	n := int(c.cur.Add(1))
	return c.tokens[n%len(c.tokens)]
}

// get issues a GET with auth headers, retries, and rate limit handling.
// endpoint is the low-cardinality metrics label, path the concrete URL path
func (c *Client) get(ctx context.Context, endpoint, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "source new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if tok := c.getToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "source do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Str("endpoint", endpoint).
				Msg("source transport error retrying")
			c.countRetry(endpoint)
			c.sleep(back)
			attempts++
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		c.countRequest(endpoint, resp.StatusCode)
		c.log.Debug().
			Str("endpoint", endpoint).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("source http response")

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil
		case http.StatusUnauthorized:
			_ = drainAndClose(resp.Body)
			return nil, perr.Unauthorizedf("source rejected token")
		case http.StatusForbidden:
			// permission errors are terminal and channel-scoped, never retried
			_ = drainAndClose(resp.Body)
			return nil, perr.Forbiddenf("source denied access to %s", path)
		case http.StatusNotFound:
			_ = drainAndClose(resp.Body)
			return nil, perr.NotFoundf("source has no %s", path)
		case http.StatusTooManyRequests:
			// Respect Retry-After and X-RateLimit-Reset when present
			wait := computeWait(rem, reset, retryAfter, c.now())
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.TooManyRequestsf("source rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Str("endpoint", endpoint).Msg("source rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.countRetry(endpoint)
			c.sleep(wait)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// transient server side
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Unavailablef("source transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Str("endpoint", endpoint).
				Msg("source transient error retrying")
			_ = drainAndClose(resp.Body)
			c.countRetry(endpoint)
			c.sleep(back)
			attempts++
			continue
		default:
			// read a small tail for diagnostics then return
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "source unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func (c *Client) countRequest(endpoint string, status int) {
	if c.met == nil {
		return
	}
	c.met.ObserveSourceRequest(endpoint, strconv.Itoa(status))
}

func (c *Client) countRetry(endpoint string) {
	if c.met == nil {
		return
	}
	c.met.AddSourceRetry(endpoint)
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/yanqian/smart-wardrobe/internal/domain/outfit"
	apperrors "github.com/yanqian/smart-wardrobe/pkg/errors"
)

const (
	defaultBaseURL = "http://localhost:8000"
	basicPath      = "outfit-for-city"
	smartPath      = "smart-outfit"
	maxBodyBytes   = 1 << 20

	// Half-open admits the live cycle next to a superseded one still draining.
	halfOpenRequests = 2
)

// Config controls how the gateway is reached.
// Timeout bounds a single request; zero leaves the transport default.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client fetches outfit outcomes from the recommendation gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[outfit.Outcome]
	logger     *slog.Logger
}

// NewClient builds a gateway client guarded by a circuit breaker.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	log := logger.With("component", "gateway.client")

	breaker := gobreaker.NewCircuitBreaker[outfit.Outcome](gobreaker.Settings{
		Name:        "outfit-gateway",
		MaxRequests: halfOpenRequests,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("gateway breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     log,
	}
}

// Fetch issues the single GET for q and decodes the outcome.
func (c *Client) Fetch(ctx context.Context, q outfit.Query) (outfit.Outcome, error) {
	outcome, err := c.breaker.Execute(func() (outfit.Outcome, error) {
		return c.do(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeBreakerOpen, "gateway temporarily unavailable", err)
	}
	return outcome, err
}

// BreakerState reports the circuit breaker position for diagnostics.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Endpoint builds the request URL for q. The city is path escaped.
func (c *Client) Endpoint(q outfit.Query) string {
	path := basicPath
	if q.Mode == outfit.ModeSmart {
		path = smartPath
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL, path, url.PathEscape(q.City))
}

func (c *Client) do(ctx context.Context, q outfit.Query) (outfit.Outcome, error) {
	endpoint := c.Endpoint(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeGatewayError, "build gateway request", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := outfit.CycleIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeGatewayError, "gateway request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeGatewayError, "read gateway response", err)
	}
	c.logger.Debug("gateway responded", "url", endpoint, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Status: resp.StatusCode}
		if msg := decodeErrorMessage(body); msg != "" {
			return outfit.Outcome{}, apperrors.Wrap(outfit.CodeServerError, msg, statusErr)
		}
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeGatewayError, "gateway returned an error status", statusErr)
	}

	outcome, err := decodeOutcome(body)
	if err != nil {
		return outfit.Outcome{}, apperrors.Wrap(outfit.CodeDecodeError, "decode gateway response", err)
	}
	return outcome, nil
}

// StatusError records a non-2xx gateway status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway status %d", e.Status)
}

// countsAsHealthy keeps client side rejections and abandoned cycles from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status < http.StatusInternalServerError && statusErr.Status != http.StatusTooManyRequests
	}
	return false
}

var _ outfit.Fetcher = (*Client)(nil)

// Package reputation implements the HTTP client for the author reputation
// service.
package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BatchEndpoint is the API path for batched reputation lookups.
const BatchEndpoint = "/api/v1/reputation/batch"

// ClientConfig holds configuration for the reputation client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.ReputationProvider against the reputation service.
//
// Lookups go through a circuit breaker so a dead reputation service costs one
// fast-failing call per feed instead of a pile of timed-out retries; the feed
// layer falls back to default reputations either way.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// NewClient creates a reputation service client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on network errors or 5xx status codes
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})

	settings := gobreaker.Settings{
		Name:        "reputation",
		MaxRequests: cfg.CB.MaxRequests,
		Interval:    cfg.CB.Interval,
		Timeout:     cfg.CB.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.CB.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[*resty.Response](settings),
		logger: logger,
	}
}

// BatchLookup fetches reputation scores for a set of author IDs in one call.
// Authors unknown to the service are simply absent from the returned map.
func (c *Client) BatchLookup(ctx context.Context, authorIDs []string) (map[string]int, error) {
	if len(authorIDs) == 0 {
		return map[string]int{}, nil
	}

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result BatchResponse
		r, err := c.client.R().
			SetContext(ctx).
			SetBody(BatchRequest{AuthorIDs: authorIDs}).
			SetResult(&result).
			Post(BatchEndpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("reputation service returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("reputation batch lookup failed",
			zap.Int("author_count", len(authorIDs)),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)

		return nil, fmt.Errorf("looking up reputations: %w", err)
	}

	result := resp.Result().(*BatchResponse)

	c.logger.Debug("reputation batch lookup completed",
		zap.Int("requested", len(authorIDs)),
		zap.Int("resolved", len(result.Reputations)),
	)

	return result.Reputations, nil
}

// HealthCheck verifies the reputation service is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

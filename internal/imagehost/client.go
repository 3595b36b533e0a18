package imagehost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/kaifgrit/Rifakat/pkg/httpclient"
)

// Client guards a Provider with a circuit breaker and records metrics. While
// the breaker is open Delete fails fast with httpclient.ErrCircuitOpen.
type Client struct {
	provider Provider
	name     string
	breaker  *gobreaker.CircuitBreaker[*DeleteResult]
	logger   *slog.Logger
}

// NewClient wraps provider. name labels the breaker and the metrics.
func NewClient(provider Provider, name string, cfg httpclient.CircuitBreakerConfig, logger *slog.Logger) *Client {
	cfg.Name = "imagehost-" + name
	settings := httpclient.BreakerSettings(cfg, logger)
	// A partial delete reached the host, so it does not count against it.
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrPartialDelete)
	}
	return &Client{
		provider: provider,
		name:     name,
		breaker:  gobreaker.NewCircuitBreaker[*DeleteResult](settings),
		logger:   logger,
	}
}

// Delete removes publicIDs through the breaker. An empty list is a no-op.
func (c *Client) Delete(ctx context.Context, publicIDs []string) (*DeleteResult, error) {
	if len(publicIDs) == 0 {
		return &DeleteResult{}, nil
	}

	res, err := c.breaker.Execute(func() (*DeleteResult, error) {
		return c.provider.Delete(ctx, publicIDs)
	})
	c.observe(res, err)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%s delete: %w: %w", c.name, httpclient.ErrCircuitOpen, err)
	case err != nil:
		return res, fmt.Errorf("%s delete: %w", c.name, err)
	}

	c.logger.DebugContext(ctx, "image host delete completed",
		slog.String("provider", c.name),
		slog.Int("deleted", len(res.Deleted)),
		slog.Int("not_found", len(res.NotFound)),
	)
	return res, nil
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) observe(res *DeleteResult, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case errors.Is(err, ErrPartialDelete):
		outcome = "partial"
	case err != nil:
		outcome = "error"
	}
	deleteRequests.WithLabelValues(c.name, outcome).Inc()

	if res == nil {
		return
	}
	assetsProcessed.WithLabelValues(c.name, "deleted").Add(float64(len(res.Deleted)))
	assetsProcessed.WithLabelValues(c.name, "not_found").Add(float64(len(res.NotFound)))
	assetsProcessed.WithLabelValues(c.name, "failed").Add(float64(len(res.Failed)))
}

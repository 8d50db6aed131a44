package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "circuit_breaker_state",
	Help: "Breaker state: 0 closed, 1 half-open, 2 open.",
}, []string{"name"})

// BreakerConfig configures when the breaker trips and recovers.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counter reset period
	OpenTimeout  time.Duration // time spent open before probing
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig trips after half of at least five requests fail.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.5,
	}
}

// BreakerClient guards a Client with a circuit breaker. 5xx responses count as failures.
type BreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerClient wraps client.
func NewBreakerClient(client *Client, cfg BreakerConfig, log *slog.Logger) *BreakerClient {
	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](st),
	}
}

// Get issues a GET through the breaker.
func (b *BreakerClient) Get(ctx context.Context, url string) (*http.Response, error) {
	return b.breaker.Execute(func() (*http.Response, error) {
		resp, err := b.client.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
		}
		return resp, nil
	})
}

// State reports the breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.breaker.State()
}

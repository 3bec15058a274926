package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the collectors for the custom resource. Collectors live on their own
// registry so tests and the push path never touch the global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	// Tracks handler invocations by CloudFormation request type and acknowledgment status.
	Invocations *prometheus.CounterVec

	// Measures DescribeUserPoolClient latency.
	LookupDuration prometheus.Histogram

	// Tracks failures by stage: lookup | mirror | respond | request.
	Errors *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_secret_invocations_total",
				Help: "Custom resource invocations by request type and response status.",
			},
			[]string{"request_type", "status"},
		),
		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "client_secret_lookup_duration_seconds",
				Help:    "Duration of Cognito DescribeUserPoolClient calls in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms → ~10s
			},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_secret_errors_total",
				Help: "Custom resource failures by stage.",
			},
			[]string{"stage"},
		),
	}
}

// ObserveDuration records the time elapsed since start on h.
func ObserveDuration(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Pusher publishes a registry to a Prometheus Pushgateway. A Pusher with an empty URL
// does nothing, which is the default for deployments without a gateway.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher creates a Pusher for the given gateway URL and job, grouped by function name.
func NewPusher(url, job, function string, reg prometheus.Gatherer) *Pusher {
	if url == "" {
		return &Pusher{}
	}
	return &Pusher{
		pusher: push.New(url, job).Gatherer(reg).Grouping("function", function),
	}
}

// Enabled reports whether a gateway is configured.
func (p *Pusher) Enabled() bool {
	return p != nil && p.pusher != nil
}

// Push replaces the metrics of this function's group on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

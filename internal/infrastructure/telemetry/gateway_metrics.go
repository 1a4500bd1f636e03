package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// GatewayMetrics records Business Central traffic: request outcomes,
// environment misses, token refreshes and request latency.
type GatewayMetrics struct {
	logger *zap.Logger

	requestsTotal   *Counter
	missTotal       *Counter
	tokenRefreshes  *Counter
	requestDuration *Histogram
}

// GatewayMetricsConfig holds configuration for gateway metrics.
type GatewayMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewGatewayMetrics registers the gateway instruments on cfg.Meter.
func NewGatewayMetrics(cfg GatewayMetricsConfig) (*GatewayMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gm := &GatewayMetrics{logger: logger}

	var err error
	gm.requestsTotal, err = NewCounter(cfg.Meter,
		"pov_bc_requests_total",
		"Total number of Business Central API requests",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	gm.missTotal, err = NewCounter(cfg.Meter,
		"pov_bc_environment_miss_total",
		"Requests answered with NoEnvironment by Business Central",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	gm.tokenRefreshes, err = NewCounter(cfg.Meter,
		"pov_bc_token_refresh_total",
		"Total number of OAuth2 token refreshes",
		"{refreshes}",
	)
	if err != nil {
		return nil, err
	}

	gm.requestDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "pov_bc_request_duration_seconds",
		Description: "Business Central API request latency",
		Unit:        "s",
		Boundaries:  RemoteDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Gateway metrics initialized")
	return gm, nil
}

// RecordRequest counts one remote request and its latency.
func (gm *GatewayMetrics) RecordRequest(ctx context.Context, resource, environment, outcome string, duration time.Duration) {
	gm.requestsTotal.Inc(ctx,
		AttrResource.String(resource),
		AttrEnvironment.String(environment),
		AttrOutcome.String(outcome),
	)
	gm.requestDuration.RecordDuration(ctx, duration, AttrResource.String(resource))
}

// RecordEnvironmentMiss counts a NoEnvironment answer.
func (gm *GatewayMetrics) RecordEnvironmentMiss(ctx context.Context, resource, environment string) {
	gm.missTotal.Inc(ctx,
		AttrResource.String(resource),
		AttrEnvironment.String(environment),
	)
}

// RecordTokenRefresh counts a token endpoint round trip.
func (gm *GatewayMetrics) RecordTokenRefresh(ctx context.Context, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	gm.tokenRefreshes.Inc(ctx, AttrResult.String(result))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewGatewayMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

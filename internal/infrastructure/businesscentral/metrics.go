package businesscentral

import (
	"context"
	"time"
)

// Request outcomes reported to MetricsRecorder
const (
	OutcomeSuccess      = "success"
	OutcomeMiss         = "environment_miss"
	OutcomeUnauthorized = "unauthorized"
	OutcomeFailed       = "failed"
)

// MetricsRecorder receives adapter measurements.
type MetricsRecorder interface {
	RecordRequest(ctx context.Context, resource, environment, outcome string, duration time.Duration)
	RecordEnvironmentMiss(ctx context.Context, resource, environment string)
	RecordTokenRefresh(ctx context.Context, success bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(context.Context, string, string, string, time.Duration) {}

func (nopMetrics) RecordEnvironmentMiss(context.Context, string, string) {}

func (nopMetrics) RecordTokenRefresh(context.Context, bool) {}

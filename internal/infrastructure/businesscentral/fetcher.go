package businesscentral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/infrastructure/logger"
)

// maxErrorBodySize bounds the body kept on a RemoteQueryError
const maxErrorBodySize = 2048

// fetcher issues single-environment collection queries
type fetcher struct {
	cfg        *Config
	httpClient *http.Client
	metrics    MetricsRecorder
	logger     *zap.Logger
}

// fetchCollection queries resource in one environment and decodes the value array.
//
// Errors:
//   - integration.ErrEnvironmentMiss: the environment does not exist
//   - integration.ErrRemoteAuthorization: 401 or 403
//   - *integration.RemoteQueryError: anything else, including transport failures
func fetchCollection[T any](ctx context.Context, f *fetcher, token, environment string, resource Resource, q odataQuery) ([]T, error) {
	endpoint := f.cfg.resourceURL(environment, resource)
	if rawQuery := q.Encode(); rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	log := logger.WithTraceContext(ctx, f.logger).With(
		zap.String("resource", resource.String()),
		zap.String("environment", environment),
	)
	log.Debug("Querying Business Central", zap.String("endpoint", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &integration.RemoteQueryError{Resource: resource.String(), Environment: environment, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metrics.RecordRequest(ctx, resource.String(), environment, OutcomeFailed, time.Since(start))
		return nil, &integration.RemoteQueryError{Resource: resource.String(), Environment: environment, Err: err}
	}
	defer resp.Body.Close()

	limit := f.cfg.responseLimit(resource)
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		f.metrics.RecordRequest(ctx, resource.String(), environment, OutcomeFailed, time.Since(start))
		return nil, &integration.RemoteQueryError{
			Resource: resource.String(), Environment: environment, StatusCode: resp.StatusCode, Err: err,
		}
	}
	if int64(len(body)) > limit {
		f.metrics.RecordRequest(ctx, resource.String(), environment, OutcomeFailed, time.Since(start))
		return nil, &integration.RemoteQueryError{
			Resource:    resource.String(),
			Environment: environment,
			StatusCode:  resp.StatusCode,
			Err:         fmt.Errorf("%w: more than %d bytes", integration.ErrResponseTooLarge, limit),
		}
	}

	if err := classifyResponse(resource, environment, resp.StatusCode, body); err != nil {
		f.metrics.RecordRequest(ctx, resource.String(), environment, outcomeOf(err), time.Since(start))
		if errors.Is(err, integration.ErrEnvironmentMiss) {
			f.metrics.RecordEnvironmentMiss(ctx, resource.String(), environment)
		}
		return nil, err
	}

	var collection odataCollection[T]
	if err := json.Unmarshal(body, &collection); err != nil {
		f.metrics.RecordRequest(ctx, resource.String(), environment, OutcomeFailed, time.Since(start))
		return nil, &integration.RemoteQueryError{
			Resource:    resource.String(),
			Environment: environment,
			StatusCode:  resp.StatusCode,
			Body:        truncate(body, maxErrorBodySize),
			Err:         fmt.Errorf("invalid collection payload: %w", err),
		}
	}

	f.metrics.RecordRequest(ctx, resource.String(), environment, OutcomeSuccess, time.Since(start))
	log.Debug("Business Central answered", zap.Int("count", len(collection.Value)))
	return collection.Value, nil
}

// classifyResponse maps a response status and body to the adapter error taxonomy.
// It returns nil for 2xx.
func classifyResponse(resource Resource, environment string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %s in %s returned HTTP %d", integration.ErrRemoteAuthorization, resource, environment, status)
	}

	var envelope errorEnvelope
	// a body that is not an error envelope leaves the code empty
	_ = json.Unmarshal(body, &envelope)

	if status == http.StatusNotFound && strings.EqualFold(envelope.Error.Code, noEnvironmentCode) {
		return fmt.Errorf("%w: %s", integration.ErrEnvironmentMiss, environment)
	}

	return &integration.RemoteQueryError{
		Resource:    resource.String(),
		Environment: environment,
		StatusCode:  status,
		Code:        envelope.Error.Code,
		Message:     envelope.Error.Message,
		Body:        truncate(body, maxErrorBodySize),
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, integration.ErrEnvironmentMiss):
		return OutcomeMiss
	case errors.Is(err, integration.ErrRemoteAuthorization):
		return OutcomeUnauthorized
	default:
		return OutcomeFailed
	}
}

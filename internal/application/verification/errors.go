package verification

import (
	"errors"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/domain/shared"
)

// translateGatewayError maps hard gateway failures to domain errors.
// Anything else is returned unchanged.
func translateGatewayError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, integration.ErrRemoteAuthorization), errors.Is(err, integration.ErrAuthProvider):
		return shared.ErrUpstreamAuth.WithCause(err)
	case errors.Is(err, integration.ErrEnvironmentResolution):
		return shared.ErrUpstreamConfig.WithCause(err)
	default:
		return err
	}
}

// clampTop bounds a page size, falling back to def when top is not positive
func clampTop(top, def, upper int) int {
	if top <= 0 {
		return def
	}
	if top > upper {
		return upper
	}
	return top
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/orderverify/internal/infrastructure/auth"
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Portal auth context keys
const (
	PortalClaimsKey   = "portal_claims"
	VendorPortalIDKey = "vendor_portal_id"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// errMissingCredentials marks requests that carry no usable bearer token
var errMissingCredentials = errors.New("missing bearer credentials")

// PortalTokenValidator validates vendor portal bearer tokens
type PortalTokenValidator interface {
	Validate(tokenString string) (*auth.PortalClaims, error)
}

// PortalAuthConfig holds configuration for the portal auth middleware
type PortalAuthConfig struct {
	Validator PortalTokenValidator
	Logger    *zap.Logger
}

// PortalAuth requires a valid portal bearer token carrying a vendor identity
func PortalAuth(cfg PortalAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			rejectPortalRequest(c, log, errMissingCredentials, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			rejectPortalRequest(c, log, errMissingCredentials, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			rejectPortalRequest(c, log, errMissingCredentials, "Missing token")
			return
		}

		claims, err := cfg.Validator.Validate(token)
		if err != nil {
			rejectPortalRequest(c, log, err, "Token validation failed")
			return
		}

		portalID := claims.VendorPortalID.String()
		c.Set(PortalClaimsKey, claims)
		c.Set(VendorPortalIDKey, claims.VendorPortalID)
		c.Request = c.Request.WithContext(logger.WithVendorPortalID(c.Request.Context(), portalID))

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(attribute.String("vendor.portal_id", portalID))
		}

		c.Next()
	}
}

// GetVendorPortalID returns the vendor identity stored by PortalAuth
func GetVendorPortalID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(VendorPortalIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func rejectPortalRequest(c *gin.Context, log *zap.Logger, err error, reason string) {
	logger.WithTraceContext(c.Request.Context(), log).Warn("Portal authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrMissingVendorClaim), errors.Is(err, auth.ErrInvalidVendorClaim):
		message = "No vendor is assigned to this account"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

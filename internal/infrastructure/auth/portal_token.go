// Package auth validates vendor portal bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/orderverify/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultVendorClaim is the custom claim the identity provider uses for the portal vendor
const DefaultVendorClaim = "extension_vendorId"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingVendorClaim = errors.New("missing vendor claim")
	ErrInvalidVendorClaim = errors.New("vendor claim is not a valid identifier")
	ErrNoSecret           = errors.New("portal token secret is not configured")
)

// PortalClaims is the validated identity carried by a portal token
type PortalClaims struct {
	Subject        string
	VendorPortalID uuid.UUID
	ExpiresAt      time.Time
}

// PortalTokenValidator checks HS256 portal tokens
type PortalTokenValidator struct {
	secret      []byte
	issuer      string
	audience    string
	vendorClaim string
	now         func() time.Time
}

// NewPortalTokenValidator creates a validator from configuration
func NewPortalTokenValidator(cfg config.PortalAuthConfig) *PortalTokenValidator {
	claim := cfg.VendorClaim
	if claim == "" {
		claim = DefaultVendorClaim
	}
	return &PortalTokenValidator{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.Issuer,
		audience:    cfg.Audience,
		vendorClaim: claim,
		now:         time.Now,
	}
}

// Validate parses tokenString and extracts the vendor identity.
// Issuer and audience are enforced only when configured.
func (v *PortalTokenValidator) Validate(tokenString string) (*PortalClaims, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	raw, ok := claims[v.vendorClaim].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrMissingVendorClaim
	}
	vendorID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidVendorClaim
	}

	out := &PortalClaims{VendorPortalID: vendorID}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

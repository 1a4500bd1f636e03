package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/erp/orderverify/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = strings.Repeat("s", 32)
	testNow    = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	testVendor = "10326524-b1eb-3c53-bfab-792d11a135b0"
)

func newTestValidator(cfg config.PortalAuthConfig) *PortalTokenValidator {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	v := NewPortalTokenValidator(cfg)
	v.now = func() time.Time { return testNow }
	return v
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":                "user-1",
		"iss":                "https://login.example.com",
		"aud":                "portal",
		"exp":                testNow.Add(time.Hour).Unix(),
		"iat":                testNow.Add(-time.Minute).Unix(),
		"extension_vendorId": testVendor,
	}
}

func TestPortalTokenValidator_Valid(t *testing.T) {
	v := newTestValidator(config.PortalAuthConfig{Issuer: "https://login.example.com", Audience: "portal"})

	claims, err := v.Validate(sign(t, jwt.SigningMethodHS256, []byte(testSecret), baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, testVendor, claims.VendorPortalID.String())
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(testNow.Add(time.Hour).Truncate(time.Second)))
}

func TestPortalTokenValidator_CustomClaim(t *testing.T) {
	v := newTestValidator(config.PortalAuthConfig{VendorClaim: "vendor_id"})
	c := baseClaims()
	delete(c, "extension_vendorId")
	c["vendor_id"] = testVendor

	claims, err := v.Validate(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	require.NoError(t, err)
	assert.Equal(t, testVendor, claims.VendorPortalID.String())
}

func TestPortalTokenValidator_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PortalAuthConfig
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32)), baseClaims())
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, []byte(testSecret), baseClaims())
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not-a-token" },
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := baseClaims()
				c["exp"] = testNow.Add(-time.Minute).Unix()
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := baseClaims()
				delete(c, "exp")
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				c := baseClaims()
				c["nbf"] = testNow.Add(time.Minute).Unix()
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "issuer mismatch",
			cfg:  config.PortalAuthConfig{Issuer: "https://other"},
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), baseClaims())
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "audience mismatch",
			cfg:  config.PortalAuthConfig{Audience: "admin"},
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), baseClaims())
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing vendor claim",
			token: func(t *testing.T) string {
				c := baseClaims()
				delete(c, "extension_vendorId")
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrMissingVendorClaim,
		},
		{
			name: "vendor claim not a uuid",
			token: func(t *testing.T) string {
				c := baseClaims()
				c["extension_vendorId"] = "PRV000069"
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: ErrInvalidVendorClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(tt.cfg)
			_, err := v.Validate(tt.token(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPortalTokenValidator_NoSecret(t *testing.T) {
	v := NewPortalTokenValidator(config.PortalAuthConfig{})
	_, err := v.Validate("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}

package businesscentral

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/erp/orderverify/internal/domain/integration"
)

// tokenExpirySkew is subtracted from the advertised lifetime so a token is
// never used in its last minute
const tokenExpirySkew = 60 * time.Second

// maxTokenResponseSize bounds the token endpoint response
const maxTokenResponseSize = 64 * 1024

// Credential is a bearer token and the instant it stops being used
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// ValidAt reports whether the credential can be used at now
func (c Credential) ValidAt(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// TokenCache holds one client-credentials token and refreshes it when stale.
// Concurrent callers that find the token stale share a single refresh.
type TokenCache struct {
	cfg        *Config
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
	metrics    MetricsRecorder

	mu    sync.RWMutex
	cred  Credential
	group singleflight.Group
}

// TokenCacheOption configures a TokenCache
type TokenCacheOption func(*TokenCache)

// WithClock overrides the time source
func WithClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

// WithTokenHTTPClient overrides the HTTP client used for the token endpoint
func WithTokenHTTPClient(client *http.Client) TokenCacheOption {
	return func(c *TokenCache) {
		c.httpClient = client
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger *zap.Logger) TokenCacheOption {
	return func(c *TokenCache) {
		c.logger = logger
	}
}

// WithTokenMetrics sets the metrics recorder
func WithTokenMetrics(m MetricsRecorder) TokenCacheOption {
	return func(c *TokenCache) {
		c.metrics = m
	}
}

// NewTokenCache creates a token cache for cfg
func NewTokenCache(cfg *Config, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		logger:     zap.NewNop(),
		metrics:    nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureToken returns a valid credential, refreshing it when needed
func (c *TokenCache) EnsureToken(ctx context.Context) (Credential, error) {
	if cred, ok := c.cached(); ok {
		return cred, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		if cred, ok := c.cached(); ok {
			return cred, nil
		}
		// the refresh is shared, so one caller's cancellation must not fail the others
		cred, err := c.refresh(context.WithoutCancel(ctx))
		c.metrics.RecordTokenRefresh(ctx, err == nil)
		if err != nil {
			return Credential{}, err
		}
		c.mu.Lock()
		c.cred = cred
		c.mu.Unlock()
		return cred, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

// Invalidate drops the cached credential so the next call refreshes it
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.cred = Credential{}
	c.mu.Unlock()
}

func (c *TokenCache) cached() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred.ValidAt(c.now()) {
		return c.cred, true
	}
	return Credential{}, false
}

func (c *TokenCache) refresh(ctx context.Context) (Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", c.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: failed to create request: %v", integration.ErrAuthProvider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", integration.ErrAuthProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: failed to read response: %v", integration.ErrAuthProvider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Token endpoint rejected client credentials",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(body, 512)),
		)
		return Credential{}, fmt.Errorf("%w: HTTP %d", integration.ErrAuthProvider, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Credential{}, fmt.Errorf("%w: invalid token response: %v", integration.ErrAuthProvider, err)
	}
	if tr.AccessToken == "" {
		return Credential{}, fmt.Errorf("%w: empty access token", integration.ErrAuthProvider)
	}
	expiresIn, err := tr.ExpiresIn.Int64()
	if err != nil {
		return Credential{}, fmt.Errorf("%w: invalid expires_in: %v", integration.ErrAuthProvider, err)
	}

	cred := Credential{
		Token:     tr.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpirySkew),
	}
	c.logger.Info("Business Central token acquired", zap.Time("expires_at", cred.ExpiresAt))
	return cred, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/orderverify/internal/application/verification"
	"github.com/erp/orderverify/internal/interfaces/http/handler"
	"github.com/erp/orderverify/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct{}

func (stubVerifier) VerifyOrder(_ context.Context, code string) (*verification.VerificationResult, error) {
	if code == "PO-1" {
		return &verification.VerificationResult{Status: verification.StatusVerified, Order: &verification.OrderDetails{OrderNumber: code}}, nil
	}
	return &verification.VerificationResult{Status: verification.StatusNotFound, Message: verification.MessageNotFound}, nil
}

func (stubVerifier) ListOrders(context.Context, int) (*verification.OrderListing, error) {
	return &verification.OrderListing{Orders: []verification.OrderSummary{}}, nil
}

type stubPortal struct{}

func (stubPortal) ListVendorOrders(context.Context, uuid.UUID, int) (*verification.VendorOrderHistory, error) {
	return &verification.VendorOrderHistory{Orders: []verification.OrderSummary{}}, nil
}

func (stubPortal) DownloadOrderPdf(_ context.Context, _ uuid.UUID, code string) (*verification.OrderDocument, error) {
	return &verification.OrderDocument{FileName: "PurchaseOrder_" + code + ".pdf", ContentType: "application/pdf", Content: []byte("%PDF")}, nil
}

// denyAll stands in for the portal JWT middleware
func denyAll(c *gin.Context) {
	c.AbortWithStatus(http.StatusUnauthorized)
}

func newTestEngine(t *testing.T, debug bool, limit int) *gin.Engine {
	t.Helper()
	limiter := middleware.NewRateLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = []string{"https://verify.example.com"}

	return NewEngine(EngineConfig{
		CORS:         cors,
		Security:     middleware.DefaultSecurityConfig(),
		MaxBodySize:  1 << 20,
		RateLimiter:  limiter,
		PortalAuth:   denyAll,
		DebugEnabled: debug,
		Verification: handler.NewVerificationHandler(stubVerifier{}, stubPortal{}),
		System:       handler.NewSystemHandler(handler.SystemHandlerConfig{Name: "order-verify"}),
	})
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewEngine_Routes(t *testing.T) {
	engine := newTestEngine(t, false, 100)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/api/v1/verify-order/health", http.StatusOK},
		{"/api/v1/verify-order/PO-1", http.StatusOK},
		{"/api/v1/verify-order/PO-404", http.StatusNotFound},
		{"/api/v1/verify-order/PO-1/pdf", http.StatusUnauthorized},
		{"/api/v1/verify-order/vendor/orders", http.StatusUnauthorized},
		{"/api/v1/verify-order/debug/list-orders", http.StatusNotFound},
		{"/api/v1/system/info", http.StatusOK},
		{"/api/v1/system/ping", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, get(engine, tt.path).Code)
		})
	}
}

func TestNewEngine_DebugRoute(t *testing.T) {
	engine := newTestEngine(t, true, 100)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/verify-order/debug/list-orders").Code)
}

func TestNewEngine_GlobalHeaders(t *testing.T) {
	w := get(newTestEngine(t, false, 100), "/api/v1/system/ping")

	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestNewEngine_RateLimitsPublicVerification(t *testing.T) {
	engine := newTestEngine(t, false, 1)

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/verify-order/PO-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(engine, "/api/v1/verify-order/PO-1").Code)
	// health is not rate limited
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/verify-order/health").Code)
}

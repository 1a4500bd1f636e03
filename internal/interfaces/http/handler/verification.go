package handler

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/erp/orderverify/internal/application/verification"
	"github.com/erp/orderverify/internal/interfaces/http/dto"
	"github.com/erp/orderverify/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderVerifier verifies orders by their public code
type OrderVerifier interface {
	VerifyOrder(ctx context.Context, orderCode string) (*verification.VerificationResult, error)
	ListOrders(ctx context.Context, top int) (*verification.OrderListing, error)
}

// VendorPortal serves the authenticated vendor use cases
type VendorPortal interface {
	ListVendorOrders(ctx context.Context, portalID uuid.UUID, top int) (*verification.VendorOrderHistory, error)
	DownloadOrderPdf(ctx context.Context, portalID uuid.UUID, orderCode string) (*verification.OrderDocument, error)
}

// VerificationHandler handles the order verification endpoints
type VerificationHandler struct {
	BaseHandler
	verifier OrderVerifier
	portal   VendorPortal
	now      func() time.Time
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(verifier OrderVerifier, portal VendorPortal) *VerificationHandler {
	return &VerificationHandler{
		verifier: verifier,
		portal:   portal,
		now:      time.Now,
	}
}

// VerifyOrder handles GET /verify-order/:order_code.
// Not found answers 404 and not approved answers 200, both with the result in data.
func (h *VerificationHandler) VerifyOrder(c *gin.Context) {
	result, err := h.verifier.VerifyOrder(c.Request.Context(), c.Param("order_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == verification.StatusNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, dto.NewResultResponse(result.IsVerified(), result))
}

// DownloadOrderPdf handles GET /verify-order/:order_code/pdf
func (h *VerificationHandler) DownloadOrderPdf(c *gin.Context) {
	portalID, ok := middleware.GetVendorPortalID(c)
	if !ok {
		h.Unauthorized(c, "No vendor is assigned to this account")
		return
	}

	doc, err := h.portal.DownloadOrderPdf(c.Request.Context(), portalID, c.Param("order_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Header("Content-Length", strconv.Itoa(len(doc.Content)))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// VendorOrders handles GET /verify-order/vendor/orders?top=
func (h *VerificationHandler) VendorOrders(c *gin.Context) {
	portalID, ok := middleware.GetVendorPortalID(c)
	if !ok {
		h.Unauthorized(c, "No vendor is assigned to this account")
		return
	}
	top, err := queryInt(c, "top", 50)
	if err != nil {
		h.BadRequest(c, "top must be an integer")
		return
	}

	history, err := h.portal.ListVendorOrders(c.Request.Context(), portalID, top)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// DebugListOrders handles GET /verify-order/debug/list-orders?top=
func (h *VerificationHandler) DebugListOrders(c *gin.Context) {
	top, err := queryInt(c, "top", 10)
	if err != nil {
		h.BadRequest(c, "top must be an integer")
		return
	}

	listing, err := h.verifier.ListOrders(c.Request.Context(), top)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// Health handles GET /verify-order/health
func (h *VerificationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: "healthy",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}

package verification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/domain/shared"
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultVendorTop   = 50
	maxVendorTop       = 200
	defaultVendorTTL   = 15 * time.Minute
	pdfContentType     = "application/pdf"
	spanVendorServices = "vendor_portal"
)

var (
	errVendorNotLinked = shared.NewDomainError(shared.CodeForbidden, "No vendor is linked to this account")
	errOrderNotOwned   = shared.NewDomainError(shared.CodeForbidden, "This order belongs to another vendor")
	errOrderNotFound   = shared.NewDomainError(shared.CodeNotFound, MessageNotFound)
)

// VendorPortalService serves the authenticated vendor portal
type VendorPortalService struct {
	gateway  integration.PurchaseOrderGateway
	cache    integration.VendorNoCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// VendorPortalServiceConfig holds the dependencies of VendorPortalService
type VendorPortalServiceConfig struct {
	Gateway integration.PurchaseOrderGateway
	// Cache may be nil, in which case every resolution hits the gateway.
	Cache    integration.VendorNoCache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewVendorPortalService creates a new VendorPortalService
func NewVendorPortalService(config VendorPortalServiceConfig) *VendorPortalService {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = defaultVendorTTL
	}
	return &VendorPortalService{
		gateway:  config.Gateway,
		cache:    config.Cache,
		cacheTTL: ttl,
		logger:   log,
	}
}

// ResolveVendorNo returns the vendor number linked to a portal identity.
// Only successful resolutions are cached.
func (s *VendorPortalService) ResolveVendorNo(ctx context.Context, portalID uuid.UUID) (string, bool, error) {
	if s.gateway == nil {
		return "", false, shared.ErrUnavailable
	}
	log := s.log(ctx).With(zap.String("vendor_portal_id", portalID.String()))

	if s.cache != nil {
		vendorNo, ok, err := s.cache.Get(ctx, portalID)
		switch {
		case err != nil:
			log.Warn("Vendor cache lookup failed", zap.Error(err))
		case ok:
			return vendorNo, true, nil
		}
	}

	vendorNo, ok, err := s.gateway.ResolveVendorNo(ctx, portalID)
	if err != nil {
		return "", false, translateGatewayError(err)
	}
	if !ok {
		return "", false, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, portalID, vendorNo, s.cacheTTL); err != nil {
			log.Warn("Vendor cache store failed", zap.Error(err))
		}
	}
	return vendorNo, true, nil
}

// ListVendorOrders returns the orders of the vendor linked to portalID
func (s *VendorPortalService) ListVendorOrders(ctx context.Context, portalID uuid.UUID, top int) (*VendorOrderHistory, error) {
	top = clampTop(top, defaultVendorTop, maxVendorTop)

	ctx, span := telemetry.StartServiceSpan(ctx, spanVendorServices, "list_vendor_orders",
		telemetry.WithAttribute(telemetry.SpanAttrVendorPortal, portalID.String()),
		telemetry.WithAttribute("top", top))
	defer span.End()

	vendorNo, err := s.requireVendor(ctx, portalID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrVendorNo, vendorNo)
	log := s.log(ctx).With(zap.String("vendor_no", vendorNo))

	orders, err := s.gateway.GetPurchaseOrdersByVendor(ctx, vendorNo, top)
	if err != nil {
		log.Error("Listing vendor orders failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, translateGatewayError(err)
	}

	owned := make([]integration.PurchaseOrder, 0, len(orders))
	for i := range orders {
		if orders[i].BelongsToVendor(vendorNo) {
			owned = append(owned, orders[i])
		}
	}
	if dropped := len(orders) - len(owned); dropped > 0 {
		log.Warn("Dropped orders of other vendors from history", zap.Int("dropped", dropped))
	}

	vendorID, err := integration.VendorIdentityFromNo(vendorNo)
	if err != nil {
		return nil, err
	}

	summaries := ToOrderSummaries(owned)
	log.Info("Vendor order history retrieved", zap.Int("count", len(summaries)))
	telemetry.SetOK(span)
	return &VendorOrderHistory{
		VendorNo: vendorNo,
		VendorID: vendorID,
		Count:    len(summaries),
		Orders:   summaries,
	}, nil
}

// DownloadOrderPdf returns the document of an order owned by the vendor linked to portalID
func (s *VendorPortalService) DownloadOrderPdf(ctx context.Context, portalID uuid.UUID, orderCode string) (*OrderDocument, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order code is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanVendorServices, "download_order_pdf",
		telemetry.WithAttribute(telemetry.SpanAttrVendorPortal, portalID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, orderCode))
	defer span.End()

	vendorNo, err := s.requireVendor(ctx, portalID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	log := s.log(ctx).With(zap.String("vendor_no", vendorNo), zap.String("order_number", orderCode))

	order, err := s.gateway.GetPurchaseOrder(ctx, orderCode)
	if err != nil {
		log.Error("Order lookup for document download failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, translateGatewayError(err)
	}
	if order == nil {
		return nil, errOrderNotFound
	}
	if !order.BelongsToVendor(vendorNo) {
		log.Warn("Vendor requested the document of another vendor's order",
			zap.String("order_vendor_no", order.VendorNo))
		return nil, errOrderNotOwned
	}

	doc, err := s.gateway.GetPurchaseOrderPdf(ctx, orderCode)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, integration.ErrDocumentDecode) {
			log.Error("Order document could not be decoded", zap.Error(err))
			return nil, shared.ErrPdfUnavailable.WithCause(err)
		}
		if errors.Is(err, integration.ErrResponseTooLarge) {
			log.Error("Order document is too large to download", zap.Error(err))
			return nil, shared.ErrPdfUnavailable.WithCause(err)
		}
		return nil, translateGatewayError(err)
	}
	if doc.IsEmpty() {
		log.Warn("No document is published for the order")
		return nil, shared.ErrPdfUnavailable
	}

	log.Info("Order document served", zap.Int("size_bytes", len(doc.PDF)))
	telemetry.SetOK(span)
	return &OrderDocument{
		FileName:    integration.FileName(orderCode),
		ContentType: pdfContentType,
		Content:     doc.PDF,
	}, nil
}

// requireVendor resolves the vendor number or fails with FORBIDDEN
func (s *VendorPortalService) requireVendor(ctx context.Context, portalID uuid.UUID) (string, error) {
	vendorNo, ok, err := s.ResolveVendorNo(ctx, portalID)
	if err != nil {
		return "", err
	}
	if !ok {
		s.log(ctx).Warn("No vendor linked to portal identity", zap.String("vendor_portal_id", portalID.String()))
		return "", errVendorNotLinked
	}
	return vendorNo, nil
}

func (s *VendorPortalService) log(ctx context.Context) *zap.Logger {
	l := logger.WithTraceContext(ctx, s.logger)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	return l
}

// Package verification implements public purchase order verification and
// the vendor portal use cases on top of the ERP gateway.
package verification

import (
	"context"
	"strings"
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/domain/shared"
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultListTop = 10
	maxListTop     = 100
)

// VerificationService verifies purchase orders by their public code
type VerificationService struct {
	gateway integration.PurchaseOrderGateway
	audits  integration.VerificationAuditRepository
	logger  *zap.Logger
	now     func() time.Time
}

// VerificationServiceConfig holds the dependencies of VerificationService
type VerificationServiceConfig struct {
	// Gateway may be nil when the ERP integration is not configured.
	Gateway integration.PurchaseOrderGateway
	// Audits may be nil; attempts are then not recorded.
	Audits integration.VerificationAuditRepository
	Logger *zap.Logger
	Now    func() time.Time
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(config VerificationServiceConfig) *VerificationService {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	audits := config.Audits
	if audits == nil {
		audits = nopAuditRepository{}
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &VerificationService{
		gateway: config.Gateway,
		audits:  audits,
		logger:  log,
		now:     now,
	}
}

// VerifyOrder looks up an order and decides whether it can be shown as verified
func (s *VerificationService) VerifyOrder(ctx context.Context, orderCode string) (*VerificationResult, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order code is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "verification", "verify_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, orderCode))
	defer span.End()
	log := s.log(ctx).With(zap.String("order_number", orderCode))

	if s.gateway == nil {
		log.Warn("ERP integration is not configured, reporting order as not found")
		return s.finish(ctx, span, orderCode, &VerificationResult{Status: StatusNotFound, Message: MessageNotFound}, ""), nil
	}

	order, err := s.gateway.GetPurchaseOrder(ctx, orderCode)
	if err != nil {
		log.Error("Order verification failed", zap.Error(err))
		telemetry.RecordError(span, err)
		s.record(ctx, orderCode, integration.OutcomeError, "")
		return nil, translateGatewayError(err)
	}

	if order == nil {
		log.Info("Order not found")
		return s.finish(ctx, span, orderCode, &VerificationResult{Status: StatusNotFound, Message: MessageNotFound}, ""), nil
	}

	if strings.TrimSpace(order.Status) == "" {
		log.Warn("Order has no status, allowing verification")
	}
	if order.AwaitingApproval() {
		log.Info("Order is not approved", zap.String("status", order.Status))
		return s.finish(ctx, span, orderCode,
			&VerificationResult{Status: StatusNotApproved, Message: MessageNotApproved}, order.DisplayStatus()), nil
	}

	details := ToOrderDetails(order)
	log.Info("Order verified", zap.String("status", details.Status), zap.Int("items", len(details.Items)))
	return s.finish(ctx, span, orderCode,
		&VerificationResult{Status: StatusVerified, Message: MessageVerified, Order: details}, details.Status), nil
}

// ListOrders returns recent active orders for troubleshooting
func (s *VerificationService) ListOrders(ctx context.Context, top int) (*OrderListing, error) {
	if s.gateway == nil {
		return nil, shared.ErrUnavailable
	}
	top = clampTop(top, defaultListTop, maxListTop)

	ctx, span := telemetry.StartServiceSpan(ctx, "verification", "list_orders",
		telemetry.WithAttribute("top", top))
	defer span.End()

	orders, err := s.gateway.ListPurchaseOrders(ctx, top)
	if err != nil {
		s.log(ctx).Error("Listing orders failed", zap.Int("top", top), zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, translateGatewayError(err)
	}

	summaries := ToOrderSummaries(orders)
	return &OrderListing{Count: len(summaries), Orders: summaries}, nil
}

// RecentAttempts returns the latest recorded verification attempts
func (s *VerificationService) RecentAttempts(ctx context.Context, limit int) ([]integration.VerificationAudit, error) {
	return s.audits.ListRecent(ctx, limit)
}

func (s *VerificationService) finish(ctx context.Context, span trace.Span, orderCode string, result *VerificationResult, displayStatus string) *VerificationResult {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrVerifyOutcome, result.Status,
		telemetry.SpanAttrOrderStatus, displayStatus,
	)
	telemetry.SetOK(span)
	s.record(ctx, orderCode, integration.VerificationOutcome(result.Status), displayStatus)
	return result
}

// record stores a verification attempt. Failures are logged only.
func (s *VerificationService) record(ctx context.Context, orderCode string, outcome integration.VerificationOutcome, displayStatus string) {
	audit, err := integration.NewVerificationAudit(orderCode, outcome, displayStatus, logger.GetRequestID(ctx), s.now())
	if err != nil {
		s.log(ctx).Warn("Verification audit rejected", zap.String("order_number", orderCode), zap.Error(err))
		return
	}
	if err := s.audits.Save(ctx, audit); err != nil {
		s.log(ctx).Warn("Failed to record verification audit", zap.String("order_number", orderCode), zap.Error(err))
	}
}

func (s *VerificationService) log(ctx context.Context) *zap.Logger {
	l := logger.WithTraceContext(ctx, s.logger)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	return l
}

// nopAuditRepository is used when the audit trail is disabled
type nopAuditRepository struct{}

func (nopAuditRepository) Save(context.Context, *integration.VerificationAudit) error { return nil }

func (nopAuditRepository) ListRecent(context.Context, int) ([]integration.VerificationAudit, error) {
	return []integration.VerificationAudit{}, nil
}

package businesscentral

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/infrastructure/logger"
	"github.com/erp/orderverify/internal/infrastructure/telemetry"
)

const spanService = "business_central"

// Gateway reads purchase orders, vendor mappings and order documents from the
// Business Central custom API. It implements integration.PurchaseOrderGateway.
type Gateway struct {
	cfg     *Config
	tokens  *TokenCache
	fetcher *fetcher
	logger  *zap.Logger
}

var _ integration.PurchaseOrderGateway = (*Gateway)(nil)

type gatewayOptions struct {
	httpClient *http.Client
	logger     *zap.Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

// Option configures a Gateway
type Option func(*gatewayOptions)

// WithHTTPClient sets the client used for both the token endpoint and the API
func WithHTTPClient(client *http.Client) Option {
	return func(o *gatewayOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *gatewayOptions) {
		o.logger = l
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) Option {
	return func(o *gatewayOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithNow overrides the clock used for token expiry
func WithNow(now func() time.Time) Option {
	return func(o *gatewayOptions) {
		o.now = now
	}
}

// NewGateway validates cfg and creates a gateway
func NewGateway(cfg *Config, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &gatewayOptions{
		logger:  zap.NewNop(),
		metrics: nopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	log := o.logger.Named("business_central")
	return &Gateway{
		cfg: cfg,
		tokens: NewTokenCache(cfg,
			WithTokenHTTPClient(o.httpClient),
			WithClock(o.now),
			WithTokenLogger(log),
			WithTokenMetrics(o.metrics),
		),
		fetcher: &fetcher{
			cfg:        cfg,
			httpClient: o.httpClient,
			metrics:    o.metrics,
			logger:     log,
		},
		logger: log,
	}, nil
}

// GetPurchaseOrder looks the order up among active orders, then among archived versions
func (g *Gateway) GetPurchaseOrder(ctx context.Context, number string) (*integration.PurchaseOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "get_purchase_order",
		telemetry.WithAttribute("order.number", number))
	defer span.End()
	log := g.log(ctx).With(zap.String("order_number", number))

	cred, err := g.tokens.EnsureToken(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	candidates := EnvironmentCandidates(g.cfg.Environment)

	activeQuery := odataQuery{Filter: numberFilter(number)}
	if g.cfg.ExpandOrderLines {
		activeQuery.Expand = "purchaseOrderLines"
	}
	active := runProbe(ctx, g.fetcher, cred.Token, candidates, probeSpec[purchaseOrderDTO]{
		Resource: ResourcePurchaseOrders,
		Query:    activeQuery,
	})
	switch active.State {
	case stateFound:
		order := active.Items[0].toDomain()
		log.Info("Purchase order found", zap.String("environment", active.Environment))
		telemetry.SetAttribute(span, "order.source", "active")
		return &order, nil
	case stateEnvironmentsExhausted, stateFailed:
		if err := g.escalate(span, log, active.Err); err != nil {
			return nil, err
		}
	}

	log.Info("Purchase order not found among active orders, searching archive")
	archived := runProbe(ctx, g.fetcher, cred.Token, candidates, probeSpec[purchaseHeaderArchiveDTO]{
		Resource: ResourcePurchaseHeaderArchives,
		Query: odataQuery{
			Filter:  numberFilter(number),
			OrderBy: "versionNo desc",
			Top:     1,
		},
	})
	switch archived.State {
	case stateFound:
		order := archived.Items[0].toDomain().ToPurchaseOrder()
		log.Info("Archived purchase order found",
			zap.String("environment", archived.Environment),
			zap.Int("version_no", archived.Items[0].VersionNo),
		)
		telemetry.SetAttribute(span, "order.source", "archive")
		return &order, nil
	case stateEnvironmentsExhausted, stateFailed:
		if err := g.escalate(span, log, archived.Err); err != nil {
			return nil, err
		}
	}

	log.Warn("Purchase order not found")
	return nil, nil
}

// ListPurchaseOrders returns up to top active orders from the first environment that has any
func (g *Gateway) ListPurchaseOrders(ctx context.Context, top int) ([]integration.PurchaseOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "list_purchase_orders",
		telemetry.WithAttribute("top", top))
	defer span.End()
	log := g.log(ctx).With(zap.Int("top", top))

	cred, err := g.tokens.EnsureToken(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	res := runProbe(ctx, g.fetcher, cred.Token, EnvironmentCandidates(g.cfg.Environment), probeSpec[purchaseOrderDTO]{
		Resource:        ResourcePurchaseOrders,
		Query:           odataQuery{Top: top},
		ContinueOnEmpty: true,
	})
	switch res.State {
	case stateFound:
		return toPurchaseOrders(res.Items), nil
	case stateEnvironmentsExhausted, stateFailed:
		if err := g.escalate(span, log, res.Err); err != nil {
			return nil, err
		}
	}
	return []integration.PurchaseOrder{}, nil
}

// ResolveVendorNo returns the vendor number linked to a vendor-portal identity
func (g *Gateway) ResolveVendorNo(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "resolve_vendor_no",
		telemetry.WithAttribute("vendor.portal_id", vendorPortalID.String()))
	defer span.End()
	log := g.log(ctx).With(zap.String("vendor_portal_id", vendorPortalID.String()))

	cred, err := g.tokens.EnsureToken(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", false, err
	}

	res := runProbe(ctx, g.fetcher, cred.Token, EnvironmentCandidates(g.cfg.Environment), probeSpec[portalVendorDTO]{
		Resource:        ResourcePortalVendors,
		Query:           odataQuery{Filter: portalIDFilter(vendorPortalID)},
		ContinueOnEmpty: true,
		Usable: func(v portalVendorDTO) bool {
			return strings.TrimSpace(v.VendorNo) != ""
		},
	})
	switch res.State {
	case stateFound:
		mapping := res.Items[0].toDomain()
		log.Info("Vendor resolved", zap.String("vendor_no", mapping.VendorNo))
		return mapping.VendorNo, true, nil
	case stateFailed:
		if err := g.escalate(span, log, res.Err); err != nil {
			return "", false, err
		}
	case stateEnvironmentsExhausted:
		log.Warn("No candidate environment exists while resolving vendor", zap.Error(res.Err))
	}

	log.Warn("Vendor not found for portal identity")
	return "", false, nil
}

// GetPurchaseOrdersByVendor returns up to top active orders bought from vendorNo
func (g *Gateway) GetPurchaseOrdersByVendor(ctx context.Context, vendorNo string, top int) ([]integration.PurchaseOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "get_purchase_orders_by_vendor",
		telemetry.WithAttribute("vendor.no", vendorNo),
		telemetry.WithAttribute("top", top))
	defer span.End()
	log := g.log(ctx).With(zap.String("vendor_no", vendorNo), zap.Int("top", top))

	cred, err := g.tokens.EnsureToken(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	res := runProbe(ctx, g.fetcher, cred.Token, EnvironmentCandidates(g.cfg.Environment), probeSpec[purchaseOrderDTO]{
		Resource: ResourcePurchaseOrders,
		Query:    odataQuery{Filter: vendorNoFilter(vendorNo), Top: top},
	})
	switch res.State {
	case stateFound:
		return toPurchaseOrders(res.Items), nil
	case stateFailed:
		if err := g.escalate(span, log, res.Err); err != nil {
			return nil, err
		}
	case stateEnvironmentsExhausted:
		log.Warn("No candidate environment exists while listing vendor orders", zap.Error(res.Err))
	}
	return []integration.PurchaseOrder{}, nil
}

// GetPurchaseOrderPdf returns the rendered order document, or nil when none is published
func (g *Gateway) GetPurchaseOrderPdf(ctx context.Context, number string) (*integration.OrderPdfDocument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "get_purchase_order_pdf",
		telemetry.WithAttribute("order.number", number))
	defer span.End()
	log := g.log(ctx).With(zap.String("order_number", number))

	cred, err := g.tokens.EnsureToken(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	res := runProbe(ctx, g.fetcher, cred.Token, EnvironmentCandidates(g.cfg.Environment), probeSpec[purchaseOrderPdfDTO]{
		Resource:        ResourcePurchaseOrderPdfs,
		Query:           odataQuery{Filter: numberFilter(number)},
		ContinueOnEmpty: true,
		Usable: func(p purchaseOrderPdfDTO) bool {
			return strings.TrimSpace(p.PdfBase64) != ""
		},
	})
	switch res.State {
	case stateFound:
		dto := res.Items[0]
		pdf, err := decodeDocument(dto.PdfBase64)
		if err != nil {
			log.Error("Order document payload is not valid base64", zap.Error(err))
			err = fmt.Errorf("%w: order %s: %v", integration.ErrDocumentDecode, number, err)
			telemetry.RecordError(span, err)
			return nil, err
		}
		log.Info("Order document retrieved", zap.Int("size_bytes", len(pdf)))
		return &integration.OrderPdfDocument{ID: dto.ID, Number: dto.Number, PDF: pdf}, nil
	case stateFailed:
		if errors.Is(res.Err, integration.ErrResponseTooLarge) {
			log.Error("Order document exceeds the response size limit", zap.Error(res.Err))
			telemetry.RecordError(span, res.Err)
			return nil, res.Err
		}
		if err := g.escalate(span, log, res.Err); err != nil {
			return nil, err
		}
	case stateEnvironmentsExhausted:
		log.Warn("No candidate environment exists while fetching order document", zap.Error(res.Err))
	}

	log.Warn("Order document not found")
	return nil, nil
}

// escalate returns err when it must abort the call. Soft failures are logged
// and swallowed.
func (g *Gateway) escalate(span trace.Span, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, integration.ErrRemoteAuthorization) {
		// the next call starts from a fresh token
		g.tokens.Invalidate()
	}
	if integration.IsHardFailure(err) {
		log.Error("Business Central lookup failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return err
	}

	fields := []zap.Field{zap.Error(err)}
	var rq *integration.RemoteQueryError
	if errors.As(err, &rq) {
		fields = append(fields,
			zap.Int("status", rq.StatusCode),
			zap.String("environment", rq.Environment),
			zap.String("body", rq.Body),
		)
	}
	log.Warn("Business Central query failed, treating as not found", fields...)
	telemetry.AddEvent(span, "remote_query_failed", "error", err.Error())
	return nil
}

func (g *Gateway) log(ctx context.Context) *zap.Logger {
	l := logger.WithTraceContext(ctx, g.logger)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	return l
}

// decodeDocument decodes a standard base64 payload, ignoring embedded whitespace
func decodeDocument(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
}

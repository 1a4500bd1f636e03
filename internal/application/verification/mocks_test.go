package verification

import (
	"context"
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of integration.PurchaseOrderGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetPurchaseOrder(ctx context.Context, number string) (*integration.PurchaseOrder, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) ListPurchaseOrders(ctx context.Context, top int) ([]integration.PurchaseOrder, error) {
	args := m.Called(ctx, top)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) ResolveVendorNo(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error) {
	args := m.Called(ctx, vendorPortalID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockGateway) GetPurchaseOrdersByVendor(ctx context.Context, vendorNo string, top int) ([]integration.PurchaseOrder, error) {
	args := m.Called(ctx, vendorNo, top)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) GetPurchaseOrderPdf(ctx context.Context, number string) (*integration.OrderPdfDocument, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.OrderPdfDocument), args.Error(1)
}

// MockVendorNoCache is a mock implementation of integration.VendorNoCache
type MockVendorNoCache struct {
	mock.Mock
}

func (m *MockVendorNoCache) Get(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error) {
	args := m.Called(ctx, vendorPortalID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockVendorNoCache) Set(ctx context.Context, vendorPortalID uuid.UUID, vendorNo string, ttl time.Duration) error {
	args := m.Called(ctx, vendorPortalID, vendorNo, ttl)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of integration.VerificationAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Save(ctx context.Context, audit *integration.VerificationAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) ListRecent(ctx context.Context, limit int) ([]integration.VerificationAudit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.VerificationAudit), args.Error(1)
}

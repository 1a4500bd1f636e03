package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PurchaseOrderGateway is the port through which the service reads purchase
// orders, vendor mappings and order documents from the ERP.
//
// Implementations probe candidate environments in order and only surface
// ErrAuthProvider, ErrRemoteAuthorization and ErrEnvironmentResolution.
// Other remote failures are logged and reported as "not found" or empty.
type PurchaseOrderGateway interface {
	// GetPurchaseOrder returns the active order, or the latest archived
	// version when no active order exists. Returns nil when neither exists.
	GetPurchaseOrder(ctx context.Context, number string) (*PurchaseOrder, error)

	// ListPurchaseOrders returns up to top active orders.
	ListPurchaseOrders(ctx context.Context, top int) ([]PurchaseOrder, error)

	// ResolveVendorNo returns the vendor number linked to a portal identity.
	ResolveVendorNo(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error)

	// GetPurchaseOrdersByVendor returns up to top active orders of one vendor.
	GetPurchaseOrdersByVendor(ctx context.Context, vendorNo string, top int) ([]PurchaseOrder, error)

	// GetPurchaseOrderPdf returns the rendered document of an order, or nil
	// when no document is published for it.
	GetPurchaseOrderPdf(ctx context.Context, number string) (*OrderPdfDocument, error)
}

// VendorNoCache caches portal identity to vendor number resolutions.
type VendorNoCache interface {
	// Get returns the cached vendor number and whether it was present.
	Get(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error)
	// Set stores a vendor number for ttl.
	Set(ctx context.Context, vendorPortalID uuid.UUID, vendorNo string, ttl time.Duration) error
}

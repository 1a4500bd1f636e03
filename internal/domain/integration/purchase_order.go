package integration

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// PurchaseOrder
// ---------------------------------------------------------------------------

// PurchaseOrder is an active purchase order as published by the ERP.
type PurchaseOrder struct {
	ID               uuid.UUID
	Number           string
	DocumentDate     *time.Time
	VendorNo         string
	VendorName       string
	Status           string
	Amount           decimal.Decimal
	AmountInclTax    decimal.Decimal
	Currency         string
	PaymentTermsCode string
	Lines            []OrderLine
}

// OrderLine is a single line of a purchase order
type OrderLine struct {
	Sequence    int
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	LineAmount  decimal.Decimal
}

// VendorDisplayName returns the vendor name, falling back to the vendor number.
func (o *PurchaseOrder) VendorDisplayName() string {
	if strings.TrimSpace(o.VendorName) != "" {
		return o.VendorName
	}
	return o.VendorNo
}

// BelongsToVendor reports whether the order was bought from vendorNo.
// Vendor numbers are compared case-insensitively.
func (o *PurchaseOrder) BelongsToVendor(vendorNo string) bool {
	if strings.TrimSpace(vendorNo) == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(o.VendorNo), strings.TrimSpace(vendorNo))
}

// DisplayStatus returns the user-facing status label.
func (o *PurchaseOrder) DisplayStatus() string {
	return MapStatus(o.Status)
}

// AwaitingApproval reports whether the order has not been approved yet.
func (o *PurchaseOrder) AwaitingApproval() bool {
	return IsAwaitingApproval(o.Status)
}

// ---------------------------------------------------------------------------
// ArchivedPurchaseOrder
// ---------------------------------------------------------------------------

// ArchivedPurchaseOrder is a historical version of a purchase order.
// It carries no lines and no amounts.
type ArchivedPurchaseOrder struct {
	ID              uuid.UUID
	DocumentType    string
	Number          string
	DocNoOccurrence int
	VersionNo       int
	VendorNo        string
	VendorName      string
	OrderDate       *time.Time
	Status          string
}

// ArchivedStatus returns the status annotated with the archive version.
func (a ArchivedPurchaseOrder) ArchivedStatus() string {
	return fmt.Sprintf("%s (Archived v%d)", a.Status, a.VersionNo)
}

// ToPurchaseOrder normalizes the archived version into the active shape.
func (a ArchivedPurchaseOrder) ToPurchaseOrder() PurchaseOrder {
	return PurchaseOrder{
		ID:            a.ID,
		Number:        a.Number,
		DocumentDate:  a.OrderDate,
		VendorNo:      a.VendorNo,
		VendorName:    a.VendorName,
		Status:        a.ArchivedStatus(),
		Amount:        decimal.Zero,
		AmountInclTax: decimal.Zero,
		Lines:         []OrderLine{},
	}
}

// ---------------------------------------------------------------------------
// PortalVendorMapping / OrderPdfDocument
// ---------------------------------------------------------------------------

// PortalVendorMapping links a vendor-portal identity to an ERP vendor number.
type PortalVendorMapping struct {
	ID             uuid.UUID
	VendorNo       string
	VendorName     string
	VendorPortalID uuid.UUID
}

// OrderPdfDocument is the rendered document of a purchase order.
type OrderPdfDocument struct {
	ID     uuid.UUID
	Number string
	PDF    []byte
}

// IsEmpty reports whether the document has no content.
func (d *OrderPdfDocument) IsEmpty() bool {
	return d == nil || len(d.PDF) == 0
}

// FileName returns the download name for an order document.
func FileName(orderNumber string) string {
	return fmt.Sprintf("PurchaseOrder_%s.pdf", orderNumber)
}

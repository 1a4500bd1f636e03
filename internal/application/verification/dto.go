package verification

import (
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Verification result statuses
const (
	StatusVerified    = "verified"
	StatusNotFound    = "not_found"
	StatusNotApproved = "not_approved"
)

// Messages returned with non-verified results
const (
	MessageNotFound    = "Order not found"
	MessageNotApproved = "This order has not been approved yet. Only approved orders can be verified."
	MessageVerified    = "Order verified"
)

const (
	dateLayout        = "02 January 2006"
	noDateLabel       = "No date"
	defaultDepartment = "Purchasing"
	defaultApprover   = "Administrator"
)

// VerificationResult is the outcome of a public order verification
type VerificationResult struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Order   *OrderDetails `json:"order,omitempty"`
}

// IsVerified reports whether the order passed verification
func (r *VerificationResult) IsVerified() bool {
	return r != nil && r.Status == StatusVerified
}

// OrderDetails is the public view of a verified order
type OrderDetails struct {
	OrderNumber string          `json:"order_number"`
	Date        string          `json:"date"`
	Vendor      string          `json:"vendor"`
	Department  string          `json:"department"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	ApprovedBy  string          `json:"approved_by"`
}

// OrderItem is one line of a verified order
type OrderItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderSummary is a row of an order listing
type OrderSummary struct {
	Number string          `json:"number"`
	Date   string          `json:"date"`
	Vendor string          `json:"vendor"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

// OrderListing is the debug listing of recent orders
type OrderListing struct {
	Count  int            `json:"count"`
	Orders []OrderSummary `json:"orders"`
}

// VendorOrderHistory lists the orders of the authenticated vendor
type VendorOrderHistory struct {
	VendorNo string         `json:"vendor_no"`
	VendorID uuid.UUID      `json:"vendor_id"`
	Count    int            `json:"count"`
	Orders   []OrderSummary `json:"orders"`
}

// OrderDocument is a downloadable order PDF
type OrderDocument struct {
	FileName    string
	ContentType string
	Content     []byte
}

// formatDate renders a document date for display
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return noDateLabel
	}
	return t.Format(dateLayout)
}

// ToOrderDetails converts a domain order to the public verified view
func ToOrderDetails(o *integration.PurchaseOrder) *OrderDetails {
	items := make([]OrderItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, OrderItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitCost,
		})
	}
	return &OrderDetails{
		OrderNumber: o.Number,
		Date:        formatDate(o.DocumentDate),
		Vendor:      o.VendorDisplayName(),
		Department:  defaultDepartment,
		Items:       items,
		Total:       o.AmountInclTax,
		Status:      o.DisplayStatus(),
		ApprovedBy:  defaultApprover,
	}
}

// ToOrderSummary converts a domain order to a listing row
func ToOrderSummary(o *integration.PurchaseOrder) OrderSummary {
	return OrderSummary{
		Number: o.Number,
		Date:   formatDate(o.DocumentDate),
		Vendor: o.VendorDisplayName(),
		Total:  o.AmountInclTax,
		Status: o.DisplayStatus(),
	}
}

// ToOrderSummaries converts a slice of domain orders to listing rows
func ToOrderSummaries(orders []integration.PurchaseOrder) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderSummary(&orders[i]))
	}
	return out
}

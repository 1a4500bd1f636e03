package businesscentral

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/orderverify/internal/domain/integration"
)

// odataCollection is the envelope of every collection response
type odataCollection[T any] struct {
	Value []T `json:"value"`
}

// errorEnvelope is the body returned with non-2xx responses
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// noEnvironmentCode is the error code returned for an unknown environment
const noEnvironmentCode = "NoEnvironment"

// tokenResponse is the client-credentials token response
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
	TokenType   string      `json:"token_type"`
}

// bcDate is a date or date-time as serialized by the API.
// The zero date "0001-01-01" means "not set".
type bcDate string

var bcDateLayouts = []string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04:05"}

// Time parses the value; it returns nil for blank, zero or unparseable values
func (d bcDate) Time() *time.Time {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return nil
	}
	for _, layout := range bcDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() <= 1 {
			return nil
		}
		return &t
	}
	return nil
}

// purchaseOrderDTO is an element of purchaseOrders
type purchaseOrderDTO struct {
	ID                 uuid.UUID              `json:"id"`
	Number             string                 `json:"number"`
	DocumentDate       bcDate                 `json:"documentDate"`
	BuyFromVendorNo    string                 `json:"buyFromVendorNo"`
	VendorName         string                 `json:"vendorName"`
	Status             string                 `json:"status"`
	Amount             decimal.Decimal        `json:"amount"`
	AmountIncludingVAT decimal.Decimal        `json:"amountIncludingVAT"`
	CurrencyCode       string                 `json:"currencyCode"`
	PaymentTermsCode   string                 `json:"paymentTermsCode"`
	Lines              []purchaseOrderLineDTO `json:"purchaseOrderLines,omitempty"`
}

// purchaseOrderLineDTO is an element of purchaseOrderLines
type purchaseOrderLineDTO struct {
	Sequence       int             `json:"sequence"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	DirectUnitCost decimal.Decimal `json:"directUnitCost"`
	LineAmount     decimal.Decimal `json:"lineAmount"`
}

// purchaseHeaderArchiveDTO is an element of purchaseHeaderArchives
type purchaseHeaderArchiveDTO struct {
	ID              uuid.UUID `json:"id"`
	DocumentType    string    `json:"documentType"`
	Number          string    `json:"number"`
	DocNoOccurrence int       `json:"docNoOccurrence"`
	VersionNo       int       `json:"versionNo"`
	BuyFromVendorNo string    `json:"buyFromVendorNo"`
	VendorName      string    `json:"vendorName"`
	OrderDate       bcDate    `json:"orderDate"`
	Status          string    `json:"status"`
}

// portalVendorDTO is an element of portalVendors
type portalVendorDTO struct {
	ID             uuid.UUID `json:"id"`
	VendorNo       string    `json:"vendorNo"`
	VendorName     string    `json:"vendorName"`
	VendorPortalID uuid.UUID `json:"vendorPortalId"`
}

// purchaseOrderPdfDTO is an element of purchaseOrderPdfs
type purchaseOrderPdfDTO struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	PdfBase64 string    `json:"pdfBase64"`
}

func (d purchaseOrderDTO) toDomain() integration.PurchaseOrder {
	lines := make([]integration.OrderLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, integration.OrderLine{
			Sequence:    l.Sequence,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitCost:    l.DirectUnitCost,
			LineAmount:  l.LineAmount,
		})
	}
	return integration.PurchaseOrder{
		ID:               d.ID,
		Number:           d.Number,
		DocumentDate:     d.DocumentDate.Time(),
		VendorNo:         d.BuyFromVendorNo,
		VendorName:       d.VendorName,
		Status:           d.Status,
		Amount:           d.Amount,
		AmountInclTax:    d.AmountIncludingVAT,
		Currency:         d.CurrencyCode,
		PaymentTermsCode: d.PaymentTermsCode,
		Lines:            lines,
	}
}

func (d purchaseHeaderArchiveDTO) toDomain() integration.ArchivedPurchaseOrder {
	return integration.ArchivedPurchaseOrder{
		ID:              d.ID,
		DocumentType:    d.DocumentType,
		Number:          d.Number,
		DocNoOccurrence: d.DocNoOccurrence,
		VersionNo:       d.VersionNo,
		VendorNo:        d.BuyFromVendorNo,
		VendorName:      d.VendorName,
		OrderDate:       d.OrderDate.Time(),
		Status:          d.Status,
	}
}

func (d portalVendorDTO) toDomain() integration.PortalVendorMapping {
	return integration.PortalVendorMapping{
		ID:             d.ID,
		VendorNo:       d.VendorNo,
		VendorName:     d.VendorName,
		VendorPortalID: d.VendorPortalID,
	}
}

func toPurchaseOrders(dtos []purchaseOrderDTO) []integration.PurchaseOrder {
	orders := make([]integration.PurchaseOrder, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain())
	}
	return orders
}

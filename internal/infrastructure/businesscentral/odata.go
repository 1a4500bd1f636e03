package businesscentral

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Resource is a collection published by the custom API
type Resource string

const (
	ResourcePurchaseOrders         Resource = "purchaseOrders"
	ResourcePurchaseHeaderArchives Resource = "purchaseHeaderArchives"
	ResourcePortalVendors          Resource = "portalVendors"
	ResourcePurchaseOrderPdfs      Resource = "purchaseOrderPdfs"
)

// String returns the string representation of Resource
func (r Resource) String() string {
	return string(r)
}

// odataQuery holds the system query options of one collection request
type odataQuery struct {
	Filter  string
	OrderBy string
	Top     int
	Expand  string
}

// Encode renders the query string. Option names keep their literal '$'.
func (q odataQuery) Encode() string {
	parts := make([]string, 0, 4)
	if q.Filter != "" {
		parts = append(parts, "$filter="+encodeValue(q.Filter))
	}
	if q.OrderBy != "" {
		parts = append(parts, "$orderby="+encodeValue(q.OrderBy))
	}
	if q.Top > 0 {
		parts = append(parts, "$top="+strconv.Itoa(q.Top))
	}
	if q.Expand != "" {
		parts = append(parts, "$expand="+encodeValue(q.Expand))
	}
	return strings.Join(parts, "&")
}

func encodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// escapeLiteral escapes a value for use inside a quoted OData string literal
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func numberFilter(number string) string {
	return fmt.Sprintf("number eq '%s'", escapeLiteral(number))
}

// vendorNoFilter matches orders on buyFromVendorNo. Older portal builds
// filtered on vendorId instead; the purchaseOrders page must publish
// buyFromVendorNo as a filterable field.
func vendorNoFilter(vendorNo string) string {
	return fmt.Sprintf("buyFromVendorNo eq '%s'", escapeLiteral(vendorNo))
}

// portalIDFilter compares against a GUID literal, which OData leaves unquoted
func portalIDFilter(id uuid.UUID) string {
	return fmt.Sprintf("vendorPortalId eq %s", id.String())
}

package integration

import "strings"

// Display labels produced by MapStatus
const (
	StatusLabelUnknown         = "Unknown"
	StatusLabelOpen            = "Open"
	StatusLabelApproved        = "Approved"
	StatusLabelPendingApproval = "Pending Approval"
)

// MapStatus translates a raw ERP status into a display label.
// Unrecognized values are returned unchanged.
func MapStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusLabelUnknown
	}
	switch strings.ToLower(trimmed) {
	case "open":
		return StatusLabelOpen
	case "released":
		return StatusLabelApproved
	case "pending approval":
		return StatusLabelPendingApproval
	case "pending prepayment", "pending_x0020_prepayment":
		// prepayment is only pending once the order has been released
		return StatusLabelApproved
	default:
		return raw
	}
}

// IsAwaitingApproval reports whether an order with this raw status must not
// be verified. A blank status is treated as approved.
func IsAwaitingApproval(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false
	}
	if s == "open" {
		return true
	}
	return strings.Contains(s, "pending") && strings.Contains(s, "approval")
}

package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAuditInvalidOrderNumber = errors.New("integration: audit requires an order number")
	ErrAuditInvalidOutcome     = errors.New("integration: invalid verification outcome")
)

// ---------------------------------------------------------------------------
// VerificationOutcome
// ---------------------------------------------------------------------------

// VerificationOutcome is the result of a public order verification
type VerificationOutcome string

const (
	OutcomeVerified    VerificationOutcome = "verified"
	OutcomeNotFound    VerificationOutcome = "not_found"
	OutcomeNotApproved VerificationOutcome = "not_approved"
	OutcomeError       VerificationOutcome = "error"
)

// IsValid returns true if the outcome is known
func (o VerificationOutcome) IsValid() bool {
	switch o {
	case OutcomeVerified, OutcomeNotFound, OutcomeNotApproved, OutcomeError:
		return true
	default:
		return false
	}
}

// String returns the string representation of VerificationOutcome
func (o VerificationOutcome) String() string {
	return string(o)
}

// ---------------------------------------------------------------------------
// VerificationAudit
// ---------------------------------------------------------------------------

// VerificationAudit records one verification attempt.
type VerificationAudit struct {
	ID            uuid.UUID
	OrderNumber   string
	Outcome       VerificationOutcome
	DisplayStatus string
	RequestID     string
	VerifiedAt    time.Time
}

// NewVerificationAudit creates an audit record stamped at now.
func NewVerificationAudit(orderNumber string, outcome VerificationOutcome, displayStatus, requestID string, now time.Time) (*VerificationAudit, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, ErrAuditInvalidOrderNumber
	}
	if !outcome.IsValid() {
		return nil, ErrAuditInvalidOutcome
	}
	return &VerificationAudit{
		ID:            uuid.New(),
		OrderNumber:   orderNumber,
		Outcome:       outcome,
		DisplayStatus: displayStatus,
		RequestID:     requestID,
		VerifiedAt:    now.UTC(),
	}, nil
}

// VerificationAuditRepository persists verification attempts.
type VerificationAuditRepository interface {
	Save(ctx context.Context, audit *VerificationAudit) error
	ListRecent(ctx context.Context, limit int) ([]VerificationAudit, error)
}

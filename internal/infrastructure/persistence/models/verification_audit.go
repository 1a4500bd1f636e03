// Package models contains GORM persistence models. Domain types stay free of
// ORM tags; each model converts to and from its domain counterpart.
package models

import (
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/google/uuid"
)

// VerificationAuditModel maps the verification_audits table
type VerificationAuditModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderNumber   string    `gorm:"type:varchar(64);not null;index"`
	Outcome       string    `gorm:"type:varchar(20);not null"`
	DisplayStatus string    `gorm:"type:varchar(128)"`
	RequestID     string    `gorm:"type:varchar(64)"`
	VerifiedAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the model
func (VerificationAuditModel) TableName() string {
	return "verification_audits"
}

// ToDomain converts the model to a domain audit record
func (m *VerificationAuditModel) ToDomain() integration.VerificationAudit {
	return integration.VerificationAudit{
		ID:            m.ID,
		OrderNumber:   m.OrderNumber,
		Outcome:       integration.VerificationOutcome(m.Outcome),
		DisplayStatus: m.DisplayStatus,
		RequestID:     m.RequestID,
		VerifiedAt:    m.VerifiedAt.UTC(),
	}
}

// VerificationAuditModelFromDomain builds a model from a domain audit record
func VerificationAuditModelFromDomain(a *integration.VerificationAudit) *VerificationAuditModel {
	return &VerificationAuditModel{
		ID:            a.ID,
		OrderNumber:   a.OrderNumber,
		Outcome:       a.Outcome.String(),
		DisplayStatus: a.DisplayStatus,
		RequestID:     a.RequestID,
		VerifiedAt:    a.VerifiedAt,
	}
}

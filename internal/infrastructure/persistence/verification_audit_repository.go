package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/erp/orderverify/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	defaultAuditListLimit = 20
	maxAuditListLimit     = 100
)

// ErrNilAudit is returned when Save receives nil
var ErrNilAudit = errors.New("persistence: nil verification audit")

// GormVerificationAuditRepository stores verification attempts with GORM
type GormVerificationAuditRepository struct {
	db *gorm.DB
}

// NewGormVerificationAuditRepository creates the repository
func NewGormVerificationAuditRepository(db *gorm.DB) *GormVerificationAuditRepository {
	return &GormVerificationAuditRepository{db: db}
}

// Save inserts one audit record
func (r *GormVerificationAuditRepository) Save(ctx context.Context, audit *integration.VerificationAudit) error {
	if audit == nil {
		return ErrNilAudit
	}
	if err := r.db.WithContext(ctx).Create(models.VerificationAuditModelFromDomain(audit)).Error; err != nil {
		return fmt.Errorf("save verification audit: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first. limit is clamped to 1..100,
// with 20 used for non-positive values.
func (r *GormVerificationAuditRepository) ListRecent(ctx context.Context, limit int) ([]integration.VerificationAudit, error) {
	switch {
	case limit <= 0:
		limit = defaultAuditListLimit
	case limit > maxAuditListLimit:
		limit = maxAuditListLimit
	}

	var rows []models.VerificationAuditModel
	err := r.db.WithContext(ctx).
		Order("verified_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list verification audits: %w", err)
	}

	audits := make([]integration.VerificationAudit, len(rows))
	for i := range rows {
		audits[i] = rows[i].ToDomain()
	}
	return audits, nil
}

var _ integration.VerificationAuditRepository = (*GormVerificationAuditRepository)(nil)

package repositories

import (
	"context"
	"time"

	"societygate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// approvalRepository implements ApprovalRepository interface
type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new pre-approval repository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

// Create creates a new pre-approval record
func (r *approvalRepository) Create(ctx context.Context, approval *models.PreApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

// GetByID gets a pre-approval by ID
func (r *approvalRepository) GetByID(ctx context.Context, id uint) (*models.PreApproval, error) {
	var approval models.PreApproval
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// UpdateFields applies a partial field merge to a pre-approval row
func (r *approvalRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.PreApproval{}).Where("id = ?", id).Updates(updates).Error
}

// ListAll returns all pre-approvals, most recent first
func (r *approvalRepository) ListAll(ctx context.Context) ([]models.PreApproval, error) {
	var approvals []models.PreApproval
	err := r.db.WithContext(ctx).Order("requested_at DESC").Find(&approvals).Error
	return approvals, err
}

// ListByFlat returns all pre-approvals for a flat, most recent first
func (r *approvalRepository) ListByFlat(ctx context.Context, flat string) ([]models.PreApproval, error) {
	var approvals []models.PreApproval
	err := r.db.WithContext(ctx).
		Where("flat = ?", flat).
		Order("requested_at DESC").
		Find(&approvals).Error
	return approvals, err
}

// ListExpirable returns one-time pre-approvals still waiting for arrival that
// were requested before the given cutoff
func (r *approvalRepository) ListExpirable(ctx context.Context, requestedBefore time.Time) ([]models.PreApproval, error) {
	var approvals []models.PreApproval
	err := r.db.WithContext(ctx).
		Where("status = ? AND frequency = ? AND (arrival_status = '' OR arrival_status IS NULL) AND requested_at < ?",
			models.ApprovalStatusActive, models.FrequencyOnce, requestedBefore).
		Find(&approvals).Error
	return approvals, err
}

// CountByArrivalStatusSince counts pre-approvals in an arrival status
// requested at or after a time
func (r *approvalRepository) CountByArrivalStatusSince(ctx context.Context, arrivalStatus string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PreApproval{}).
		Where("arrival_status = ? AND requested_at >= ?", arrivalStatus, since).
		Count(&count).Error
	return count, err
}

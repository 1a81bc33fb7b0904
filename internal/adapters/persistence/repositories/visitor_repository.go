package repositories

import (
	"context"
	"time"

	"societygate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// visitorRepository implements VisitorRepository interface
type visitorRepository struct {
	db *gorm.DB
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(db *gorm.DB) VisitorRepository {
	return &visitorRepository{db: db}
}

// Create creates a new visitor record
func (r *visitorRepository) Create(ctx context.Context, visitor *models.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

// GetByID gets a visitor by ID
func (r *visitorRepository) GetByID(ctx context.Context, id uint) (*models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

// UpdateFields applies a partial field merge to a visitor row
func (r *visitorRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Visitor{}).Where("id = ?", id).Updates(updates).Error
}

// ListAll returns all visitors, most recent first
func (r *visitorRepository) ListAll(ctx context.Context) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := r.db.WithContext(ctx).Order("check_in_at DESC").Find(&visitors).Error
	return visitors, err
}

// ListByFlat returns all visitors for a flat, most recent first
func (r *visitorRepository) ListByFlat(ctx context.Context, flat string) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := r.db.WithContext(ctx).
		Where("flat = ?", flat).
		Order("check_in_at DESC").
		Find(&visitors).Error
	return visitors, err
}

// ListByStatus returns all visitors in a given status, most recent first
func (r *visitorRepository) ListByStatus(ctx context.Context, status string) ([]models.Visitor, error) {
	var visitors []models.Visitor
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("check_in_at DESC").
		Find(&visitors).Error
	return visitors, err
}

// CountByStatusSince counts visitors in a status checked in at or after a time
func (r *visitorRepository) CountByStatusSince(ctx context.Context, status string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Visitor{}).
		Where("status = ? AND check_in_at >= ?", status, since).
		Count(&count).Error
	return count, err
}

// CountSince counts visitors checked in at or after a time
func (r *visitorRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Visitor{}).
		Where("check_in_at >= ?", since).
		Count(&count).Error
	return count, err
}

package repositories

import (
	"context"
	"time"

	"societygate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create creates a new notification record
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetByID gets a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListForResident returns notifications addressed to a resident's flat,
// most recent first
func (r *notificationRepository) ListForResident(ctx context.Context, flat string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("receiver_role = ? AND receiver_flat = ?", models.ReceiverResident, flat).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// ListForSecurity returns broadcast notifications for the security role,
// most recent first
func (r *notificationRepository) ListForSecurity(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("receiver_role = ?", models.ReceiverSecurity).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// CountUnreadForResident counts unread notifications for a resident's flat
func (r *notificationRepository) CountUnreadForResident(ctx context.Context, flat string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_role = ? AND receiver_flat = ? AND unread = ?", models.ReceiverResident, flat, true).
		Count(&count).Error
	return count, err
}

// CountUnreadForSecurity counts unread broadcast notifications
func (r *notificationRepository) CountUnreadForSecurity(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_role = ? AND unread = ?", models.ReceiverSecurity, true).
		Count(&count).Error
	return count, err
}

// MarkRead flips the unread flag and stamps the read time
func (r *notificationRepository) MarkRead(ctx context.Context, id uint, readAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unread":  false,
			"read_at": readAt,
		}).Error
}

// Delete hard-removes a notification
func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}

// DeleteReadBefore hard-removes read notifications created before a cutoff
func (r *notificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("unread = ? AND created_at < ?", false, before).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

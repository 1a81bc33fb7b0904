package repositories

import (
	"context"
	"time"

	"societygate/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListAll(ctx context.Context) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// VisitorRepository defines visitor repository interface.
// Visitors are append-only history: there is no delete.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *models.Visitor) error
	GetByID(ctx context.Context, id uint) (*models.Visitor, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	ListAll(ctx context.Context) ([]models.Visitor, error)
	ListByFlat(ctx context.Context, flat string) ([]models.Visitor, error)
	ListByStatus(ctx context.Context, status string) ([]models.Visitor, error)
	CountByStatusSince(ctx context.Context, status string, since time.Time) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// ApprovalRepository defines pre-approval repository interface.
// Pre-approvals are retained as history: there is no delete.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *models.PreApproval) error
	GetByID(ctx context.Context, id uint) (*models.PreApproval, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	ListAll(ctx context.Context) ([]models.PreApproval, error)
	ListByFlat(ctx context.Context, flat string) ([]models.PreApproval, error)
	ListExpirable(ctx context.Context, requestedBefore time.Time) ([]models.PreApproval, error)
	CountByArrivalStatusSince(ctx context.Context, arrivalStatus string, since time.Time) (int64, error)
}

// NotificationRepository defines notification repository interface.
// The only permitted mutation is read-marking; rows may be hard-deleted
// for cleanup.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListForResident(ctx context.Context, flat string) ([]models.Notification, error)
	ListForSecurity(ctx context.Context) ([]models.Notification, error)
	CountUnreadForResident(ctx context.Context, flat string) (int64, error)
	CountUnreadForSecurity(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id uint, readAt time.Time) error
	Delete(ctx context.Context, id uint) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

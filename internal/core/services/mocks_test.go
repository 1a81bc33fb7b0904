package services

import (
	"context"
	"sort"
	"time"

	"societygate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type fakeVisitorRepo struct {
	visitors map[uint]*models.Visitor
	nextID   uint
	failNext error
}

func newFakeVisitorRepo() *fakeVisitorRepo {
	return &fakeVisitorRepo{visitors: make(map[uint]*models.Visitor), nextID: 1}
}

func (r *fakeVisitorRepo) Create(_ context.Context, v *models.Visitor) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	v.ID = r.nextID
	r.nextID++
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	copied := *v
	r.visitors[v.ID] = &copied
	return nil
}

func (r *fakeVisitorRepo) GetByID(_ context.Context, id uint) (*models.Visitor, error) {
	v, ok := r.visitors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVisitorRepo) UpdateFields(_ context.Context, id uint, updates map[string]interface{}) error {
	v, ok := r.visitors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			v.Status = value.(string)
		case "check_out_at":
			v.CheckOutAt = value.(*time.Time)
		}
	}
	return nil
}

func (r *fakeVisitorRepo) ListAll(_ context.Context) ([]models.Visitor, error) {
	out := make([]models.Visitor, 0, len(r.visitors))
	for _, v := range r.visitors {
		out = append(out, *v)
	}
	return out, nil
}

func (r *fakeVisitorRepo) ListByFlat(_ context.Context, flat string) ([]models.Visitor, error) {
	out := make([]models.Visitor, 0)
	for _, v := range r.visitors {
		if v.Flat == flat {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVisitorRepo) ListByStatus(_ context.Context, status string) ([]models.Visitor, error) {
	out := make([]models.Visitor, 0)
	for _, v := range r.visitors {
		if v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVisitorRepo) CountByStatusSince(_ context.Context, status string, since time.Time) (int64, error) {
	var count int64
	for _, v := range r.visitors {
		if v.Status == status && !v.CheckInAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeVisitorRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, v := range r.visitors {
		if !v.CheckInAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeApprovalRepo struct {
	approvals map[uint]*models.PreApproval
	nextID    uint
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{approvals: make(map[uint]*models.PreApproval), nextID: 1}
}

func (r *fakeApprovalRepo) Create(_ context.Context, p *models.PreApproval) error {
	p.ID = r.nextID
	r.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	copied := *p
	r.approvals[p.ID] = &copied
	return nil
}

func (r *fakeApprovalRepo) GetByID(_ context.Context, id uint) (*models.PreApproval, error) {
	p, ok := r.approvals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeApprovalRepo) UpdateFields(_ context.Context, id uint, updates map[string]interface{}) error {
	p, ok := r.approvals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			p.Status = value.(string)
		case "arrival_status":
			p.ArrivalStatus = value.(string)
		case "cancelled_at":
			p.CancelledAt = value.(*time.Time)
		}
	}
	return nil
}

func (r *fakeApprovalRepo) ListAll(_ context.Context) ([]models.PreApproval, error) {
	out := make([]models.PreApproval, 0, len(r.approvals))
	for _, p := range r.approvals {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeApprovalRepo) ListByFlat(_ context.Context, flat string) ([]models.PreApproval, error) {
	out := make([]models.PreApproval, 0)
	for _, p := range r.approvals {
		if p.Flat == flat {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) ListExpirable(_ context.Context, requestedBefore time.Time) ([]models.PreApproval, error) {
	out := make([]models.PreApproval, 0)
	for _, p := range r.approvals {
		if p.Status == models.ApprovalStatusActive &&
			p.Frequency == models.FrequencyOnce &&
			p.ArrivalStatus == "" &&
			p.RequestedAt.Before(requestedBefore) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) CountByArrivalStatusSince(_ context.Context, arrivalStatus string, since time.Time) (int64, error) {
	var count int64
	for _, p := range r.approvals {
		if p.ArrivalStatus == arrivalStatus && !p.RequestedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepo struct {
	notifications map[uint]*models.Notification
	nextID        uint
	failNext      error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uint]*models.Notification), nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	n.ID = r.nextID
	r.nextID++
	copied := *n
	r.notifications[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) ListForResident(_ context.Context, flat string) ([]models.Notification, error) {
	out := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.ReceiverRole == models.ReceiverResident && n.ReceiverFlat == flat {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListForSecurity(_ context.Context) ([]models.Notification, error) {
	out := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.ReceiverRole == models.ReceiverSecurity {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnreadForResident(_ context.Context, flat string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.ReceiverRole == models.ReceiverResident && n.ReceiverFlat == flat && n.Unread {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnreadForSecurity(_ context.Context) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.ReceiverRole == models.ReceiverSecurity && n.Unread {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint, readAt time.Time) error {
	n, ok := r.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Unread = false
	n.ReadAt = &readAt
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uint) error {
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	var deleted int64
	for id, n := range r.notifications {
		if !n.Unread && n.ReadAt != nil && n.ReadAt.Before(before) {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = r.nextID
	r.nextID++
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// recordingSounder records alert sounds instead of playing them
type recordingSounder struct {
	events []string
}

func (s *recordingSounder) Play(event string) {
	s.events = append(s.events, event)
}

// newTestNotifyService wires a notify service over the fakes
func newTestNotifyService(notifRepo *fakeNotificationRepo, sounder *recordingSounder) *NotifyService {
	return NewNotifyService(notifRepo, sounder)
}

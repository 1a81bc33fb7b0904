package services

import (
	"context"
	"testing"
	"time"

	"societygate/internal/adapters/persistence/models"
)

func TestExpireStale(t *testing.T) {
	approvalRepo := newFakeApprovalRepo()
	notifRepo := newFakeNotificationRepo()
	svc := NewExpiryService(approvalRepo, notifRepo, 24*time.Hour)
	ctx := context.Background()

	stale := seedApproval(t, approvalRepo, func(p *models.PreApproval) {
		p.RequestedAt = time.Now().Add(-48 * time.Hour)
	})
	fresh := seedApproval(t, approvalRepo, nil)
	recurring := seedApproval(t, approvalRepo, func(p *models.PreApproval) {
		p.Frequency = models.FrequencyRecurring
		p.RequestedAt = time.Now().Add(-48 * time.Hour)
	})
	arrived := seedApproval(t, approvalRepo, func(p *models.PreApproval) {
		p.ArrivalStatus = models.ArrivalStatusArrived
		p.RequestedAt = time.Now().Add(-48 * time.Hour)
	})
	cancelled := seedApproval(t, approvalRepo, func(p *models.PreApproval) {
		p.Status = models.ApprovalStatusCancelled
		p.ArrivalStatus = models.ArrivalStatusCancelled
		p.RequestedAt = time.Now().Add(-48 * time.Hour)
	})

	swept, err := svc.ExpireStale(ctx)
	if err != nil {
		t.Fatalf("ExpireStale() error = %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}

	got, _ := approvalRepo.GetByID(ctx, stale.ID)
	if got.ArrivalStatus != models.ArrivalStatusExpired {
		t.Errorf("stale approval arrival status = %q, want %q", got.ArrivalStatus, models.ArrivalStatusExpired)
	}

	untouched := map[string]uint{
		"fresh":     fresh.ID,
		"recurring": recurring.ID,
		"arrived":   arrived.ID,
		"cancelled": cancelled.ID,
	}
	for name, id := range untouched {
		got, _ := approvalRepo.GetByID(ctx, id)
		if got.ArrivalStatus == models.ArrivalStatusExpired {
			t.Errorf("%s approval must not be swept", name)
		}
	}
}

func TestExpireStale_SweepIsIdempotent(t *testing.T) {
	approvalRepo := newFakeApprovalRepo()
	svc := NewExpiryService(approvalRepo, newFakeNotificationRepo(), 24*time.Hour)
	ctx := context.Background()

	seedApproval(t, approvalRepo, func(p *models.PreApproval) {
		p.RequestedAt = time.Now().Add(-48 * time.Hour)
	})

	if swept, _ := svc.ExpireStale(ctx); swept != 1 {
		t.Fatalf("first sweep = %d, want 1", swept)
	}
	if swept, _ := svc.ExpireStale(ctx); swept != 0 {
		t.Errorf("second sweep = %d, want 0", swept)
	}
}

func TestPurgeReadNotifications(t *testing.T) {
	approvalRepo := newFakeApprovalRepo()
	notifRepo := newFakeNotificationRepo()
	svc := NewExpiryService(approvalRepo, notifRepo, 24*time.Hour)
	ctx := context.Background()

	oldRead := time.Now().Add(-60 * 24 * time.Hour)
	recentRead := time.Now().Add(-1 * time.Hour)

	seed := []*models.Notification{
		{ReceiverRole: models.ReceiverSecurity, Unread: false, ReadAt: &oldRead},
		{ReceiverRole: models.ReceiverSecurity, Unread: false, ReadAt: &recentRead},
		{ReceiverRole: models.ReceiverSecurity, Unread: true},
	}
	for _, n := range seed {
		if err := notifRepo.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.PurgeReadNotifications(ctx); err != nil {
		t.Fatalf("PurgeReadNotifications() error = %v", err)
	}

	remaining, _ := notifRepo.ListForSecurity(ctx)
	if len(remaining) != 2 {
		t.Fatalf("remaining notifications = %d, want 2", len(remaining))
	}
	for _, n := range remaining {
		if n.ReadAt != nil && n.ReadAt.Before(time.Now().Add(-30*24*time.Hour)) {
			t.Error("old read notification survived the purge")
		}
	}
}

func TestNewExpiryService_DefaultTTL(t *testing.T) {
	svc := NewExpiryService(newFakeApprovalRepo(), newFakeNotificationRepo(), 0)
	if svc.ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h default", svc.ttl)
	}
}

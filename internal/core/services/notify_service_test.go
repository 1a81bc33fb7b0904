package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/core/domain"
)

func TestNotifyVisitorCheckin_DuplicateSuppressed(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	sounder := &recordingSounder{}
	svc := newTestNotifyService(notifRepo, sounder)

	visitor := &models.Visitor{
		ID:        1,
		Name:      "John",
		Flat:      "A-101",
		Purpose:   "Guest",
		CheckInAt: time.Now(),
	}

	if err := svc.NotifyVisitorCheckin(context.Background(), visitor); err != nil {
		t.Fatalf("first alert error = %v", err)
	}
	if err := svc.NotifyVisitorCheckin(context.Background(), visitor); err != nil {
		t.Fatalf("duplicate alert error = %v", err)
	}

	notifs, _ := notifRepo.ListForResident(context.Background(), "A-101")
	if len(notifs) != 1 {
		t.Errorf("notification rows = %d, want 1 (duplicate suppressed)", len(notifs))
	}
	if len(sounder.events) != 1 {
		t.Errorf("alert sounds = %d, want 1", len(sounder.events))
	}
}

func TestNotifyVisitorCheckin_DistinctVisitorsBothDelivered(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	sounder := &recordingSounder{}
	svc := newTestNotifyService(notifRepo, sounder)

	now := time.Now()
	first := &models.Visitor{ID: 1, Name: "John", Flat: "A-101", Purpose: "Guest", CheckInAt: now}
	second := &models.Visitor{ID: 2, Name: "Jane", Flat: "A-101", Purpose: "Guest", CheckInAt: now}

	if err := svc.NotifyVisitorCheckin(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyVisitorCheckin(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	notifs, _ := notifRepo.ListForResident(context.Background(), "A-101")
	if len(notifs) != 2 {
		t.Errorf("notification rows = %d, want 2", len(notifs))
	}
}

func TestNotifyPreApproval_TargetsSecurityInbox(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	sounder := &recordingSounder{}
	svc := newTestNotifyService(notifRepo, sounder)

	approval := &models.PreApproval{
		ID:          1,
		Name:        "Courier",
		Flat:        "B-204",
		Category:    "Delivery",
		Frequency:   models.FrequencyOnce,
		RequestedAt: time.Now(),
	}
	if err := svc.NotifyPreApproval(context.Background(), approval); err != nil {
		t.Fatalf("NotifyPreApproval() error = %v", err)
	}

	security, _ := notifRepo.ListForSecurity(context.Background())
	if len(security) != 1 {
		t.Fatalf("security notifications = %d, want 1", len(security))
	}
	resident, _ := notifRepo.ListForResident(context.Background(), "B-204")
	if len(resident) != 0 {
		t.Errorf("pre-approval alert should not land in the resident inbox, got %d", len(resident))
	}
	if len(sounder.events) != 1 || sounder.events[0] != "pre_approval" {
		t.Errorf("sounder events = %v", sounder.events)
	}
}

func TestUnreadCount_RoutesByRole(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := newTestNotifyService(notifRepo, &recordingSounder{})
	ctx := context.Background()

	seed := []*models.Notification{
		{ReceiverRole: models.ReceiverResident, ReceiverFlat: "A-101", Unread: true},
		{ReceiverRole: models.ReceiverResident, ReceiverFlat: "A-101", Unread: false},
		{ReceiverRole: models.ReceiverResident, ReceiverFlat: "B-204", Unread: true},
		{ReceiverRole: models.ReceiverSecurity, Unread: true},
		{ReceiverRole: models.ReceiverSecurity, Unread: true},
	}
	for _, n := range seed {
		if err := notifRepo.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		role string
		flat string
		want int64
	}{
		{"resident_own_flat", models.RoleResident, "A-101", 1},
		{"resident_other_flat", models.RoleResident, "B-204", 1},
		{"security_shared_inbox", models.RoleSecurity, "", 2},
		{"admin_shared_inbox", models.RoleAdmin, "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UnreadCount(ctx, tt.role, tt.flat)
			if err != nil {
				t.Fatalf("UnreadCount() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UnreadCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMarkRead_OwnershipEnforced(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := newTestNotifyService(notifRepo, &recordingSounder{})
	ctx := context.Background()

	notif := &models.Notification{ReceiverRole: models.ReceiverResident, ReceiverFlat: "A-101", Unread: true}
	if err := notifRepo.Create(ctx, notif); err != nil {
		t.Fatal(err)
	}

	if err := svc.MarkRead(ctx, notif.ID, models.RoleResident, "B-204"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("mark-read from another flat: error = %v, want ErrForbidden", err)
	}
	if err := svc.MarkRead(ctx, notif.ID, models.RoleResident, "A-101"); err != nil {
		t.Fatalf("mark-read own flat error = %v", err)
	}

	stored, _ := notifRepo.GetByID(ctx, notif.ID)
	if stored.Unread {
		t.Error("notification should be read")
	}
	if stored.ReadAt == nil {
		t.Error("read_at should be stamped")
	}

	// Marking a read notification again is a no-op
	if err := svc.MarkRead(ctx, notif.ID, models.RoleResident, "A-101"); err != nil {
		t.Errorf("second mark-read error = %v", err)
	}

	if err := svc.MarkRead(ctx, 99, models.RoleResident, "A-101"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown notification: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := newTestNotifyService(notifRepo, &recordingSounder{})
	ctx := context.Background()

	notif := &models.Notification{ReceiverRole: models.ReceiverResident, ReceiverFlat: "A-101", Unread: true}
	if err := notifRepo.Create(ctx, notif); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, notif.ID, models.RoleResident, "B-204"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete from another flat: error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, notif.ID, models.RoleResident, "A-101"); err != nil {
		t.Fatalf("delete own flat error = %v", err)
	}
	if _, err := notifRepo.GetByID(ctx, notif.ID); err == nil {
		t.Error("notification should be gone")
	}
}

func TestSSEHub_Routing(t *testing.T) {
	hub := NewSSEHub()

	resident := &SSEClient{ID: "r1", Role: models.RoleResident, Flat: "A-101", Channel: make(chan SSEEvent, 4)}
	neighbour := &SSEClient{ID: "r2", Role: models.RoleResident, Flat: "B-204", Channel: make(chan SSEEvent, 4)}
	guard := &SSEClient{ID: "g1", Role: models.RoleSecurity, Channel: make(chan SSEEvent, 4)}
	hub.Register(resident)
	hub.Register(neighbour)
	hub.Register(guard)

	hub.SendToFlat("A-101", SSEEvent{Event: "visitor_checkin", Sound: true})
	hub.BroadcastToSecurity(SSEEvent{Event: "pre_approval", Sound: true})

	if got := len(resident.Channel); got != 1 {
		t.Errorf("resident A-101 received %d events, want 1", got)
	}
	if got := len(neighbour.Channel); got != 0 {
		t.Errorf("resident B-204 received %d events, want 0", got)
	}
	if got := len(guard.Channel); got != 1 {
		t.Errorf("guard received %d events, want 1", got)
	}

	hub.Unregister("g1")
	if got := hub.GetClientCount(); got != 2 {
		t.Errorf("client count after unregister = %d, want 2", got)
	}
}

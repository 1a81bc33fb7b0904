package services

import (
	"context"
	"errors"
	"testing"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/core/domain"
)

func newTestVisitorService() (*VisitorService, *fakeVisitorRepo, *fakeNotificationRepo, *recordingSounder) {
	visitorRepo := newFakeVisitorRepo()
	notifRepo := newFakeNotificationRepo()
	sounder := &recordingSounder{}
	notify := newTestNotifyService(notifRepo, sounder)
	return NewVisitorService(visitorRepo, notify), visitorRepo, notifRepo, sounder
}

func TestCheckIn_CreatesPendingAndNotifiesFlat(t *testing.T) {
	svc, _, notifRepo, sounder := newTestVisitorService()

	visitor, err := svc.CheckIn(context.Background(), CheckInInput{
		Name:    "John Doe",
		Flat:    "A-101",
		Purpose: "Delivery",
	})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if visitor.Status != models.VisitorStatusPending {
		t.Errorf("status = %q, want %q", visitor.Status, models.VisitorStatusPending)
	}
	if visitor.CheckInAt.IsZero() {
		t.Error("check-in time not stamped")
	}

	notifs, _ := notifRepo.ListForResident(context.Background(), "A-101")
	if len(notifs) != 1 {
		t.Fatalf("resident notifications = %d, want 1", len(notifs))
	}
	if notifs[0].RequestType != models.RequestTypeVisitorCheckin {
		t.Errorf("request type = %q", notifs[0].RequestType)
	}
	if !notifs[0].Unread {
		t.Error("new notification should be unread")
	}
	if len(sounder.events) != 1 {
		t.Errorf("alert sounds = %d, want 1", len(sounder.events))
	}
}

func TestCheckIn_MissingFieldsRejected(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()

	tests := []struct {
		name  string
		input CheckInInput
	}{
		{"no_name", CheckInInput{Flat: "A-101", Purpose: "Guest"}},
		{"no_flat", CheckInInput{Name: "John", Purpose: "Guest"}},
		{"no_purpose", CheckInInput{Name: "John", Flat: "A-101"}},
		{"whitespace_name", CheckInInput{Name: "   ", Flat: "A-101", Purpose: "Guest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CheckIn(context.Background(), tt.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("CheckIn() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCheckIn_NotificationFailureDoesNotFailCheckIn(t *testing.T) {
	svc, visitorRepo, notifRepo, _ := newTestVisitorService()
	notifRepo.failNext = errors.New("notification store down")

	visitor, err := svc.CheckIn(context.Background(), CheckInInput{
		Name:    "Jane",
		Flat:    "B-204",
		Purpose: "Guest",
	})
	if err != nil {
		t.Fatalf("CheckIn() should survive a failed alert, got %v", err)
	}
	if _, err := visitorRepo.GetByID(context.Background(), visitor.ID); err != nil {
		t.Error("visitor record should exist despite the failed alert")
	}
}

func TestVisitorTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		action     string
		wantStatus string
		wantErr    error
	}{
		{"approve_pending", models.VisitorStatusPending, "approve", models.VisitorStatusInside, nil},
		{"reject_pending", models.VisitorStatusPending, "reject", models.VisitorStatusRejected, nil},
		{"checkout_inside", models.VisitorStatusInside, "checkout", models.VisitorStatusOut, nil},
		{"approve_inside", models.VisitorStatusInside, "approve", "", domain.ErrInvalidTransition},
		{"approve_rejected", models.VisitorStatusRejected, "approve", "", domain.ErrInvalidTransition},
		{"checkout_pending", models.VisitorStatusPending, "checkout", "", domain.ErrInvalidTransition},
		{"checkout_out", models.VisitorStatusOut, "checkout", "", domain.ErrInvalidTransition},
		{"reject_out", models.VisitorStatusOut, "reject", "", domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, visitorRepo, _, _ := newTestVisitorService()
			seed := &models.Visitor{Name: "v", Flat: "A-101", Purpose: "Guest", Status: tt.from}
			if err := visitorRepo.Create(context.Background(), seed); err != nil {
				t.Fatal(err)
			}

			var got *models.Visitor
			var err error
			switch tt.action {
			case "approve":
				got, err = svc.Approve(context.Background(), seed.ID, "A-101")
			case "reject":
				got, err = svc.Reject(context.Background(), seed.ID, "A-101")
			case "checkout":
				got, err = svc.CheckOut(context.Background(), seed.ID)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				stored, _ := visitorRepo.GetByID(context.Background(), seed.ID)
				if stored.Status != tt.from {
					t.Errorf("rejected transition must not change state: %q → %q", tt.from, stored.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if tt.action == "checkout" && got.CheckOutAt == nil {
				t.Error("checkout must stamp check_out_at")
			}
		})
	}
}

func TestApprove_WrongFlatForbidden(t *testing.T) {
	svc, visitorRepo, _, _ := newTestVisitorService()
	seed := &models.Visitor{Name: "v", Flat: "A-101", Purpose: "Guest", Status: models.VisitorStatusPending}
	if err := visitorRepo.Create(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Approve(context.Background(), seed.ID, "B-999"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("approve from another flat: error = %v, want ErrForbidden", err)
	}

	stored, _ := visitorRepo.GetByID(context.Background(), seed.ID)
	if stored.Status != models.VisitorStatusPending {
		t.Error("visitor state must not change on a forbidden approve")
	}
}

func TestApprove_UnknownVisitor(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()
	if _, err := svc.Approve(context.Background(), 42, "A-101"); !errors.Is(err, domain.ErrVisitorNotFound) {
		t.Errorf("error = %v, want ErrVisitorNotFound", err)
	}
}

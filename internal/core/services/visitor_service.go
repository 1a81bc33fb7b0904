package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Visitor Service — gate check-in / approval / check-out
// ============================================================

// VisitorService drives the visitor lifecycle. Transitions are one-way:
// pending → inside (resident approves), pending → rejected, inside → out.
type VisitorService struct {
	visitorRepo repositories.VisitorRepository
	notify      *NotifyService
}

// NewVisitorService creates a new visitor service
func NewVisitorService(visitorRepo repositories.VisitorRepository, notify *NotifyService) *VisitorService {
	return &VisitorService{
		visitorRepo: visitorRepo,
		notify:      notify,
	}
}

// CheckInInput is the guard's check-in form
type CheckInInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Flat     string `json:"flat"`
	Purpose  string `json:"purpose"`
	Vehicle  string `json:"vehicle"`
	PhotoURL string `json:"photo_url"`
}

// CheckIn records a walk-in visitor as pending and alerts the flat. A failed
// alert never fails the check-in; the record is already on the books.
func (s *VisitorService) CheckIn(ctx context.Context, input CheckInInput) (*models.Visitor, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Flat = strings.TrimSpace(input.Flat)
	input.Purpose = strings.TrimSpace(input.Purpose)
	if input.Name == "" || input.Flat == "" || input.Purpose == "" {
		return nil, domain.ErrInvalidInput
	}

	visitor := &models.Visitor{
		Name:      input.Name,
		Phone:     strings.TrimSpace(input.Phone),
		Flat:      input.Flat,
		Purpose:   input.Purpose,
		Vehicle:   strings.TrimSpace(input.Vehicle),
		PhotoURL:  input.PhotoURL,
		Status:    models.VisitorStatusPending,
		CheckInAt: time.Now(),
	}
	if err := s.visitorRepo.Create(ctx, visitor); err != nil {
		log.Printf("❌ Visitor check-in failed: %v", err)
		return nil, err
	}

	if err := s.notify.NotifyVisitorCheckin(ctx, visitor); err != nil {
		log.Printf("⚠️ Check-in alert failed for visitor %d: %v", visitor.ID, err)
	}

	log.Printf("✅ Visitor checked in: %s → flat %s (id=%d)", visitor.Name, visitor.Flat, visitor.ID)
	return visitor, nil
}

// Approve lets the visitor in. Only pending visitors can be approved; the
// flat must match the acting resident's flat (empty flat skips the check,
// which is how admin acts).
func (s *VisitorService) Approve(ctx context.Context, id uint, flat string) (*models.Visitor, error) {
	return s.transition(ctx, id, flat, models.VisitorStatusPending, map[string]interface{}{
		"status": models.VisitorStatusInside,
	})
}

// Reject turns the visitor away. Only pending visitors can be rejected.
func (s *VisitorService) Reject(ctx context.Context, id uint, flat string) (*models.Visitor, error) {
	return s.transition(ctx, id, flat, models.VisitorStatusPending, map[string]interface{}{
		"status": models.VisitorStatusRejected,
	})
}

// CheckOut records the visitor leaving. Only visitors currently inside can
// check out.
func (s *VisitorService) CheckOut(ctx context.Context, id uint) (*models.Visitor, error) {
	now := time.Now()
	return s.transition(ctx, id, "", models.VisitorStatusInside, map[string]interface{}{
		"status":       models.VisitorStatusOut,
		"check_out_at": &now,
	})
}

// transition applies a guarded status change and fans out the update
func (s *VisitorService) transition(ctx context.Context, id uint, flat, requiredStatus string, updates map[string]interface{}) (*models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVisitorNotFound
		}
		return nil, err
	}
	if flat != "" && visitor.Flat != flat {
		return nil, domain.ErrForbidden
	}
	if visitor.Status != requiredStatus {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.visitorRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	visitor, err = s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify.NotifyVisitorUpdate(visitor)
	log.Printf("✅ Visitor %d → %s", visitor.ID, visitor.Status)
	return visitor, nil
}

// GetByID returns a single visitor record
func (s *VisitorService) GetByID(ctx context.Context, id uint) (*models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVisitorNotFound
		}
		return nil, err
	}
	return visitor, nil
}

// ListByFlat returns all visitor records for a flat, newest first
func (s *VisitorService) ListByFlat(ctx context.Context, flat string) ([]models.Visitor, error) {
	return s.visitorRepo.ListByFlat(ctx, flat)
}

// ListPending returns visitors still waiting at the gate
func (s *VisitorService) ListPending(ctx context.Context) ([]models.Visitor, error) {
	return s.visitorRepo.ListByStatus(ctx, models.VisitorStatusPending)
}

// ListInside returns visitors currently inside the society
func (s *VisitorService) ListInside(ctx context.Context) ([]models.Visitor, error) {
	return s.visitorRepo.ListByStatus(ctx, models.VisitorStatusInside)
}

// ListAll returns the full entry log, newest first
func (s *VisitorService) ListAll(ctx context.Context) ([]models.Visitor, error) {
	return s.visitorRepo.ListAll(ctx)
}

package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Approval Service — resident pre-approvals + gate verification
// ============================================================

// ApprovalService drives pre-approvals: a resident issues one with a secret
// 6-digit code, the guard verifies the code when the visitor arrives.
type ApprovalService struct {
	approvalRepo repositories.ApprovalRepository
	notify       *NotifyService
}

// NewApprovalService creates a new approval service
func NewApprovalService(approvalRepo repositories.ApprovalRepository, notify *NotifyService) *ApprovalService {
	return &ApprovalService{
		approvalRepo: approvalRepo,
		notify:       notify,
	}
}

// CreateInput is the resident's pre-approval form
type CreateInput struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
}

// CreatePreApproval issues a pre-approval for the resident's own flat. The
// generated code is returned once, in the response to this call.
func (s *ApprovalService) CreatePreApproval(ctx context.Context, flat string, input CreateInput) (*models.PreApproval, error) {
	input.Name = strings.TrimSpace(input.Name)
	flat = strings.TrimSpace(flat)
	if input.Name == "" || flat == "" {
		return nil, domain.ErrInvalidInput
	}

	frequency := input.Frequency
	if frequency != models.FrequencyRecurring {
		frequency = models.FrequencyOnce
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	approval := &models.PreApproval{
		Name:        input.Name,
		Flat:        flat,
		Category:    strings.TrimSpace(input.Category),
		Frequency:   frequency,
		Code:        code,
		Approved:    true,
		Status:      models.ApprovalStatusActive,
		RequestedAt: time.Now(),
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		log.Printf("❌ Pre-approval create failed: %v", err)
		return nil, err
	}

	if err := s.notify.NotifyPreApproval(ctx, approval); err != nil {
		log.Printf("⚠️ Pre-approval alert failed for approval %d: %v", approval.ID, err)
	}

	log.Printf("✅ Pre-approval created: %s → flat %s (id=%d, %s)",
		approval.Name, approval.Flat, approval.ID, approval.Frequency)
	return approval, nil
}

// VerifyArrival checks the code the visitor quotes at the gate. A match marks
// the visitor arrived; a mismatch changes nothing and is the one failure the
// guard sees as a message rather than a fault.
func (s *ApprovalService) VerifyArrival(ctx context.Context, id uint, code string) (*models.PreApproval, error) {
	approval, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, err
	}
	if approval.Status != models.ApprovalStatusActive {
		return nil, domain.ErrApprovalNotActive
	}
	if approval.ArrivalStatus == models.ArrivalStatusExpired {
		return nil, domain.ErrApprovalNotActive
	}

	if strings.TrimSpace(code) != approval.Code {
		log.Printf("⚠️ Code mismatch for approval %d", id)
		return nil, domain.ErrInvalidCode
	}

	updates := map[string]interface{}{
		"arrival_status": models.ArrivalStatusArrived,
	}
	if err := s.approvalRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	approval, err = s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify.NotifyApprovalUpdate(approval)
	log.Printf("✅ Approval %d verified: %s arrived at gate", approval.ID, approval.Name)
	return approval, nil
}

// CancelApproval withdraws a pre-approval. Idempotent: cancelling an already
// cancelled approval returns it unchanged.
func (s *ApprovalService) CancelApproval(ctx context.Context, id uint, flat string) (*models.PreApproval, error) {
	approval, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, err
	}
	if flat != "" && approval.Flat != flat {
		return nil, domain.ErrForbidden
	}
	if approval.Status == models.ApprovalStatusCancelled {
		return approval, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.ApprovalStatusCancelled,
		"arrival_status": models.ArrivalStatusCancelled,
		"cancelled_at":   &now,
	}
	if err := s.approvalRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	approval, err = s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify.NotifyApprovalUpdate(approval)
	log.Printf("✅ Approval %d cancelled by resident", approval.ID)
	return approval, nil
}

// GetByID returns a single pre-approval
func (s *ApprovalService) GetByID(ctx context.Context, id uint) (*models.PreApproval, error) {
	approval, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, err
	}
	return approval, nil
}

// ListByFlat returns a flat's pre-approvals, newest first
func (s *ApprovalService) ListByFlat(ctx context.Context, flat string) ([]models.PreApproval, error) {
	return s.approvalRepo.ListByFlat(ctx, flat)
}

// ListAll returns every pre-approval, newest first
func (s *ApprovalService) ListAll(ctx context.Context) ([]models.PreApproval, error) {
	return s.approvalRepo.ListAll(ctx)
}

// ListExpected returns the active, not-yet-arrived pre-approvals the gate
// should expect
func (s *ApprovalService) ListExpected(ctx context.Context) ([]models.PreApproval, error) {
	all, err := s.approvalRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	expected := make([]models.PreApproval, 0, len(all))
	for _, p := range all {
		if p.Status == models.ApprovalStatusActive && p.ArrivalStatus == "" {
			expected = append(expected, p)
		}
	}
	return expected, nil
}

// generateVerificationCode returns a uniformly random 6-digit code. The range
// is [100000, 999999] so the code never has a leading zero.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

package services

import (
	"context"
	"log"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ============================================================
// Expiry Service — scheduled housekeeping
// ============================================================

// ExpiryService runs the background sweeps: one-time pre-approvals whose
// visitor never showed up are marked Expired after the TTL, and read
// notifications older than the retention window are purged. Recurring
// pre-approvals never expire.
type ExpiryService struct {
	approvalRepo repositories.ApprovalRepository
	notifRepo    repositories.NotificationRepository
	cron         *cron.Cron
	ttl          time.Duration
	retention    time.Duration
}

// NewExpiryService creates a new expiry service
func NewExpiryService(approvalRepo repositories.ApprovalRepository, notifRepo repositories.NotificationRepository, ttl time.Duration) *ExpiryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ExpiryService{
		approvalRepo: approvalRepo,
		notifRepo:    notifRepo,
		cron:         cron.New(),
		ttl:          ttl,
		retention:    30 * 24 * time.Hour,
	}
}

// Start schedules the sweeps and starts the scheduler
func (s *ExpiryService) Start() error {
	if _, err := s.cron.AddFunc("@every 10m", func() {
		if _, err := s.ExpireStale(context.Background()); err != nil {
			log.Printf("❌ Expiry sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.PurgeReadNotifications(context.Background()); err != nil {
			log.Printf("❌ Notification purge failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Expiry scheduler started (sweep every 10m, purge daily 03:00)")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *ExpiryService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Expiry scheduler stopped")
}

// ExpireStale marks overdue one-time pre-approvals Expired and returns how
// many were swept. Only active approvals with no arrival are candidates.
func (s *ExpiryService) ExpireStale(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.ttl)
	stale, err := s.approvalRepo.ListExpirable(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, p := range stale {
		updates := map[string]interface{}{
			"arrival_status": models.ArrivalStatusExpired,
		}
		if err := s.approvalRepo.UpdateFields(ctx, p.ID, updates); err != nil {
			log.Printf("⚠️ Failed to expire approval %d: %v", p.ID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("✅ Expiry sweep: %d pre-approval(s) marked expired", swept)
	}
	return swept, nil
}

// PurgeReadNotifications hard-deletes read notifications older than the
// retention window
func (s *ExpiryService) PurgeReadNotifications(ctx context.Context) error {
	before := time.Now().Add(-s.retention)
	deleted, err := s.notifRepo.DeleteReadBefore(ctx, before)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("✅ Notification purge: %d read row(s) removed", deleted)
	}
	return nil
}

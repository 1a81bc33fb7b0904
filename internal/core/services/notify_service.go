package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/core/domain"
)

// ============================================================
// SSE Hub
// ============================================================

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Event string      `json:"event"`
	Sound bool        `json:"sound"`
	Data  interface{} `json:"data"`
}

// SSEClient represents a connected SSE client. Role and Flat come from the
// client's JWT claims and decide which events it receives.
type SSEClient struct {
	ID      string
	Role    string
	Flat    string
	Channel chan SSEEvent
}

// SSEHub manages all SSE connections
type SSEHub struct {
	mu      sync.RWMutex
	clients map[string]*SSEClient
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*SSEClient),
	}
}

// Register adds a new SSE client
func (h *SSEHub) Register(client *SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("📡 SSE client registered: %s (role=%s, flat=%s) | total=%d",
		client.ID, client.Role, client.Flat, len(h.clients))
}

// Unregister removes an SSE client and closes its channel
func (h *SSEHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("📡 SSE client unregistered: %s | total=%d", clientID, len(h.clients))
	}
}

// SendToFlat sends an event to every resident client of a flat
func (h *SSEHub) SendToFlat(flat string, event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.Role == models.RoleResident && client.Flat == flat {
			select {
			case client.Channel <- event:
				sent++
			default:
				log.Printf("⚠️ SSE channel full for client %s, skipping", client.ID)
			}
		}
	}
	if sent > 0 {
		log.Printf("📡 SSE sent [%s] to flat %s → %d clients", event.Event, flat, sent)
	}
}

// BroadcastToSecurity sends an event to all security and admin clients
func (h *SSEHub) BroadcastToSecurity(event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.Role == models.RoleSecurity || client.Role == models.RoleAdmin {
			select {
			case client.Channel <- event:
				sent++
			default:
				log.Printf("⚠️ SSE channel full for client %s, skipping", client.ID)
			}
		}
	}
	if sent > 0 {
		log.Printf("📡 SSE broadcast [%s] to security → %d clients", event.Event, sent)
	}
}

// BroadcastAll sends an event to every connected client
func (h *SSEHub) BroadcastAll(event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Channel <- event:
		default:
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *SSEHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ============================================================
// Sounder
// ============================================================

// Sounder is the alert-sound hook fired once per delivered alert. The default
// implementation only logs; the browser plays the actual chime when it sees
// sound=true on the event. Tests substitute a recorder.
type Sounder interface {
	Play(event string)
}

// LogSounder is the default Sounder
type LogSounder struct{}

func (LogSounder) Play(event string) {
	log.Printf("🔔 alert sound: %s", event)
}

// ============================================================
// NotifyService — persisted notifications + SSE fan-out
// ============================================================

// dedupEntry tracks one recently delivered alert
type dedupEntry struct {
	seenAt time.Time
}

// NotifyService handles notifications: persists them, fans them out over SSE
// and suppresses duplicates. An alert is a duplicate when the same request
// type, visitor name, flat and event second were already delivered.
type NotifyService struct {
	notifRepo repositories.NotificationRepository
	Hub       *SSEHub
	sounder   Sounder

	mu   sync.Mutex
	seen map[string]*dedupEntry
}

// NewNotifyService creates a new notification service
func NewNotifyService(notifRepo repositories.NotificationRepository, sounder Sounder) *NotifyService {
	if sounder == nil {
		sounder = LogSounder{}
	}
	svc := &NotifyService{
		notifRepo: notifRepo,
		Hub:       NewSSEHub(),
		sounder:   sounder,
		seen:      make(map[string]*dedupEntry),
	}
	// Drop stale dedup keys every 10 minutes
	go svc.cleanupLoop()
	return svc
}

// dedupKey builds the identity of an alert
func dedupKey(requestType, name, flat string, at time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", requestType, name, flat, at.Unix())
}

// alreadySeen records the key and reports whether it was delivered before
func (s *NotifyService) alreadySeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = &dedupEntry{seenAt: time.Now()}
	return false
}

// cleanupLoop periodically removes dedup keys older than one hour
func (s *NotifyService) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		s.mu.Lock()
		for key, entry := range s.seen {
			if entry.seenAt.Before(cutoff) {
				delete(s.seen, key)
			}
		}
		s.mu.Unlock()
	}
}

// ============================================================
// Notification triggers
// ============================================================

// NotifyVisitorCheckin alerts the visitor's flat that someone is waiting at
// the gate. Persists a resident notification, then pushes SSE with sound.
func (s *NotifyService) NotifyVisitorCheckin(ctx context.Context, v *models.Visitor) error {
	key := dedupKey(models.RequestTypeVisitorCheckin, v.Name, v.Flat, v.CheckInAt)
	if s.alreadySeen(key) {
		log.Printf("⚠️ duplicate check-in alert suppressed: %s", key)
		return nil
	}

	notif := &models.Notification{
		Name:         v.Name,
		Phone:        v.Phone,
		Flat:         v.Flat,
		Purpose:      v.Purpose,
		Vehicle:      v.Vehicle,
		ReceiverRole: models.ReceiverResident,
		ReceiverFlat: v.Flat,
		Unread:       true,
		RequestType:  models.RequestTypeVisitorCheckin,
		ReceivedTime: v.CheckInAt.Format("02 Jan 2006, 3:04 PM"),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return err
	}

	s.sounder.Play("visitor_checkin")
	s.Hub.SendToFlat(v.Flat, SSEEvent{
		Event: "visitor_checkin",
		Sound: true,
		Data: map[string]interface{}{
			"visitor_id": v.ID,
			"name":       v.Name,
			"flat":       v.Flat,
			"purpose":    v.Purpose,
			"message":    fmt.Sprintf("%s is waiting at the gate", v.Name),
		},
	})
	return nil
}

// NotifyPreApproval alerts the gate that a resident pre-approved a visitor.
// Persists a security notification, then pushes SSE to guards with sound.
func (s *NotifyService) NotifyPreApproval(ctx context.Context, p *models.PreApproval) error {
	key := dedupKey(models.RequestTypePreApproval, p.Name, p.Flat, p.RequestedAt)
	if s.alreadySeen(key) {
		log.Printf("⚠️ duplicate pre-approval alert suppressed: %s", key)
		return nil
	}

	notif := &models.Notification{
		Name:         p.Name,
		Flat:         p.Flat,
		Purpose:      p.Category,
		ReceiverRole: models.ReceiverSecurity,
		Unread:       true,
		RequestType:  models.RequestTypePreApproval,
		ReceivedTime: p.RequestedAt.Format("02 Jan 2006, 3:04 PM"),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return err
	}

	s.sounder.Play("pre_approval")
	s.Hub.BroadcastToSecurity(SSEEvent{
		Event: "pre_approval",
		Sound: true,
		Data: map[string]interface{}{
			"approval_id": p.ID,
			"name":        p.Name,
			"flat":        p.Flat,
			"category":    p.Category,
			"frequency":   p.Frequency,
			"message":     fmt.Sprintf("%s is expected at flat %s", p.Name, p.Flat),
		},
	})
	return nil
}

// NotifyVisitorUpdate pushes a status change over SSE only. Updates are not
// persisted as notification rows and carry no sound.
func (s *NotifyService) NotifyVisitorUpdate(v *models.Visitor) {
	event := SSEEvent{
		Event: "visitor_update",
		Data: map[string]interface{}{
			"visitor_id": v.ID,
			"name":       v.Name,
			"flat":       v.Flat,
			"status":     v.Status,
		},
	}
	s.Hub.SendToFlat(v.Flat, event)
	s.Hub.BroadcastToSecurity(event)
}

// NotifyApprovalUpdate pushes a pre-approval change over SSE only
func (s *NotifyService) NotifyApprovalUpdate(p *models.PreApproval) {
	event := SSEEvent{
		Event: "approval_update",
		Data: map[string]interface{}{
			"approval_id":    p.ID,
			"name":           p.Name,
			"flat":           p.Flat,
			"status":         p.Status,
			"arrival_status": p.ArrivalStatus,
		},
	}
	s.Hub.SendToFlat(p.Flat, event)
	s.Hub.BroadcastToSecurity(event)
}

// ============================================================
// Notification inbox
// ============================================================

// ListForResident returns a flat's notifications, newest first
func (s *NotifyService) ListForResident(ctx context.Context, flat string) ([]models.Notification, error) {
	return s.notifRepo.ListForResident(ctx, flat)
}

// ListForSecurity returns the gate's notifications, newest first
func (s *NotifyService) ListForSecurity(ctx context.Context) ([]models.Notification, error) {
	return s.notifRepo.ListForSecurity(ctx)
}

// UnreadCount returns the unread badge count for a role. Residents count only
// their own flat; security counts the shared gate inbox.
func (s *NotifyService) UnreadCount(ctx context.Context, role, flat string) (int64, error) {
	if role == models.RoleResident {
		return s.notifRepo.CountUnreadForResident(ctx, flat)
	}
	return s.notifRepo.CountUnreadForSecurity(ctx)
}

// MarkRead flips a notification to read. Residents can only touch their own
// flat's notifications.
func (s *NotifyService) MarkRead(ctx context.Context, id uint, role, flat string) error {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}
	if role == models.RoleResident && notif.ReceiverFlat != flat {
		return domain.ErrForbidden
	}
	if !notif.Unread {
		return nil
	}
	return s.notifRepo.MarkRead(ctx, id, time.Now())
}

// Delete removes a notification, with the same ownership rule as MarkRead
func (s *NotifyService) Delete(ctx context.Context, id uint, role, flat string) error {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}
	if role == models.RoleResident && notif.ReceiverFlat != flat {
		return domain.ErrForbidden
	}
	return s.notifRepo.Delete(ctx, id)
}

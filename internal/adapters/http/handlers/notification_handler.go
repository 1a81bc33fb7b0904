package handlers

import (
	"errors"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/core/domain"
	"societygate/internal/core/services"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the notification inbox endpoints
type NotificationHandler struct {
	notifyService *services.NotifyService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifyService *services.NotifyService) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

// callerScope reads role and flat from the auth claims
func callerScope(c *fiber.Ctx) (role, flat string) {
	role, _ = c.Locals("role").(string)
	flat, _ = c.Locals("flat").(string)
	return role, flat
}

// ============================================================
// GET /api/v1/notifications — the caller's inbox
// ============================================================
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	role, flat := callerScope(c)

	var (
		notifications []models.Notification
		err           error
	)
	if role == models.RoleResident {
		notifications, err = h.notifyService.ListForResident(c.Context(), flat)
	} else {
		notifications, err = h.notifyService.ListForSecurity(c.Context())
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, "Notifications retrieved", notifications)
}

// ============================================================
// GET /api/v1/notifications/unread-count — badge count
// ============================================================
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	role, flat := callerScope(c)

	count, err := h.notifyService.UnreadCount(c.Context(), role, flat)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Unread count retrieved", fiber.Map{
		"unread_count": count,
	})
}

// ============================================================
// PUT /api/v1/notifications/:id/read
// ============================================================
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	role, flat := callerScope(c)
	if err := h.notifyService.MarkRead(c.Context(), id, role, flat); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Notification not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "This notification is not yours")
		default:
			return response.InternalServerError(c, "Failed to mark notification read")
		}
	}

	return response.Success(c, "Notification marked read", nil)
}

// ============================================================
// DELETE /api/v1/notifications/:id
// ============================================================
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	role, flat := callerScope(c)
	if err := h.notifyService.Delete(c.Context(), id, role, flat); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Notification not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "This notification is not yours")
		default:
			return response.InternalServerError(c, "Failed to delete notification")
		}
	}

	return response.Success(c, "Notification deleted", nil)
}

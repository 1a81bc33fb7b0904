package handlers

import (
	"societygate/internal/core/services"
	"societygate/internal/pkg/pagination"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// ============================================================
// GET /api/v1/dashboard/admin — society-wide overview
// ============================================================
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get admin dashboard")
	}
	return response.Success(c, "Admin dashboard retrieved", data)
}

// ============================================================
// GET /api/v1/dashboard/admin/activity — filtered activity log
// ============================================================
func (h *DashboardHandler) GetActivityLog(c *fiber.Ctx) error {
	result, err := h.dashboardService.GetActivityLog(c.Context(), parseViewQuery(c), pagination.GetParams(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to get activity log")
	}
	return response.Success(c, "Activity log retrieved", result)
}

// ============================================================
// GET /api/v1/dashboard/resident — the caller's flat view
// ============================================================
func (h *DashboardHandler) GetResidentDashboard(c *fiber.Ctx) error {
	flat, _ := c.Locals("flat").(string)
	if flat == "" {
		return response.Forbidden(c, "No flat registered for this account")
	}

	data, err := h.dashboardService.GetResidentDashboard(c.Context(), flat, parseViewQuery(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to get resident dashboard")
	}
	return response.Success(c, "Resident dashboard retrieved", data)
}

// ============================================================
// GET /api/v1/dashboard/security — the gate view
// ============================================================
func (h *DashboardHandler) GetSecurityDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetSecurityDashboard(c.Context(), parseViewQuery(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to get security dashboard")
	}
	return response.Success(c, "Security dashboard retrieved", data)
}

package handlers

import (
	"errors"
	"time"

	"societygate/internal/core/domain"
	"societygate/internal/core/filter"
	"societygate/internal/core/services"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ResidentHandler handles resident-side endpoints. Everything here is scoped
// to the flat in the caller's JWT.
type ResidentHandler struct {
	visitorService  *services.VisitorService
	approvalService *services.ApprovalService
}

// NewResidentHandler creates a new resident handler
func NewResidentHandler(
	visitorService *services.VisitorService,
	approvalService *services.ApprovalService,
) *ResidentHandler {
	return &ResidentHandler{
		visitorService:  visitorService,
		approvalService: approvalService,
	}
}

// residentFlat reads the flat claim set by the auth middleware
func residentFlat(c *fiber.Ctx) string {
	flat, _ := c.Locals("flat").(string)
	return flat
}

// ============================================================
// PUT /api/v1/resident/visitors/:id/approve
// ============================================================
func (h *ResidentHandler) ApproveVisitor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid visitor ID")
	}

	visitor, err := h.visitorService.Approve(c.Context(), id, residentFlat(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVisitorNotFound):
			return response.NotFound(c, "Visitor not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "This visitor is not for your flat")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Only pending visitors can be approved")
		default:
			return response.InternalServerError(c, "Failed to approve visitor")
		}
	}

	return response.Success(c, "Visitor approved", visitor)
}

// ============================================================
// PUT /api/v1/resident/visitors/:id/reject
// ============================================================
func (h *ResidentHandler) RejectVisitor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid visitor ID")
	}

	visitor, err := h.visitorService.Reject(c.Context(), id, residentFlat(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVisitorNotFound):
			return response.NotFound(c, "Visitor not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "This visitor is not for your flat")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Only pending visitors can be rejected")
		default:
			return response.InternalServerError(c, "Failed to reject visitor")
		}
	}

	return response.Success(c, "Visitor rejected", visitor)
}

// CreateApprovalRequest represents the pre-approval form body
type CreateApprovalRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
}

// ============================================================
// POST /api/v1/resident/approvals — issue a pre-approval
// ============================================================
func (h *ResidentHandler) CreateApproval(c *fiber.Ctx) error {
	var req CreateApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	approval, err := h.approvalService.CreatePreApproval(c.Context(), residentFlat(c), services.CreateInput{
		Name:      req.Name,
		Category:  req.Category,
		Frequency: req.Frequency,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Visitor name is required")
		}
		return response.InternalServerError(c, "Failed to create pre-approval")
	}

	// The one response that carries the code: the resident shares it with
	// their visitor.
	return response.Created(c, "Pre-approval created", approval.ToResponse(true))
}

// ============================================================
// GET /api/v1/resident/approvals — the flat's pre-approvals
// ============================================================
func (h *ResidentHandler) ListApprovals(c *fiber.Ctx) error {
	approvals, err := h.approvalService.ListByFlat(c.Context(), residentFlat(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to list pre-approvals")
	}

	out := make([]interface{}, len(approvals))
	for i := range approvals {
		out[i] = approvals[i].ToResponse(true)
	}
	return response.Success(c, "Pre-approvals retrieved", out)
}

// ============================================================
// PUT /api/v1/resident/approvals/:id/cancel
// ============================================================
func (h *ResidentHandler) CancelApproval(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid approval ID")
	}

	approval, err := h.approvalService.CancelApproval(c.Context(), id, residentFlat(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApprovalNotFound):
			return response.NotFound(c, "Pre-approval not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "This pre-approval is not for your flat")
		default:
			return response.InternalServerError(c, "Failed to cancel pre-approval")
		}
	}

	return response.Success(c, "Pre-approval cancelled", approval.ToResponse(true))
}

// ============================================================
// View query parsing (shared by dashboard handlers)
// ============================================================

// parseViewQuery reads the dashboard view controls from query params:
// range=all|today|yesterday|week|month|custom, start_date / end_date
// (2006-01-02), status, card and search.
func parseViewQuery(c *fiber.Ctx) services.ViewQuery {
	q := services.ViewQuery{
		Window: filter.Window(c.Query("range", string(filter.WindowAll))),
		Status: filter.HistoryStatus(c.Query("status", string(filter.HistoryAll))),
		Card:   filter.CardFilter(c.Query("card", string(filter.CardAll))),
		Search: c.Query("search"),
	}

	if s := c.Query("start_date"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			q.CustomStart = &t
		}
	}
	if e := c.Query("end_date"); e != "" {
		if t, err := time.ParseInLocation("2006-01-02", e, time.Local); err == nil {
			q.CustomEnd = &t
		}
	}
	return q
}

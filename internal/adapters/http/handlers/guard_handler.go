package handlers

import (
	"errors"
	"log"
	"strconv"

	"societygate/internal/adapters/storage"
	"societygate/internal/core/domain"
	"societygate/internal/core/services"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GuardHandler handles the gate-side endpoints
type GuardHandler struct {
	visitorService  *services.VisitorService
	approvalService *services.ApprovalService
	photoStore      *storage.PhotoStore
}

// NewGuardHandler creates a new guard handler
func NewGuardHandler(
	visitorService *services.VisitorService,
	approvalService *services.ApprovalService,
	photoStore *storage.PhotoStore,
) *GuardHandler {
	return &GuardHandler{
		visitorService:  visitorService,
		approvalService: approvalService,
		photoStore:      photoStore,
	}
}

// ============================================================
// POST /api/v1/guard/visitors — check in a walk-in visitor
// ============================================================
func (h *GuardHandler) CheckIn(c *fiber.Ctx) error {
	input := services.CheckInInput{
		Name:    c.FormValue("name"),
		Phone:   c.FormValue("phone"),
		Flat:    c.FormValue("flat"),
		Purpose: c.FormValue("purpose"),
		Vehicle: c.FormValue("vehicle"),
	}

	// Photo is optional evidence. A failed upload is logged and the check-in
	// proceeds without it.
	if file, err := c.FormFile("photo"); err == nil && file != nil && h.photoStore != nil {
		url, err := h.photoStore.UploadVisitorPhoto(c.Context(), file)
		if err != nil {
			log.Printf("⚠️ Photo upload failed, continuing without photo: %v", err)
		} else {
			input.PhotoURL = url
		}
	}

	visitor, err := h.visitorService.CheckIn(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Name, flat and purpose are required")
		}
		return response.InternalServerError(c, "Failed to check in visitor")
	}

	return response.Created(c, "Visitor checked in", visitor)
}

// ============================================================
// PUT /api/v1/guard/visitors/:id/checkout — visitor leaves
// ============================================================
func (h *GuardHandler) CheckOut(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid visitor ID")
	}

	visitor, err := h.visitorService.CheckOut(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVisitorNotFound):
			return response.NotFound(c, "Visitor not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Only visitors currently inside can check out")
		default:
			return response.InternalServerError(c, "Failed to check out visitor")
		}
	}

	return response.Success(c, "Visitor checked out", visitor)
}

// ============================================================
// GET /api/v1/guard/visitors/pending — waiting at the gate
// ============================================================
func (h *GuardHandler) ListPending(c *fiber.Ctx) error {
	visitors, err := h.visitorService.ListPending(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending visitors")
	}
	return response.Success(c, "Pending visitors retrieved", visitors)
}

// ============================================================
// GET /api/v1/guard/expected — active pre-approvals not yet arrived
// ============================================================
func (h *GuardHandler) ListExpected(c *fiber.Ctx) error {
	approvals, err := h.approvalService.ListExpected(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list expected visitors")
	}

	// Codes stay secret; the guard sees who is expected, not the code
	out := make([]interface{}, len(approvals))
	for i := range approvals {
		out[i] = approvals[i].ToResponse(false)
	}
	return response.Success(c, "Expected visitors retrieved", out)
}

// VerifyRequest represents the gate code check body
type VerifyRequest struct {
	Code string `json:"code"`
}

// ============================================================
// POST /api/v1/guard/approvals/:id/verify — code check at the gate
// ============================================================
func (h *GuardHandler) VerifyArrival(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid approval ID")
	}

	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return response.BadRequest(c, "Verification code is required")
	}

	approval, err := h.approvalService.VerifyArrival(c.Context(), id, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApprovalNotFound):
			return response.NotFound(c, "Pre-approval not found")
		case errors.Is(err, domain.ErrApprovalNotActive):
			return response.Conflict(c, "Pre-approval is no longer active")
		case errors.Is(err, domain.ErrInvalidCode):
			return response.BadRequest(c, "Invalid verification code")
		default:
			return response.InternalServerError(c, "Failed to verify arrival")
		}
	}

	return response.Success(c, "Arrival verified", approval.ToResponse(false))
}

// parseID reads the :id route param
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

package handlers

import (
	"errors"

	"societygate/internal/core/services"
	"societygate/internal/pkg/pagination"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account management endpoints (admin) plus the
// self-service profile endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ============================================================
// POST /api/v1/admin/users — create resident/guard/admin account
// ============================================================
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Name == "" || input.Username == "" {
		return response.BadRequest(c, "Name and username are required")
	}
	if len(input.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	user, err := h.userService.CreateUser(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be RESIDENT, SECURITY or ADMIN")
		case errors.Is(err, services.ErrFlatRequired):
			return response.BadRequest(c, "Flat is required for residents")
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created", user)
}

// ============================================================
// GET /api/v1/admin/users — list accounts, searchable by name/flat/phone
// ============================================================
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.Context(), pagination.GetParams(c), c.Query("search"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved", result)
}

// ============================================================
// GET /api/v1/admin/users/:id
// ============================================================
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFoundSvc) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved", user)
}

// ============================================================
// PUT /api/v1/admin/users/:id
// ============================================================
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	adminID, _ := c.Locals("userID").(uint)

	var input services.UpdateUserByAdminInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUserByAdmin(c.Context(), id, adminID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrCannotChangeOwnRole):
			return response.Forbidden(c, "You cannot change your own role")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be RESIDENT, SECURITY or ADMIN")
		case errors.Is(err, services.ErrFlatRequired):
			return response.BadRequest(c, "Flat is required for residents")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated", user)
}

// ============================================================
// GET /api/v1/profile — own profile
// ============================================================
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "Profile retrieved", user)
}

// ============================================================
// PUT /api/v1/profile/password — change own password
// ============================================================
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &input); err != nil {
		if errors.Is(err, services.ErrOldPasswordWrong) {
			return response.BadRequest(c, "Old password is incorrect")
		}
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.Success(c, "Password changed", nil)
}

package services

import (
	"context"
	"errors"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/core/filter"
	"societygate/internal/pkg/pagination"
	"societygate/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFoundSvc     = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrFlatRequired        = errors.New("flat is required for residents")
	ErrInvalidRole         = errors.New("invalid role")
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
)

// UserService handles account management (admin-side)
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents admin account creation input
type CreateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
	Flat     string `json:"flat"`
	Phone    string `json:"phone"`
}

// ListUsersOutput represents one page of accounts
type ListUsersOutput struct {
	Users []*models.UserResponse `json:"users"`
	Meta  *pagination.Meta       `json:"meta"`
}

// UpdateUserByAdminInput represents admin account update input
type UpdateUserByAdminInput struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Flat     *string `json:"flat"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func validRole(role string) bool {
	return role == models.RoleResident || role == models.RoleSecurity || role == models.RoleAdmin
}

// CreateUser creates a resident, guard or admin account. Residents must carry
// a flat; the other roles must not.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	if !validRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if input.Role == models.RoleResident && input.Flat == "" {
		return nil, ErrFlatRequired
	}
	if input.Role != models.RoleResident {
		input.Flat = ""
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Username: input.Username,
		Password: hashedPassword,
		Role:     input.Role,
		Flat:     input.Flat,
		Phone:    input.Phone,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ListUsers returns a page of accounts. Search matches name, flat and phone
// (case-insensitive substring) and is applied before paging so the page
// numbers stay meaningful.
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params, search string) (*ListUsersOutput, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.User, 0, len(users))
	for _, user := range users {
		if filter.MatchUser(user, search) {
			matched = append(matched, user)
		}
	}

	start, end := pagination.Bounds(params, len(matched))
	page := make([]*models.UserResponse, 0, end-start)
	for _, user := range matched[start:end] {
		page = append(page, user.ToResponse())
	}

	return &ListUsersOutput{
		Users: page,
		Meta:  pagination.GetMeta(params, int64(len(matched))),
	}, nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUserByAdmin updates a user by admin
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id uint, adminID uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	// Prevent admin from changing own role
	if id == adminID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		if !validRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.Flat != nil {
		user.Flat = *input.Flat
	}
	if user.Role == models.RoleResident && user.Flat == "" {
		return nil, ErrFlatRequired
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFoundSvc
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if len(input.NewPassword) < 8 {
		return errors.New("new password must be at least 8 characters")
	}

	// Hash new password
	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

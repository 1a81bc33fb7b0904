package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
)

// Workflow errors
var (
	ErrVisitorNotFound   = errors.New("visitor not found")
	ErrApprovalNotFound  = errors.New("pre-approval not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrApprovalNotActive = errors.New("pre-approval is not active")
)

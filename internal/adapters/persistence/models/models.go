package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User roles
const (
	RoleResident = "RESIDENT"
	RoleSecurity = "SECURITY"
	RoleAdmin    = "ADMIN"
)

// User represents users table (residents, security guards, admins)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'RESIDENT'" json:"role"`
	Flat      string         `gorm:"size:20;index" json:"flat"` // required for residents, empty otherwise
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Flat      string    `json:"flat,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Role:      u.Role,
		Flat:      u.Flat,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Visitor Table
// ============================================================

// Visitor statuses. Transitions are one-way:
// pending → inside → out, or pending → rejected.
const (
	VisitorStatusPending  = "pending"
	VisitorStatusInside   = "inside"
	VisitorStatusOut      = "out"
	VisitorStatusRejected = "rejected"
)

// Visitor represents visitors table. Rows are never deleted — the table is
// the gate's permanent entry log.
type Visitor struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Phone      string     `gorm:"size:20" json:"phone"`
	Flat       string     `gorm:"size:20;not null;index" json:"flat"`
	Purpose    string     `gorm:"size:100;not null" json:"purpose"`
	Vehicle    string     `gorm:"size:20" json:"vehicle"`
	PhotoURL   string     `gorm:"size:500" json:"photo_url"`
	Status     string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CheckInAt  time.Time  `gorm:"not null" json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Visitor) TableName() string {
	return "visitors"
}

// ============================================================
// PreApproval Table
// ============================================================

// PreApproval statuses
const (
	ApprovalStatusActive    = "Pre-Approved"
	ApprovalStatusCancelled = "Cancelled"
)

// PreApproval arrival statuses. Empty means the visitor has not arrived yet.
// "Arrived at Gate" is reachable only through code verification.
const (
	ArrivalStatusArrived   = "Arrived at Gate"
	ArrivalStatusExpired   = "Expired"
	ArrivalStatusCancelled = "Cancelled by Resident"
)

// PreApproval frequency
const (
	FrequencyOnce      = "once"
	FrequencyRecurring = "recurring"
)

// PreApproval represents pre_approvals table — a resident-issued, code-gated
// standing authorization for an expected visitor. Retained as history.
type PreApproval struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Flat          string     `gorm:"size:20;not null;index" json:"flat"`
	Category      string     `gorm:"size:50" json:"category"`
	Frequency     string     `gorm:"size:20;default:'once'" json:"frequency"`
	Code          string     `gorm:"size:6;not null" json:"-"`
	Approved      bool       `gorm:"default:true" json:"approved"`
	Status        string     `gorm:"size:20;not null;default:'Pre-Approved';index" json:"status"`
	ArrivalStatus string     `gorm:"size:30;index" json:"arrival_status"`
	RequestedAt   time.Time  `gorm:"not null" json:"requested_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (PreApproval) TableName() string {
	return "pre_approvals"
}

// PreApprovalResponse DTO — the one place the code is exposed: to the
// resident who created it, so they can share it with their visitor.
type PreApprovalResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Flat          string     `json:"flat"`
	Category      string     `json:"category"`
	Frequency     string     `json:"frequency"`
	Code          string     `json:"code,omitempty"`
	Approved      bool       `json:"approved"`
	Status        string     `json:"status"`
	ArrivalStatus string     `json:"arrival_status"`
	RequestedAt   time.Time  `json:"requested_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

func (p *PreApproval) ToResponse(withCode bool) *PreApprovalResponse {
	resp := &PreApprovalResponse{
		ID:            p.ID,
		Name:          p.Name,
		Flat:          p.Flat,
		Category:      p.Category,
		Frequency:     p.Frequency,
		Approved:      p.Approved,
		Status:        p.Status,
		ArrivalStatus: p.ArrivalStatus,
		RequestedAt:   p.RequestedAt,
		CancelledAt:   p.CancelledAt,
	}
	if withCode {
		resp.Code = p.Code
	}
	return resp
}

// ============================================================
// Notification Table
// ============================================================

// Notification receiver roles
const (
	ReceiverResident = "resident"
	ReceiverSecurity = "security"
)

// Notification request types
const (
	RequestTypePreApproval    = "pre-approval"
	RequestTypeVisitorCheckin = "visitor-checkin"
)

// Notification represents notifications table — a role-targeted alert about a
// visitor or pre-approval event. ReceiverFlat is set iff the receiver role is
// resident; security notifications are broadcast. Only the unread flag is ever
// mutated; rows may be hard-deleted for cleanup.
type Notification struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Flat         string     `gorm:"size:20;not null" json:"flat"`
	Purpose      string     `gorm:"size:100" json:"purpose"`
	Vehicle      string     `gorm:"size:20" json:"vehicle"`
	ReceiverRole string     `gorm:"size:20;not null;index" json:"receiver_role"`
	ReceiverFlat string     `gorm:"size:20;index" json:"receiver_flat"`
	Unread       bool       `gorm:"default:true;index" json:"unread"`
	RequestType  string     `gorm:"size:30;not null" json:"request_type"`
	ReceivedTime string     `gorm:"size:30" json:"received_time"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ReadAt       *time.Time `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Visitor{},
		&PreApproval{},
		&Notification{},
	)
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role identifies the permission tier of a principal.
type Role string

const (
	// RoleMember is a regular organization member.
	RoleMember Role = "member"
	// RoleAdmin manages members within a single organization.
	RoleAdmin Role = "admin"
	// RoleSeniorAdmin is an alias tier kept for accounts created under the
	// legacy naming; it carries the same privileges as RoleAdmin.
	RoleSeniorAdmin Role = "senior_admin"
	// RoleSuperadmin manages organizations and admin accounts globally.
	RoleSuperadmin Role = "superadmin"
)

// Status is the lifecycle state of a principal account.
type Status string

const (
	// StatusPending awaits review by an admin (members) or superadmin (admins).
	StatusPending Status = "pending"
	// StatusApproved has passed review and may hold a full session.
	StatusApproved Status = "approved"
	// StatusActive is an approved account that has completed first login.
	StatusActive Status = "active"
	// StatusRejected was denied during review. No token is ever issued.
	StatusRejected Status = "rejected"
	// StatusDisabled was deactivated after approval.
	StatusDisabled Status = "disabled"
)

// CanHoldSession reports whether an account in this status may be issued or
// keep using a full session token.
func (s Status) CanHoldSession() bool {
	return s == StatusApproved || s == StatusActive
}

// Principal is a member, admin, or superadmin account. Role is immutable after
// creation; status is mutated only by the approval workflow.
type Principal struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FullName       string         `gorm:"size:120;not null" json:"full_name"`
	Email          string         `gorm:"unique;not null" json:"email"`
	Phone          string         `gorm:"size:32;index" json:"phone"`
	Password       string         `gorm:"not null" json:"-"`
	Role           Role           `gorm:"type:varchar(20);not null;index" json:"role"`
	Status         Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrganizationID *uint          `gorm:"index" json:"organization_id"`
	Organization   *Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

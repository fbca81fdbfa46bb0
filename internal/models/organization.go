package models

import (
	"time"

	"gorm.io/gorm"
)

// OrganizationStatus is the lifecycle state of an organization.
type OrganizationStatus string

const (
	// OrganizationStatusActive accepts membership applications.
	OrganizationStatusActive OrganizationStatus = "active"
	// OrganizationStatusDisabled is hidden from the public listing.
	OrganizationStatusDisabled OrganizationStatus = "disabled"
)

// Organization is a tenant that members and admins belong to.
type Organization struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	Name         string             `gorm:"size:120;unique;not null" json:"name"`
	Slug         string             `gorm:"size:64;unique;not null" json:"slug"`
	Description  string             `gorm:"type:text" json:"description"`
	ContactEmail string             `gorm:"size:254" json:"contact_email"`
	Status       OrganizationStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"-"`
}

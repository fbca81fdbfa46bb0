package models

import "time"

// AdminRequestStatus defines lifecycle states for admin account applications.
type AdminRequestStatus string

const (
	// AdminRequestStatusPending indicates the application is awaiting review.
	AdminRequestStatusPending AdminRequestStatus = "pending"
	// AdminRequestStatusApproved indicates the application was accepted.
	AdminRequestStatusApproved AdminRequestStatus = "approved"
	// AdminRequestStatusRejected indicates the application was denied.
	AdminRequestStatusRejected AdminRequestStatus = "rejected"
)

// AdminRequest is an application for an admin account, reviewed by a
// superadmin. Approval activates the linked principal; rejection keeps the
// row for auditing.
type AdminRequest struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	PrincipalID    uint               `gorm:"not null;index" json:"principal_id"`
	Principal      *Principal         `gorm:"foreignKey:PrincipalID" json:"principal,omitempty"`
	OrganizationID uint               `gorm:"not null;index" json:"organization_id"`
	Organization   *Organization      `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Reason         string             `gorm:"type:text" json:"reason"`
	Status         AdminRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedByID   *uint              `json:"reviewed_by_id"`
	ReviewedBy     *Principal         `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewNotes    string             `gorm:"type:text" json:"review_notes"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

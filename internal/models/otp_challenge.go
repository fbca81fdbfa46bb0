package models

import "time"

// OTPChannel is the delivery channel for a one-time code.
type OTPChannel string

const (
	// OTPChannelEmail delivers codes by email.
	OTPChannelEmail OTPChannel = "email"
	// OTPChannelPhone delivers codes by SMS.
	OTPChannelPhone OTPChannel = "phone"
)

// OTPChallenge is a short-lived one-time code bound to a contact address and
// channel. At most one active (unused, unexpired) challenge exists per
// (contact, channel) pair; issuing a new one supersedes the previous.
type OTPChallenge struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Contact   string     `gorm:"size:254;not null;index:idx_otp_contact_channel" json:"contact"`
	Channel   OTPChannel `gorm:"type:varchar(10);not null;index:idx_otp_contact_channel" json:"channel"`
	Code      string     `gorm:"size:12;not null" json:"-"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"used_at"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the challenge is still verifiable at the given time.
func (c *OTPChallenge) Active(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}

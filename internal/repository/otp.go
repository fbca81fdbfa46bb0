package repository

import (
	"context"
	"time"

	"memberbase/internal/models"

	"gorm.io/gorm"
)

// OTPRepository is the one-time-code ledger. Issue supersedes any prior
// active challenge for the (contact, channel) pair; Consume flips the used
// flag with a conditional update so two concurrent verifications can never
// both succeed.
type OTPRepository interface {
	Issue(ctx context.Context, challenge *models.OTPChallenge) error
	Consume(ctx context.Context, contact, code string, channel models.OTPChannel, now time.Time) (bool, error)
	LatestActive(ctx context.Context, contact string, channel models.OTPChannel, now time.Time) (*models.OTPChallenge, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository returns a new OTPRepository implementation.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Issue invalidates prior active challenges and records the new one in a
// single transaction, so at most one challenge per (contact, channel) is ever
// verifiable.
func (r *otpRepository) Issue(ctx context.Context, challenge *models.OTPChallenge) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.OTPChallenge{}).
			Where("contact = ? AND channel = ? AND used = ?", challenge.Contact, challenge.Channel, false).
			Updates(map[string]any{"used": true, "used_at": now}).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Consume marks the matching unused, unexpired challenge as used. The update
// is conditioned on used = false at update time; success requires exactly one
// affected row.
func (r *otpRepository) Consume(ctx context.Context, contact, code string, channel models.OTPChannel, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OTPChallenge{}).
		Where("contact = ? AND channel = ? AND code = ? AND used = ? AND expires_at > ?",
			contact, channel, code, false, now).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *otpRepository) LatestActive(ctx context.Context, contact string, channel models.OTPChannel, now time.Time) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	err := r.db.WithContext(ctx).
		Where("contact = ? AND channel = ? AND used = ? AND expires_at > ?", contact, channel, false, now).
		Order("created_at DESC").
		First(&challenge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &challenge, nil
}

// PurgeExpired deletes stale challenges. Storage hygiene only; correctness
// never depends on it.
func (r *otpRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR used = ?", before, true).
		Delete(&models.OTPChallenge{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"memberbase/internal/middleware"
	"memberbase/internal/models"
	"memberbase/internal/repository"
)

// CodeWidth is the fixed width of generated one-time codes.
const CodeWidth = 6

// OTPService owns the one-time-code lifecycle: generation, delivery,
// supersession, and consume-once verification.
type OTPService struct {
	repo   repository.OTPRepository
	sender Sender
	ttl    time.Duration
}

// NewOTPService creates an OTPService. ttl is clamped into the 5-10 minute
// window the challenge contract allows.
func NewOTPService(repo repository.OTPRepository, sender Sender, ttl time.Duration) *OTPService {
	if ttl < time.Minute {
		ttl = 5 * time.Minute
	}
	if ttl > 10*time.Minute {
		ttl = 10 * time.Minute
	}
	return &OTPService{repo: repo, sender: sender, ttl: ttl}
}

// TTL returns the configured challenge validity window.
func (s *OTPService) TTL() time.Duration { return s.ttl }

// Issue generates a code, delivers it, and only then records the challenge.
// A challenge whose delivery failed is never persisted, so a valid-looking
// code can never exist that the contact did not receive. Issuing supersedes
// any prior active challenge for the same (contact, channel).
func (s *OTPService) Issue(ctx context.Context, contact string, channel models.OTPChannel) (*models.OTPChallenge, error) {
	code, err := generateCode(CodeWidth)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.sender.Send(ctx, contact, channel, code); err != nil {
		middleware.OTPIssued.WithLabelValues(string(channel), "delivery_failed").Inc()
		return nil, models.NewDeliveryFailedError(err)
	}

	now := time.Now()
	challenge := &models.OTPChallenge{
		Contact:   contact,
		Channel:   channel,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Issue(ctx, challenge); err != nil {
		middleware.OTPIssued.WithLabelValues(string(channel), "store_failed").Inc()
		return nil, err
	}

	middleware.OTPIssued.WithLabelValues(string(channel), "ok").Inc()
	return challenge, nil
}

// Verify consumes the active challenge matching (contact, code, channel).
// Success happens at most once per issued challenge; expired, superseded,
// already-used, and mismatched codes all fail the same way.
func (s *OTPService) Verify(ctx context.Context, contact, code string, channel models.OTPChannel) error {
	consumed, err := s.repo.Consume(ctx, contact, code, channel, time.Now())
	if err != nil {
		middleware.OTPVerified.WithLabelValues("error").Inc()
		return err
	}
	if !consumed {
		middleware.OTPVerified.WithLabelValues("invalid").Inc()
		return models.NewOTPInvalidError()
	}
	middleware.OTPVerified.WithLabelValues("ok").Inc()
	return nil
}

// PurgeExpired removes stale challenges, returning the number deleted.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, time.Now())
}

// generateCode returns a crypto-random fixed-width numeric code.
func generateCode(width int) (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < width; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", width, n), nil
}

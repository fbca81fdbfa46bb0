package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"memberbase/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOTPRepository is a mock of the OTPRepository interface
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Issue(ctx context.Context, challenge *models.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockOTPRepository) Consume(ctx context.Context, contact, code string, channel models.OTPChannel, now time.Time) (bool, error) {
	args := m.Called(ctx, contact, code, channel, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockOTPRepository) LatestActive(ctx context.Context, contact string, channel models.OTPChannel, now time.Time) (*models.OTPChallenge, error) {
	args := m.Called(ctx, contact, channel, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OTPChallenge), args.Error(1)
}

func (m *MockOTPRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// recordingSender captures delivered codes; failingSender refuses delivery.
type recordingSender struct {
	contact string
	channel models.OTPChannel
	code    string
}

func (r *recordingSender) Send(_ context.Context, contact string, channel models.OTPChannel, code string) error {
	r.contact = contact
	r.channel = channel
	r.code = code
	return nil
}

type failingSender struct{}

func (failingSender) Send(context.Context, string, models.OTPChannel, string) error {
	return errors.New("smtp connection refused")
}

func TestIssue_DeliversThenPersists(t *testing.T) {
	repo := new(MockOTPRepository)
	sender := &recordingSender{}
	svc := NewOTPService(repo, sender, 5*time.Minute)

	repo.On("Issue", mock.Anything, mock.MatchedBy(func(ch *models.OTPChallenge) bool {
		return ch.Contact == "member@example.com" &&
			ch.Channel == models.OTPChannelEmail &&
			ch.Code == sender.code &&
			!ch.Used
	})).Return(nil)

	challenge, err := svc.Issue(context.Background(), "member@example.com", models.OTPChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, "member@example.com", sender.contact)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), sender.code)
	assert.Equal(t, sender.code, challenge.Code)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), challenge.ExpiresAt, time.Minute)
	repo.AssertExpectations(t)
}

// A challenge whose delivery failed must never be persisted: otherwise a
// valid-looking code exists that the contact never received.
func TestIssue_DeliveryFailureSkipsPersist(t *testing.T) {
	repo := new(MockOTPRepository)
	svc := NewOTPService(repo, failingSender{}, 5*time.Minute)

	challenge, err := svc.Issue(context.Background(), "member@example.com", models.OTPChannelEmail)
	assert.Nil(t, challenge)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "DELIVERY_FAILED", appErr.Code)

	repo.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerify_ConsumesOnce(t *testing.T) {
	repo := new(MockOTPRepository)
	svc := NewOTPService(repo, &recordingSender{}, 5*time.Minute)

	repo.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
		Return(true, nil).Once()
	repo.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
		Return(false, nil)

	err := svc.Verify(context.Background(), "member@example.com", "123456", models.OTPChannelEmail)
	assert.NoError(t, err)

	// Replay of the same code fails the same way as a wrong code.
	err = svc.Verify(context.Background(), "member@example.com", "123456", models.OTPChannelEmail)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "OTP_EXPIRED_OR_INVALID", appErr.Code)
}

func TestVerify_RepositoryErrorPassesThrough(t *testing.T) {
	repo := new(MockOTPRepository)
	svc := NewOTPService(repo, &recordingSender{}, 5*time.Minute)

	repo.On("Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, models.NewInternalError(errors.New("connection reset")))

	err := svc.Verify(context.Background(), "member@example.com", "123456", models.OTPChannelEmail)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.NotEqual(t, "OTP_EXPIRED_OR_INVALID", appErr.Code)
}

func TestNewOTPService_ClampsTTL(t *testing.T) {
	repo := new(MockOTPRepository)

	assert.Equal(t, 5*time.Minute, NewOTPService(repo, &recordingSender{}, 0).TTL())
	assert.Equal(t, 10*time.Minute, NewOTPService(repo, &recordingSender{}, time.Hour).TTL())
	assert.Equal(t, 3*time.Minute, NewOTPService(repo, &recordingSender{}, 3*time.Minute).TTL())
}

func TestGenerateCode_FixedWidthNumeric(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateCode(CodeWidth)
		require.NoError(t, err)
		assert.Len(t, code, CodeWidth)
		assert.Regexp(t, regexp.MustCompile(`^[0-9]+$`), code)
		seen[code] = true
	}
	// 200 draws from a million-code space should essentially never all collide.
	assert.Greater(t, len(seen), 150)
}

package server

import (
	"context"
	"time"

	"memberbase/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPrincipalRepository is a mock of the PrincipalRepository interface
type MockPrincipalRepository struct {
	mock.Mock
}

func (m *MockPrincipalRepository) GetByID(ctx context.Context, id uint) (*models.Principal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockPrincipalRepository) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockPrincipalRepository) GetByContact(ctx context.Context, contact string) (*models.Principal, error) {
	args := m.Called(ctx, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockPrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPrincipalRepository) Update(ctx context.Context, p *models.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPrincipalRepository) UpdateStatus(ctx context.Context, id uint, status models.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPrincipalRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPrincipalRepository) ListByOrganization(ctx context.Context, orgID uint, role models.Role, limit, offset int) ([]models.Principal, error) {
	args := m.Called(ctx, orgID, role, limit, offset)
	return args.Get(0).([]models.Principal), args.Error(1)
}

func (m *MockPrincipalRepository) ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.Principal, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]models.Principal), args.Error(1)
}

// MockOrganizationRepository is a mock of the OrganizationRepository interface
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uint) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationRepository) ListActive(ctx context.Context) ([]models.Organization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]models.Organization, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Organization), args.Error(1)
}

// MockAdminRequestRepository is a mock of the AdminRequestRepository interface
type MockAdminRequestRepository struct {
	mock.Mock
}

func (m *MockAdminRequestRepository) Create(ctx context.Context, req *models.AdminRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockAdminRequestRepository) GetByID(ctx context.Context, id uint) (*models.AdminRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminRequest), args.Error(1)
}

func (m *MockAdminRequestRepository) ListByStatus(ctx context.Context, status models.AdminRequestStatus, limit, offset int) ([]models.AdminRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.AdminRequest), args.Error(1)
}

func (m *MockAdminRequestRepository) Review(ctx context.Context, id, reviewerID uint, approve bool, notes string) (*models.AdminRequest, error) {
	args := m.Called(ctx, id, reviewerID, approve, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminRequest), args.Error(1)
}

// MockOTPStore is a mock of the repository.OTPRepository interface used to
// back an OTPService in handler tests.
type MockOTPStore struct {
	mock.Mock
}

func (m *MockOTPStore) Issue(ctx context.Context, challenge *models.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockOTPStore) Consume(ctx context.Context, contact, code string, channel models.OTPChannel, now time.Time) (bool, error) {
	args := m.Called(ctx, contact, code, channel, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockOTPStore) LatestActive(ctx context.Context, contact string, channel models.OTPChannel, now time.Time) (*models.OTPChallenge, error) {
	args := m.Called(ctx, contact, channel, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OTPChallenge), args.Error(1)
}

func (m *MockOTPStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

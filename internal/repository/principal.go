// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"memberbase/internal/models"

	"gorm.io/gorm"
)

// PrincipalRepository is the single credential-store contract. All account
// lookups go through here; call sites never probe alternative tables.
type PrincipalRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Principal, error)
	// GetByEmail returns (nil, nil) when no account exists for the address.
	GetByEmail(ctx context.Context, email string) (*models.Principal, error)
	GetByContact(ctx context.Context, contact string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) error
	Update(ctx context.Context, p *models.Principal) error
	UpdateStatus(ctx context.Context, id uint, status models.Status) error
	Delete(ctx context.Context, id uint) error
	ListByOrganization(ctx context.Context, orgID uint, role models.Role, limit, offset int) ([]models.Principal, error)
	ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.Principal, error)
}

type principalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository returns a new PrincipalRepository implementation.
func NewPrincipalRepository(db *gorm.DB) PrincipalRepository {
	return &principalRepository{db: db}
}

func (r *principalRepository) GetByID(ctx context.Context, id uint) (*models.Principal, error) {
	var p models.Principal
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Principal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var p models.Principal
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

// GetByContact resolves a principal by email or phone, used by the OTP flows
// where the client supplies whichever contact the code was sent to.
func (r *principalRepository) GetByContact(ctx context.Context, contact string) (*models.Principal, error) {
	var p models.Principal
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", strings.ToLower(contact), contact).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *principalRepository) Create(ctx context.Context, p *models.Principal) error {
	p.Email = strings.ToLower(p.Email)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Account already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *principalRepository) Update(ctx context.Context, p *models.Principal) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateStatus mutates only the lifecycle status. Role is immutable after
// creation, so the approval workflow goes through here rather than Update.
func (r *principalRepository) UpdateStatus(ctx context.Context, id uint, status models.Status) error {
	res := r.db.WithContext(ctx).
		Model(&models.Principal{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Principal", id)
	}
	return nil
}

func (r *principalRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Principal{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *principalRepository) ListByOrganization(ctx context.Context, orgID uint, role models.Role, limit, offset int) ([]models.Principal, error) {
	var principals []models.Principal
	q := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&principals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return principals, nil
}

func (r *principalRepository) ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.Principal, error) {
	var principals []models.Principal
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&principals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return principals, nil
}

package repository

import (
	"context"
	"errors"

	"memberbase/internal/models"

	"gorm.io/gorm"
)

// OrganizationRepository defines persistence operations for organizations.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	Create(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]models.Organization, error)
	List(ctx context.Context, limit, offset int) ([]models.Organization, error)
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository returns a new OrganizationRepository implementation.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Organization", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &org, nil
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &org, nil
}

func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Organization already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *organizationRepository) Update(ctx context.Context, org *models.Organization) error {
	if err := r.db.WithContext(ctx).Save(org).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Organization{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *organizationRepository) ListActive(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.OrganizationStatusActive).
		Order("name ASC").
		Find(&orgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return orgs, nil
}

func (r *organizationRepository) List(ctx context.Context, limit, offset int) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&orgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return orgs, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"memberbase/internal/models"

	"gorm.io/gorm"
)

// AdminRequestRepository defines persistence operations for admin account
// applications.
type AdminRequestRepository interface {
	Create(ctx context.Context, req *models.AdminRequest) error
	GetByID(ctx context.Context, id uint) (*models.AdminRequest, error)
	ListByStatus(ctx context.Context, status models.AdminRequestStatus, limit, offset int) ([]models.AdminRequest, error)
	// Review transitions a pending request and its linked principal in one
	// transaction. Only pending requests can be reviewed.
	Review(ctx context.Context, id, reviewerID uint, approve bool, notes string) (*models.AdminRequest, error)
}

type adminRequestRepository struct {
	db *gorm.DB
}

// NewAdminRequestRepository returns a new AdminRequestRepository implementation.
func NewAdminRequestRepository(db *gorm.DB) AdminRequestRepository {
	return &adminRequestRepository{db: db}
}

func (r *adminRequestRepository) Create(ctx context.Context, req *models.AdminRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adminRequestRepository) GetByID(ctx context.Context, id uint) (*models.AdminRequest, error) {
	var req models.AdminRequest
	if err := r.db.WithContext(ctx).
		Preload("Principal").
		Preload("Organization").
		First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("AdminRequest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *adminRequestRepository) ListByStatus(ctx context.Context, status models.AdminRequestStatus, limit, offset int) ([]models.AdminRequest, error) {
	var reqs []models.AdminRequest
	q := r.db.WithContext(ctx).Preload("Principal").Preload("Organization")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at ASC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *adminRequestRepository) Review(ctx context.Context, id, reviewerID uint, approve bool, notes string) (*models.AdminRequest, error) {
	var reviewed models.AdminRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.AdminRequest
		if err := tx.First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("AdminRequest", id)
			}
			return models.NewInternalError(err)
		}
		if req.Status != models.AdminRequestStatusPending {
			return models.NewConflictError("Request has already been reviewed")
		}

		now := time.Now()
		req.ReviewedByID = &reviewerID
		req.ReviewNotes = notes
		req.UpdatedAt = now

		principalStatus := models.StatusRejected
		req.Status = models.AdminRequestStatusRejected
		if approve {
			req.Status = models.AdminRequestStatusApproved
			principalStatus = models.StatusApproved
		}

		if err := tx.Save(&req).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Principal{}).
			Where("id = ?", req.PrincipalID).
			Update("status", principalStatus).Error; err != nil {
			return models.NewInternalError(err)
		}

		reviewed = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reviewed, nil
}

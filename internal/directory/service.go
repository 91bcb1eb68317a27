// Package directory implements the listing of businesses that accept BTC.
// Submissions are held until an admin approves them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcoinperu/comunidad/pkg/models"
)

// ErrNotFound reports a missing business record.
var ErrNotFound = errors.New("business not found")

// Service implements business directory operations.
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates the directory service.
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{logger: logger, db: db}
}

// Submit stores a new, unapproved business entry.
func (s *Service) Submit(ctx context.Context, submitterID uuid.UUID, req *models.BusinessRequest) (*models.Business, error) {
	business := &models.Business{
		ID:          uuid.New(),
		SubmittedBy: submitterID,
		Name:        req.Name,
		Category:    req.Category,
		District:    req.District,
		Address:     req.Address,
		Phone:       req.Phone,
		Website:     req.Website,
		Description: req.Description,
		Approved:    false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to submit business: %w", err)
	}
	s.logger.Info("business submitted",
		zap.String("business_id", business.ID.String()),
		zap.String("name", business.Name))
	return business, nil
}

// ListApproved returns approved businesses, optionally filtered by category
// and district.
func (s *Service) ListApproved(ctx context.Context, category, district string) ([]*models.Business, error) {
	var businesses []*models.Business
	q := s.db.WithContext(ctx).Where("approved = ?", true).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if district != "" {
		q = q.Where("district = ?", district)
	}
	if err := q.Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	return businesses, nil
}

// ListPending returns businesses awaiting approval, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.Business, error) {
	var businesses []*models.Business
	err := s.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&businesses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending businesses: %w", err)
	}
	return businesses, nil
}

// Approve marks a pending business as approved.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := s.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	business.Approved = true
	business.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&business).Error; err != nil {
		return nil, fmt.Errorf("failed to approve business: %w", err)
	}
	return &business, nil
}

// Delete removes a business entry (used for rejections as well).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Business{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete business: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

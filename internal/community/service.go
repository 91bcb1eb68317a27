// Package community implements forum posts, events, educational resources,
// and the homepage media carousel.
package community

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcoinperu/comunidad/pkg/models"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("not found")

// ErrForbidden reports an operation attempted by someone who is neither
// the record's author nor an admin.
var ErrForbidden = errors.New("forbidden")

// Service implements community content operations.
type Service struct {
	logger   *zap.Logger
	db       *gorm.DB
	sanitize *bluemonday.Policy
}

// NewService creates the community service. User-submitted HTML bodies are
// run through a UGC sanitization policy before storage.
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		logger:   logger,
		db:       db,
		sanitize: bluemonday.UGCPolicy(),
	}
}

// --- Posts ---

// CreatePost stores a new forum post with a sanitized body.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, req *models.PostRequest) (*models.Post, error) {
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     req.Title,
		Body:      s.sanitize.Sanitize(req.Body),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// ListPosts returns posts newest-first, pinned posts leading.
func (s *Service) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var posts []*models.Post
	err := s.db.WithContext(ctx).
		Order("pinned DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post by ID.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// UpdatePost edits a post; only the author or an admin may edit.
func (s *Service) UpdatePost(ctx context.Context, actor *models.User, id uuid.UUID, req *models.PostRequest) (*models.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID && actor.Role != "admin" {
		return nil, ErrForbidden
	}
	post.Title = req.Title
	post.Body = s.sanitize.Sanitize(req.Body)
	post.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// DeletePost removes a post; only the author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, actor *models.User, id uuid.UUID) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && actor.Role != "admin" {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(post).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// --- Events ---

// CreateEvent stores a new event.
func (s *Service) CreateEvent(ctx context.Context, creatorID uuid.UUID, req *models.EventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:          uuid.New(),
		CreatedBy:   creatorID,
		Title:       req.Title,
		Description: s.sanitize.Sanitize(req.Description),
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// ListEvents returns events. When upcomingOnly is set, only events starting
// at or after now, soonest first; otherwise all events newest-first.
func (s *Service) ListEvents(ctx context.Context, upcomingOnly bool) ([]*models.Event, error) {
	var events []*models.Event
	q := s.db.WithContext(ctx)
	if upcomingOnly {
		q = q.Where("starts_at >= ?", time.Now()).Order("starts_at ASC")
	} else {
		q = q.Order("starts_at DESC")
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent edits an event; only the creator or an admin may edit.
func (s *Service) UpdateEvent(ctx context.Context, actor *models.User, id uuid.UUID, req *models.EventRequest) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.CreatedBy != actor.ID && actor.Role != "admin" {
		return nil, ErrForbidden
	}
	event.Title = req.Title
	event.Description = s.sanitize.Sanitize(req.Description)
	event.Location = req.Location
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &event, nil
}

// DeleteEvent removes an event; only the creator or an admin may delete.
func (s *Service) DeleteEvent(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.CreatedBy != actor.ID && actor.Role != "admin" {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&event).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// --- Resources ---

// CreateResource stores a new educational resource link.
func (s *Service) CreateResource(ctx context.Context, creatorID uuid.UUID, req *models.ResourceRequest) (*models.Resource, error) {
	resource := &models.Resource{
		ID:          uuid.New(),
		CreatedBy:   creatorID,
		Title:       req.Title,
		URL:         req.URL,
		Category:    req.Category,
		Description: s.sanitize.Sanitize(req.Description),
		CreatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(resource).Error; err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return resource, nil
}

// ListResources returns resources, optionally filtered by category.
func (s *Service) ListResources(ctx context.Context, category string) ([]*models.Resource, error) {
	var resources []*models.Resource
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// DeleteResource removes a resource; only the creator or an admin may delete.
func (s *Service) DeleteResource(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var resource models.Resource
	if err := s.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get resource: %w", err)
	}
	if resource.CreatedBy != actor.ID && actor.Role != "admin" {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&resource).Error; err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return nil
}

// --- Carousel ---

// ListSlides returns active carousel slides ordered by position.
func (s *Service) ListSlides(ctx context.Context) ([]*models.CarouselSlide, error) {
	var slides []*models.CarouselSlide
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&slides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	return slides, nil
}

// CreateSlide adds a carousel slide (admin-only, enforced at the API layer).
func (s *Service) CreateSlide(ctx context.Context, req *models.SlideRequest) (*models.CarouselSlide, error) {
	slide := &models.CarouselSlide{
		ID:        uuid.New(),
		ImageURL:  req.ImageURL,
		Caption:   req.Caption,
		LinkURL:   req.LinkURL,
		Position:  req.Position,
		Active:    req.Active,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(slide).Error; err != nil {
		return nil, fmt.Errorf("failed to create slide: %w", err)
	}
	return slide, nil
}

// UpdateSlide edits a carousel slide.
func (s *Service) UpdateSlide(ctx context.Context, id uuid.UUID, req *models.SlideRequest) (*models.CarouselSlide, error) {
	var slide models.CarouselSlide
	if err := s.db.WithContext(ctx).First(&slide, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get slide: %w", err)
	}
	slide.ImageURL = req.ImageURL
	slide.Caption = req.Caption
	slide.LinkURL = req.LinkURL
	slide.Position = req.Position
	slide.Active = req.Active
	if err := s.db.WithContext(ctx).Save(&slide).Error; err != nil {
		return nil, fmt.Errorf("failed to update slide: %w", err)
	}
	return &slide, nil
}

// DeleteSlide removes a carousel slide.
func (s *Service) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.CarouselSlide{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete slide: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

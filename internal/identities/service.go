// Package identities handles registration, login, and cookie-session
// validation for community members.
package identities

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bitcoinperu/comunidad/pkg/metrics"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

// ErrInvalidCredentials covers unknown login and wrong password alike, so
// responses do not reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionExpired reports a missing or expired session token.
var ErrSessionExpired = errors.New("session expired or not found")

// Service implements user identity operations over the sessions table.
type Service struct {
	logger     *zap.Logger
	db         *gorm.DB
	sessionTTL time.Duration
}

// NewService creates a new identities service.
func NewService(logger *zap.Logger, db *gorm.DB, sessionTTL time.Duration) *Service {
	if sessionTTL == 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		logger:     logger,
		db:         db,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new member account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email already exists")
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashed),
		DisplayName:  req.DisplayName,
		Role:         "member",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials (login field matches email or username) and
// creates a session row with an opaque random token.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", req.Login, req.Login).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return session, &user, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session token to its user, deleting the row
// if it has expired.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	var session models.Session
	err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.db.WithContext(ctx).Delete(&session).Error; err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", session.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return &user, nil
}

// PurgeExpiredSessions removes all sessions past their expiry. Runs
// periodically from main.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&models.Session{}, "expires_at < ?", time.Now())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

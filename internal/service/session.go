package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/apperr"
	"github.com/podomarket/storefront-service/internal/auth"
	"github.com/podomarket/storefront-service/internal/models"
	"github.com/podomarket/storefront-service/internal/repository"
)

// AuthBackend is the slice of the commerce API the session layer needs.
type AuthBackend interface {
	Login(ctx context.Context, creds *models.Credentials) (*models.User, error)
	Register(ctx context.Context, reg *models.Registration) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Session is an authenticated storefront session: the user profile plus
// the signed token the client presents on later requests.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SessionService authenticates against the commerce backend and issues
// storefront session tokens. It also tracks each user's recently viewed
// products.
type SessionService struct {
	backend AuthBackend
	tokens  *auth.JWTService
	recent  *repository.RedisRecentStore
	logger  *logrus.Entry
}

// NewSessionService creates a session service.
func NewSessionService(backend AuthBackend, tokens *auth.JWTService, recent *repository.RedisRecentStore, logger *logrus.Entry) *SessionService {
	return &SessionService{
		backend: backend,
		tokens:  tokens,
		recent:  recent,
		logger:  logger,
	}
}

// Login authenticates the credentials and issues a session token.
func (s *SessionService) Login(ctx context.Context, creds *models.Credentials) (*Session, error) {
	if creds == nil || strings.TrimSpace(creds.Email) == "" {
		return nil, apperr.NewValidation("email", "email is required")
	}
	if creds.Password == "" {
		return nil, apperr.NewValidation("password", "password is required")
	}

	user, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Register creates an account on the commerce backend and issues a
// session token so the new user is logged in immediately.
func (s *SessionService) Register(ctx context.Context, reg *models.Registration) (*Session, error) {
	if reg == nil || strings.TrimSpace(reg.Email) == "" {
		return nil, apperr.NewValidation("email", "email is required")
	}
	if reg.Password == "" {
		return nil, apperr.NewValidation("password", "password is required")
	}
	if strings.TrimSpace(reg.Name) == "" {
		return nil, apperr.NewValidation("name", "name is required")
	}

	user, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Me returns the current profile from the commerce backend. The token
// only proves identity; profile fields can change server side.
func (s *SessionService) Me(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.NewUnauthorized("login required")
	}
	return s.backend.Me(ctx, userID)
}

// RecordView appends a product to the user's recently viewed list. A
// store failure is logged, not surfaced; browsing must not break over
// history bookkeeping.
func (s *SessionService) RecordView(ctx context.Context, userID, productID string) {
	if userID == "" || productID == "" {
		return
	}
	if err := s.recent.Push(ctx, userID, productID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		}).Warn("failed to record recently viewed product")
	}
}

// RecentlyViewed returns the user's recently viewed product ids, newest
// first.
func (s *SessionService) RecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, apperr.NewUnauthorized("login required")
	}
	return s.recent.List(ctx, userID)
}

// ClearRecentlyViewed drops the user's recently viewed list.
func (s *SessionService) ClearRecentlyViewed(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.NewUnauthorized("login required")
	}
	return s.recent.Clear(ctx, userID)
}

func (s *SessionService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

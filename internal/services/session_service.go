package services

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"finova/internal/config"
	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/session"
)

// sessionService checks the household password and issues session tokens.
type sessionService struct {
	cfg       config.SessionConfig
	household models.Household
	manager   *session.Manager
}

// NewSessionService creates a new SessionServicer.
func NewSessionService(cfg config.SessionConfig, household models.Household, manager *session.Manager) SessionServicer {
	return &sessionService{cfg: cfg, household: household, manager: manager}
}

// Login verifies the household password and opens a session viewing owner.
// An empty owner opens the shared view.
func (s *sessionService) Login(ctx context.Context, password string, owner models.Owner) (*SessionToken, error) {
	if password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}
	if owner == "" {
		owner = models.OwnerBoth
	}
	if !s.household.IsValidOwner(owner) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
	}
	if !s.verifyPassword(password) {
		return nil, apperrors.ErrInvalidPassword
	}
	return s.issue(session.Context{Owner: owner})
}

// verifyPassword compares against the bcrypt hash when one is configured,
// otherwise against the plain password. With neither set every login fails.
func (s *sessionService) verifyPassword(password string) bool {
	if s.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) == nil
	}
	if s.cfg.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.cfg.Password), []byte(password)) == 1
}

// Update switches the viewed owner and/or privacy mode and reissues the token.
func (s *sessionService) Update(ctx context.Context, current session.Context, owner *models.Owner, privacyMode *bool) (*SessionToken, error) {
	next := current
	if owner != nil {
		if !s.household.IsValidOwner(*owner) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
		}
		next.Owner = *owner
	}
	if privacyMode != nil {
		next.PrivacyMode = *privacyMode
	}
	return s.issue(next)
}

// Household returns the configured members.
func (s *sessionService) Household() models.Household {
	return s.household
}

func (s *sessionService) issue(sc session.Context) (*SessionToken, error) {
	token, expires, err := s.manager.Issue(sc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &SessionToken{Token: token, ExpiresAt: expires, Session: sc}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// SessionService authenticates verified accounts.
type SessionService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewSessionService(repo ports.AccountRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// Login checks credentials. Unknown email and wrong password both yield
// domain.ErrInvalidCredentials. Unverified accounts get VerificationRequired and
// no token. On success the account is read again so the response reflects the
// latest stored profile.
func (s *SessionService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}
	if !s.hasher.Compare(acc.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	if !acc.IsVerified {
		return &ports.LoginResult{VerificationRequired: true, Email: acc.Email}, nil
	}

	latest, err := s.repo.FindByID(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: reload: %w", err)
	}

	token, _, err := s.tokens.Issue(latest.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Debug().Str("account_id", latest.ID).Msg("login succeeded")
	return &ports.LoginResult{
		Session: &ports.Session{Token: token, Account: latest.Summary()},
		Email:   latest.Email,
	}, nil
}

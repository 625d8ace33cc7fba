package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// RecoveryService issues password-reset codes and applies new passwords.
type RecoveryService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	codes    codeIssuer
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewRecoveryService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	codes ports.CodeGenerator,
	notifier ports.Notifier,
	codeTTL time.Duration,
	log zerolog.Logger,
) *RecoveryService {
	return &RecoveryService{
		repo:     repo,
		hasher:   hasher,
		codes:    newCodeIssuer(codes, codeTTL),
		notifier: notifier,
		log:      log.With().Str("component", "recovery").Logger(),
		now:      time.Now,
	}
}

// RequestReset stores a reset code in the account's single pending slot,
// replacing any outstanding verification or reset code.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) (*ports.ResetRequestResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupErr("request reset", err)
	}

	now := s.now().UTC()
	pending, err := s.codes.issue(domain.PurposeReset, now)
	if err != nil {
		return nil, fmt.Errorf("request reset: %w", err)
	}
	if err := s.repo.SetPendingCode(ctx, acc.ID, pending, false, now); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("request reset: store: %w", err)
	}

	s.log.Info().Str("account_id", acc.ID).Msg("password reset requested")

	s.notifier.Dispatch(ports.Notification{
		Kind:      ports.NotifyPasswordReset,
		To:        acc.Email,
		Name:      acc.Name,
		Code:      pending.Code,
		ExpiresIn: s.codes.ttl,
	})

	return &ports.ResetRequestResult{Email: acc.Email}, nil
}

// ResetPassword consumes the reset code and stores the new password hash in
// the same conditional write.
func (s *RecoveryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: email, code and new password are required", domain.ErrInvalidInput)
	}
	if len(newPassword) < domain.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, domain.MinPasswordLength)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr("reset password", err)
	}

	now := s.now().UTC()
	if err := checkPending(acc, domain.PurposeReset, code, now); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	applied, err := s.repo.ResetPassword(ctx, acc.ID, code, hash, now)
	if err != nil {
		return fmt.Errorf("reset password: store: %w", err)
	}
	if !applied {
		current, err := s.repo.FindByID(ctx, acc.ID)
		if err != nil {
			return lookupErr("reset password", err)
		}
		if err := checkPending(current, domain.PurposeReset, code, now); err != nil {
			return err
		}
		return domain.ErrInvalidCode
	}

	s.log.Info().Str("account_id", acc.ID).Msg("password reset")
	return nil
}

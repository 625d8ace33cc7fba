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

// VerificationService confirms email ownership and re-issues verification codes.
type VerificationService struct {
	repo     ports.AccountRepository
	codes    codeIssuer
	tokens   ports.TokenIssuer
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewVerificationService(
	repo ports.AccountRepository,
	codes ports.CodeGenerator,
	tokens ports.TokenIssuer,
	notifier ports.Notifier,
	codeTTL time.Duration,
	log zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		repo:     repo,
		codes:    newCodeIssuer(codes, codeTTL),
		tokens:   tokens,
		notifier: notifier,
		log:      log.With().Str("component", "verification").Logger(),
		now:      time.Now,
	}
}

// Verify consumes the pending verification code and opens a session.
// The read is only used to pick the error; the state change itself is a
// conditional write, so of two concurrent calls with the same code only one
// can succeed.
func (s *VerificationService) Verify(ctx context.Context, email, code string) (*ports.Session, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", domain.ErrInvalidInput)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupErr("verify", err)
	}
	if acc.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}

	now := s.now().UTC()
	if err := checkPending(acc, domain.PurposeVerify, code, now); err != nil {
		return nil, err
	}

	applied, err := s.repo.MarkVerified(ctx, acc.ID, code, now)
	if err != nil {
		return nil, fmt.Errorf("verify: mark verified: %w", err)
	}
	if !applied {
		return nil, s.lostRace(ctx, acc.ID, code, now)
	}

	token, _, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("verify: issue token: %w", err)
	}

	acc.IsVerified = true
	acc.Pending = nil
	acc.UpdatedAt = now

	s.log.Info().Str("account_id", acc.ID).Msg("email verified")
	return &ports.Session{Token: token, Account: acc.Summary()}, nil
}

// lostRace explains why a conditional write did not apply: someone else
// verified the account or replaced the code in between.
func (s *VerificationService) lostRace(ctx context.Context, id, code string, now time.Time) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupErr("verify", err)
	}
	if current.IsVerified {
		return domain.ErrAlreadyVerified
	}
	if err := checkPending(current, domain.PurposeVerify, code, now); err != nil {
		return err
	}
	return domain.ErrInvalidCode
}

// ResendCode replaces the outstanding code with a fresh one. The previous code
// stops working as soon as the new one is stored.
func (s *VerificationService) ResendCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr("resend code", err)
	}
	if acc.IsVerified {
		return domain.ErrAlreadyVerified
	}

	now := s.now().UTC()
	pending, err := s.codes.issue(domain.PurposeVerify, now)
	if err != nil {
		return fmt.Errorf("resend code: %w", err)
	}
	if err := s.repo.SetPendingCode(ctx, acc.ID, pending, true, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) || errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("resend code: store: %w", err)
	}

	s.log.Info().Str("account_id", acc.ID).Msg("verification code reissued")

	s.notifier.Dispatch(ports.Notification{
		Kind:      ports.NotifyResend,
		To:        acc.Email,
		Name:      acc.Name,
		Code:      pending.Code,
		ExpiresIn: s.codes.ttl,
	})
	return nil
}

// lookupErr passes domain.ErrAccountNotFound through and wraps anything else.
func lookupErr(op string, err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("%s: lookup: %w", op, err)
}

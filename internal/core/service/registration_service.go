package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// RegistrationService creates pending accounts gated by the campus access code.
type RegistrationService struct {
	repo        ports.AccountRepository
	hasher      ports.PasswordHasher
	codes       codeIssuer
	notifier    ports.Notifier
	accessCodes []string
	log         zerolog.Logger
	now         func() time.Time
}

func NewRegistrationService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	codes ports.CodeGenerator,
	notifier ports.Notifier,
	accessCodes []string,
	codeTTL time.Duration,
	log zerolog.Logger,
) *RegistrationService {
	if len(accessCodes) == 0 {
		accessCodes = domain.DefaultAccessCodes
	}
	return &RegistrationService{
		repo:        repo,
		hasher:      hasher,
		codes:       newCodeIssuer(codes, codeTTL),
		notifier:    notifier,
		accessCodes: accessCodes,
		log:         log.With().Str("component", "registration").Logger(),
		now:         time.Now,
	}
}

// Register validates the form, stores an unverified account with a pending
// verification code and hands the code email to the notifier. The result does
// not depend on whether that email is ever delivered.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	in = trimRegisterInput(in)
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}
	if !domain.IsAllowedAccessCode(in.AccessCode, s.accessCodes) {
		return nil, domain.ErrForbidden
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	now := s.now().UTC()
	pending, err := s.codes.issue(domain.PurposeVerify, now)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	acc := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		Phone:        in.Phone,
		WhatsApp:     in.WhatsApp,
		Role:         domain.RoleStudent,
		AccessCode:   domain.NormalizeAccessCode(in.AccessCode),
		IsVerified:   false,
		Pending:      &pending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create: %w", err)
	}

	s.log.Info().Str("account_id", acc.ID).Str("access_code", acc.AccessCode).Msg("account registered")

	s.notifier.Dispatch(ports.Notification{
		Kind:      ports.NotifyVerification,
		To:        acc.Email,
		Name:      acc.Name,
		Code:      pending.Code,
		ExpiresIn: s.codes.ttl,
	})

	return &ports.RegisterResult{Email: acc.Email}, nil
}

func trimRegisterInput(in ports.RegisterInput) ports.RegisterInput {
	return ports.RegisterInput{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Password:   in.Password,
		Phone:      strings.TrimSpace(in.Phone),
		WhatsApp:   strings.TrimSpace(in.WhatsApp),
		AccessCode: strings.TrimSpace(in.AccessCode),
	}
}

func validateRegisterInput(in ports.RegisterInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Password) == "":
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", domain.ErrInvalidInput)
	case in.AccessCode == "":
		return fmt.Errorf("%w: access code is required", domain.ErrInvalidInput)
	}
	if len(in.Password) < domain.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, domain.MinPasswordLength)
	}
	if !domain.ValidEmail(domain.NormalizeEmail(in.Email)) {
		return fmt.Errorf("%w: email must be a valid address", domain.ErrInvalidInput)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// ProfileService serves the authenticated account's own profile.
type ProfileService struct {
	repo   ports.AccountRepository
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewProfileService(repo ports.AccountRepository, tokens ports.TokenIssuer, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		tokens: tokens,
		log:    log.With().Str("component", "profile").Logger(),
		now:    time.Now,
	}
}

func (s *ProfileService) Me(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, lookupErr("me", err)
	}
	summary := acc.Summary()
	return &summary, nil
}

// UpdateProfile changes contact metadata only. Blank name or phone values are
// ignored; an empty whatsapp clears it. A fresh session token is returned with
// the stored document.
func (s *ProfileService) UpdateProfile(ctx context.Context, accountID string, patch domain.ProfilePatch) (*ports.Session, error) {
	patch = cleanPatch(patch)

	var (
		acc *domain.Account
		err error
	)
	if patch.Empty() {
		acc, err = s.repo.FindByID(ctx, accountID)
	} else {
		acc, err = s.repo.UpdateProfile(ctx, accountID, patch, s.now().UTC())
	}
	if err != nil {
		return nil, lookupErr("update profile", err)
	}

	token, _, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("update profile: issue token: %w", err)
	}

	s.log.Info().Str("account_id", acc.ID).Msg("profile updated")
	return &ports.Session{Token: token, Account: acc.Summary()}, nil
}

func cleanPatch(p domain.ProfilePatch) domain.ProfilePatch {
	nonBlank := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			return nil
		}
		return &t
	}
	out := domain.ProfilePatch{Name: nonBlank(p.Name), Phone: nonBlank(p.Phone)}
	if p.WhatsApp != nil {
		w := strings.TrimSpace(*p.WhatsApp)
		out.WhatsApp = &w
	}
	return out
}

package ports

import (
	"context"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	WhatsApp   string
	AccessCode string
}

// RegisterResult is returned once the pending account is stored.
type RegisterResult struct {
	Email string
}

// Session is an issued session token plus the account it belongs to.
type Session struct {
	Token   string
	Account domain.AccountSummary
}

// LoginResult holds either a Session or, for unverified accounts,
// VerificationRequired with the account email and no token.
type LoginResult struct {
	Session              *Session
	VerificationRequired bool
	Email                string
}

// ResetRequestResult echoes the address the reset code was sent to.
type ResetRequestResult struct {
	Email string
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}

type VerificationService interface {
	Verify(ctx context.Context, email, code string) (*Session, error)
	ResendCode(ctx context.Context, email string) error
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type RecoveryService interface {
	RequestReset(ctx context.Context, email string) (*ResetRequestResult, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type ProfileService interface {
	Me(ctx context.Context, accountID string) (*domain.AccountSummary, error)
	UpdateProfile(ctx context.Context, accountID string, patch domain.ProfilePatch) (*Session, error)
}

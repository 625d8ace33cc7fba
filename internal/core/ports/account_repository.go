package ports

import (
	"context"
	"time"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// AccountRepository persists accounts. Lookups by email use the normalized form.
//
// The code-consuming methods are single conditional writes: they apply only
// while the stored pending code still equals code, carries the expected purpose
// and has not expired at now. They report applied=false, with no error, when the
// condition did not hold; the caller decides which domain error that means.
type AccountRepository interface {
	// Create inserts a new account. Returns domain.ErrAccountExists on a duplicate email.
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// SetPendingCode replaces any outstanding code. With onlyUnverified the write
	// is skipped and domain.ErrAlreadyVerified returned for verified accounts.
	SetPendingCode(ctx context.Context, id string, pending domain.PendingCode, onlyUnverified bool, now time.Time) error

	// MarkVerified flips is_verified and clears the pending verify code.
	MarkVerified(ctx context.Context, id, code string, now time.Time) (applied bool, err error)

	// ResetPassword stores passwordHash and clears the pending reset code.
	ResetPassword(ctx context.Context, id, code, passwordHash string, now time.Time) (applied bool, err error)

	// UpdateProfile applies patch and returns the stored document after the write.
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch, now time.Time) (*domain.Account, error)
}

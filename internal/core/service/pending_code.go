package service

import (
	"fmt"
	"time"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// DefaultCodeTTL is how long a freshly issued one-time code stays valid.
const DefaultCodeTTL = 15 * time.Minute

// codeIssuer mints pending codes. Verification, resend and recovery all share it,
// so every flow produces the same code shape and expiry rule.
type codeIssuer struct {
	codes ports.CodeGenerator
	ttl   time.Duration
}

func newCodeIssuer(codes ports.CodeGenerator, ttl time.Duration) codeIssuer {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return codeIssuer{codes: codes, ttl: ttl}
}

func (ci codeIssuer) issue(purpose domain.PendingPurpose, now time.Time) (domain.PendingCode, error) {
	code, err := ci.codes.Generate()
	if err != nil {
		return domain.PendingCode{}, fmt.Errorf("generate code: %w", err)
	}
	return domain.PendingCode{
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(ci.ttl),
	}, nil
}

// checkPending classifies a submitted code against the stored pending code.
// A code issued for another purpose is reported as invalid.
func checkPending(acc *domain.Account, purpose domain.PendingPurpose, code string, now time.Time) error {
	if !acc.HasPending(purpose) || !acc.Pending.Matches(code) {
		return domain.ErrInvalidCode
	}
	if acc.Pending.Expired(now) {
		return domain.ErrCodeExpired
	}
	return nil
}

package ports

import "time"

// PasswordHasher is a one-way password hash with a configurable work factor.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// CodeGenerator produces fixed-length numeric one-time codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bounded-lifetime session tokens.
type TokenIssuer interface {
	Issue(accountID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*TokenClaims, error)
}

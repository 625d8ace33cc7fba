package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// DefaultSessionTTL is the lifetime of every session token.
const DefaultSessionTTL = 30 * 24 * time.Hour

// JWTIssuer signs HS256 tokens whose subject is the account id.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) Issue(accountID string) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("issue token: empty account id")
	}
	now := j.now()
	exp := now.Add(j.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported as
// domain.ErrUnauthorized wrapping the parser error.
func (j *JWTIssuer) Verify(token string) (*ports.TokenClaims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	out := &ports.TokenClaims{AccountID: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

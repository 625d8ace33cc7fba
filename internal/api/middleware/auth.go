package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextAccount   = "account"
	ContextAccountID = "account_id"
	ContextRole      = "role"
)

// AccountLoader resolves the account named by a token.
type AccountLoader interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// Auth validates the bearer token, loads its account and stores the
// client-safe summary in the context. Every protected route sits behind it.
func Auth(tokens ports.TokenIssuer, accounts AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, invalid authorization header")
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			}

			acc, err := accounts.FindByID(c.Request().Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, account not found")
				}
				return fmt.Errorf("auth: load account: %w", err)
			}

			summary := acc.Summary()
			c.Set(ContextAccount, &summary)
			c.Set(ContextAccountID, summary.ID)
			c.Set(ContextRole, string(summary.Role))

			return next(c)
		}
	}
}

// AccountFrom returns the account stored by Auth, or nil.
func AccountFrom(c echo.Context) *domain.AccountSummary {
	acc, _ := c.Get(ContextAccount).(*domain.AccountSummary)
	return acc
}

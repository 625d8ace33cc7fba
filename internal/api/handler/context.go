package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/api/middleware"
	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// currentAccount returns the account the Auth middleware attached.
// A missing value means the route was mounted without the middleware.
func currentAccount(c echo.Context) (*domain.AccountSummary, error) {
	acc := middleware.AccountFrom(c)
	if acc == nil || acc.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	return acc, nil
}

// bindAndValidate decodes the JSON body into req and runs the struct tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}

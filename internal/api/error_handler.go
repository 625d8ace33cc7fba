package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"message": "..."}. Unexpected errors
// are logged with the request id and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Warn().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Invalid campus access code. Check the posters on campus for the code!"
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "Email already verified. Please login."
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, "Invalid verification code"
	case errors.Is(err, domain.ErrCodeExpired):
		return http.StatusGone, "Code has expired. Please request a new one."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

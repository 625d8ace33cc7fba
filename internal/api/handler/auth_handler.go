package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/api/metrics"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// AuthHandler serves the public /auth endpoints.
type AuthHandler struct {
	registration ports.RegistrationService
	verification ports.VerificationService
	sessions     ports.SessionService
	recovery     ports.RecoveryService
}

func NewAuthHandler(
	registration ports.RegistrationService,
	verification ports.VerificationService,
	sessions ports.SessionService,
	recovery ports.RecoveryService,
) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		verification: verification,
		sessions:     sessions,
		recovery:     recovery,
	}
}

// Signup creates an unverified account and emails a verification code.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Sign-up form"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("signup", err)
		return err
	}

	res, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		WhatsApp:   req.WhatsApp,
		AccessCode: req.AccessCode,
	})
	metrics.ObserveAuth("signup", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signupResponse{
		Message: "Registration successful. Please check your email for the verification code.",
		Email:   res.Email,
	})
}

// VerifyEmail consumes the verification code and starts a session.
//
// @Summary      Verify email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Email and code"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      410   {object}  messageResponse
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("verify", err)
		return err
	}

	session, err := h.verification.Verify(c.Request().Context(), req.Email, req.Code)
	metrics.ObserveAuth("verify", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session.Account, session.Token, "Email verified successfully"))
}

// ResendCode replaces the pending verification code and emails it again.
//
// @Summary      Resend verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/resend-code [post]
func (h *AuthHandler) ResendCode(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("resend", err)
		return err
	}

	err := h.verification.ResendCode(c.Request().Context(), req.Email)
	metrics.ObserveAuth("resend", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Verification code resent"})
}

// Login checks credentials. Unverified accounts get 401 with
// requiresVerification instead of a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  verificationRequiredResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("login", err)
		return err
	}

	res, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	metrics.ObserveAuth("login", err)
	if err != nil {
		return err
	}

	if res.VerificationRequired {
		metrics.LoginsBlockedTotal.Inc()
		return c.JSON(http.StatusUnauthorized, verificationRequiredResponse{
			Message:              "Please verify your email first",
			RequiresVerification: true,
			Email:                res.Email,
		})
	}

	return c.JSON(http.StatusOK, toSessionResponse(res.Session.Account, res.Session.Token, ""))
}

// ForgotPassword emails a password reset code.
//
// @Summary      Request password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  signupResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("forgot", err)
		return err
	}

	res, err := h.recovery.RequestReset(c.Request().Context(), req.Email)
	metrics.ObserveAuth("forgot", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, signupResponse{
		Message: "Password reset code sent to your email",
		Email:   res.Email,
	})
}

// ResetPassword consumes the reset code and stores the new password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, code and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      410   {object}  messageResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("reset", err)
		return err
	}

	err := h.recovery.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword)
	metrics.ObserveAuth("reset", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successful. Please login."})
}

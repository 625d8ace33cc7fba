package handler

import "github.com/campusconnect/campusconnect-api/internal/core/domain"

// messageResponse is the envelope for plain acknowledgements and errors.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type signupRequest struct {
	Name       string `json:"name"       validate:"required,max=120"`
	Email      string `json:"email"      validate:"required,max=254"`
	Password   string `json:"password"   validate:"required,max=128"`
	Phone      string `json:"phone"      validate:"required,max=32"`
	WhatsApp   string `json:"whatsapp"   validate:"omitempty,max=32"`
	AccessCode string `json:"accessCode" validate:"required,max=32"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code"  validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required"`
	Code        string `json:"code"        validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=128"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=120"`
	Phone    *string `json:"phone"    validate:"omitempty,max=32"`
	WhatsApp *string `json:"whatsapp" validate:"omitempty,max=32"`
}

// --- Response types ---

type signupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// sessionResponse is returned by login and verify-email.
type sessionResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	WhatsApp string      `json:"whatsapp"`
	Role     domain.Role `json:"role"`
	Token    string      `json:"token"`
	Message  string      `json:"message,omitempty"`
}

type verificationRequiredResponse struct {
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requiresVerification"`
	Email                string `json:"email"`
}

type profileResponse struct {
	domain.AccountSummary
	Token string `json:"token"`
}

func toSessionResponse(s domain.AccountSummary, token, message string) sessionResponse {
	return sessionResponse{
		ID:       s.ID,
		Name:     s.Name,
		Email:    s.Email,
		Phone:    s.Phone,
		WhatsApp: s.WhatsApp,
		Role:     s.Role,
		Token:    token,
		Message:  message,
	}
}

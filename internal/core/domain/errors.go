package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("access forbidden")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

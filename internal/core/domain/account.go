package domain

import (
	"strings"
	"time"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// PendingPurpose tags what an outstanding one-time code may be used for.
type PendingPurpose string

const (
	PurposeVerify PendingPurpose = "verify"
	PurposeReset  PendingPurpose = "reset"
)

// PendingCode is an outstanding one-time code. Code and ExpiresAt are always
// set and cleared together; an account holds at most one at a time.
type PendingCode struct {
	Code      string
	Purpose   PendingPurpose
	ExpiresAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (p PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Matches compares a submitted code against the stored one after trimming both.
func (p PendingCode) Matches(code string) bool {
	return strings.TrimSpace(p.Code) == strings.TrimSpace(code)
}

// Account is the persisted identity record of a marketplace member.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	WhatsApp     string
	Role         Role
	AccessCode   string
	IsVerified   bool
	Pending      *PendingCode
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPending reports whether a code of the given purpose is outstanding.
func (a *Account) HasPending(purpose PendingPurpose) bool {
	return a.Pending != nil && a.Pending.Purpose == purpose
}

// Summary returns the client-safe view of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		WhatsApp:   a.WhatsApp,
		Role:       a.Role,
		AccessCode: a.AccessCode,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AccountSummary is an Account without password or pending-code fields.
type AccountSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	WhatsApp   string    `json:"whatsapp"`
	Role       Role      `json:"role"`
	AccessCode string    `json:"accessCode"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProfilePatch carries the self-service contact fields. Nil fields are left untouched.
type ProfilePatch struct {
	Name     *string
	Phone    *string
	WhatsApp *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.WhatsApp == nil
}

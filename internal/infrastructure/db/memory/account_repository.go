// Package memory is an in-process AccountRepository used for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// AccountRepository keeps accounts in a map guarded by a single mutex, which
// makes every method, including the conditional code writes, atomic.
type AccountRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.Account
	byEmail map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *AccountRepository) Create(_ context.Context, acc *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(acc.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrAccountExists
	}
	if _, ok := r.byID[acc.ID]; ok {
		return domain.ErrAccountExists
	}
	stored := clone(acc)
	stored.Email = email
	r.byID[stored.ID] = stored
	r.byEmail[email] = stored.ID
	return nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(acc), nil
}

func (r *AccountRepository) SetPendingCode(_ context.Context, id string, pending domain.PendingCode, onlyUnverified bool, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if onlyUnverified && acc.IsVerified {
		return domain.ErrAlreadyVerified
	}
	p := pending
	acc.Pending = &p
	acc.UpdatedAt = now
	return nil
}

func (r *AccountRepository) MarkVerified(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok || acc.IsVerified || !codeHolds(acc, domain.PurposeVerify, code, now) {
		return false, nil
	}
	acc.IsVerified = true
	acc.Pending = nil
	acc.UpdatedAt = now
	return true, nil
}

func (r *AccountRepository) ResetPassword(_ context.Context, id, code, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok || !codeHolds(acc, domain.PurposeReset, code, now) {
		return false, nil
	}
	acc.PasswordHash = passwordHash
	acc.Pending = nil
	acc.UpdatedAt = now
	return true, nil
}

func (r *AccountRepository) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch, now time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if patch.Name != nil {
		acc.Name = *patch.Name
	}
	if patch.Phone != nil {
		acc.Phone = *patch.Phone
	}
	if patch.WhatsApp != nil {
		acc.WhatsApp = *patch.WhatsApp
	}
	acc.UpdatedAt = now
	return clone(acc), nil
}

// Len reports the number of stored accounts.
func (r *AccountRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func codeHolds(acc *domain.Account, purpose domain.PendingPurpose, code string, now time.Time) bool {
	return acc.HasPending(purpose) && acc.Pending.Code == code && !acc.Pending.Expired(now)
}

func clone(acc *domain.Account) *domain.Account {
	c := *acc
	if acc.Pending != nil {
		p := *acc.Pending
		c.Pending = &p
	}
	return &c
}

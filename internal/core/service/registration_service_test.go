package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/db/memory"
)

func TestRegister_StoresUnverifiedAccountWithCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	in := aliceInput()
	in.Email = "  Alice@CIT.edu "
	in.AccessCode = "cit25"

	res, err := env.registration.Register(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Email != "alice@cit.edu" {
		t.Fatalf("expected normalized email, got %q", res.Email)
	}

	acc, err := env.repo.FindByEmail(ctx, "alice@cit.edu")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if acc.IsVerified {
		t.Fatal("new account must be unverified")
	}
	if acc.Role != domain.RoleStudent || acc.AccessCode != "CIT25" {
		t.Fatalf("unexpected role/access code: %s %s", acc.Role, acc.AccessCode)
	}
	if acc.PasswordHash == "secret1" || !(plainHasher{}).Compare(acc.PasswordHash, "secret1") {
		t.Fatalf("password not hashed: %q", acc.PasswordHash)
	}
	if acc.ID == "" {
		t.Fatal("expected generated id")
	}

	if !acc.HasPending(domain.PurposeVerify) {
		t.Fatalf("expected pending verify code, got %+v", acc.Pending)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(acc.Pending.Code) {
		t.Fatalf("expected 6-digit code, got %q", acc.Pending.Code)
	}
	if want := env.clock.now().Add(15 * time.Minute); !acc.Pending.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, acc.Pending.ExpiresAt)
	}

	sent := env.notifier.last()
	if sent.Kind != ports.NotifyVerification || sent.To != "alice@cit.edu" || sent.Code != acc.Pending.Code {
		t.Fatalf("unexpected notification: %+v", sent)
	}
}

func TestRegister_RejectsUnknownAccessCode(t *testing.T) {
	env := newTestEnv()

	in := aliceInput()
	in.AccessCode = "XX99"

	_, err := env.registration.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if env.repo.Len() != 0 {
		t.Fatal("no account may be created for a rejected access code")
	}
	if env.notifier.count() != 0 {
		t.Fatal("no email may be sent for a rejected access code")
	}
}

func TestRegister_CustomAllowlist(t *testing.T) {
	repo := memory.NewAccountRepository()
	svc := NewRegistrationService(repo, plainHasher{}, &seqCodes{}, &captureNotifier{}, []string{"UET26"}, 0, zerolog.Nop())

	in := aliceInput()
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("CIT25 is not on the custom list, got %v", err)
	}
	in.AccessCode = "uet26"
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.registration.Register(ctx, aliceInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	dup := aliceInput()
	dup.Email = "ALICE@cit.edu"
	if _, err := env.registration.Register(ctx, dup); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if env.repo.Len() != 1 {
		t.Fatalf("expected one account, got %d", env.repo.Len())
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	cases := map[string]func(*ports.RegisterInput){
		"missing name":     func(in *ports.RegisterInput) { in.Name = "  " },
		"missing email":    func(in *ports.RegisterInput) { in.Email = "" },
		"missing password": func(in *ports.RegisterInput) { in.Password = "" },
		"missing phone":    func(in *ports.RegisterInput) { in.Phone = "" },
		"missing code":     func(in *ports.RegisterInput) { in.AccessCode = "" },
		"short password":   func(in *ports.RegisterInput) { in.Password = "abc" },
		"bad email":        func(in *ports.RegisterInput) { in.Email = "not-an-email" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv()
			in := aliceInput()
			mutate(&in)
			if _, err := env.registration.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if env.repo.Len() != 0 {
				t.Fatal("no account may be created for invalid input")
			}
		})
	}
}

func TestRegister_StoreFailureIsNotADomainError(t *testing.T) {
	repo := &failingRepo{AccountRepository: memory.NewAccountRepository(), findErr: errors.New("connection reset")}
	svc := NewRegistrationService(repo, plainHasher{}, &seqCodes{}, &captureNotifier{}, nil, 0, zerolog.Nop())

	_, err := svc.Register(context.Background(), aliceInput())
	if err == nil || errors.Is(err, domain.ErrAccountExists) || errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// failingRepo injects store failures into an otherwise working repository.
type failingRepo struct {
	ports.AccountRepository
	findErr error
}

func (r *failingRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.AccountRepository.FindByEmail(ctx, email)
}

package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// plainHasher "hashes" by prefixing, so tests skip bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Compare(hash, pw string) bool { return hash == "hashed:"+pw }

// seqCodes hands out 100001, 100002, ...
type seqCodes struct {
	mu   sync.Mutex
	next int
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%06d", 100000+s.next), nil
}

type stubTokens struct{}

func (stubTokens) Issue(accountID string) (string, time.Time, error) {
	return "token-for-" + accountID, time.Time{}, nil
}

func (stubTokens) Verify(token string) (*ports.TokenClaims, error) {
	return &ports.TokenClaims{AccountID: strings.TrimPrefix(token, "token-for-")}, nil
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (n *captureNotifier) Dispatch(msg ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *captureNotifier) last() ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ports.Notification{}
	}
	return n.sent[len(n.sent)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// clock is a settable time source shared by every service in a testEnv.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Wiring
// ---------------------------------------------------------------------------

type testEnv struct {
	repo     *memory.AccountRepository
	notifier *captureNotifier
	clock    *clock

	registration *RegistrationService
	verification *VerificationService
	sessions     *SessionService
	recovery     *RecoveryService
	profiles     *ProfileService
}

func newTestEnv() *testEnv {
	return newTestEnvWithRepo(memory.NewAccountRepository())
}

func newTestEnvWithRepo(repo ports.AccountRepository) *testEnv {
	mem, _ := repo.(*memory.AccountRepository)
	env := &testEnv{
		repo:     mem,
		notifier: &captureNotifier{},
		clock:    &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	codes := &seqCodes{}
	log := zerolog.Nop()

	env.registration = NewRegistrationService(repo, plainHasher{}, codes, env.notifier, nil, DefaultCodeTTL, log)
	env.verification = NewVerificationService(repo, codes, stubTokens{}, env.notifier, DefaultCodeTTL, log)
	env.sessions = NewSessionService(repo, plainHasher{}, stubTokens{}, log)
	env.recovery = NewRecoveryService(repo, plainHasher{}, codes, env.notifier, DefaultCodeTTL, log)
	env.profiles = NewProfileService(repo, stubTokens{}, log)

	env.registration.now = env.clock.now
	env.verification.now = env.clock.now
	env.recovery.now = env.clock.now
	env.profiles.now = env.clock.now
	return env
}

func aliceInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:       "Alice",
		Email:      "alice@cit.edu",
		Password:   "secret1",
		Phone:      "03001234567",
		AccessCode: "CIT25",
	}
}

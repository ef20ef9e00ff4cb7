package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/joshua31324324/user-management/pkg/repository"
	"github.com/stretchr/testify/require"
)

const testPassword = "Strong1!"

type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]string
}

func (n *recordingNotifier) SendVerification(_ context.Context, user *domain.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = make(map[uuid.UUID]string)
	}
	n.tokens[user.ID] = token
	return nil
}

func (n *recordingNotifier) token(id uuid.UUID) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[id]
}

type testEnv struct {
	store     *repository.MemoryStore
	tokens    *TokenService
	authz     *Policy
	lifecycle *LoginLifecycle
	accounts  *AccountService
	users     *UserService
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	tokens := NewTokenService(testSecret, "user-management", 30*time.Minute)
	authz := NewPolicy()
	passwords := &PasswordPolicy{MinLength: 8, RequireUppercase: true, RequireLowercase: true, RequireNumber: true}
	rules := EmailRules{Strict: true}
	lifecycle := NewLoginLifecycle(store, tokens, DefaultMaxLoginAttempts, nil)
	notifier := &recordingNotifier{}

	return &testEnv{
		store:     store,
		tokens:    tokens,
		authz:     authz,
		lifecycle: lifecycle,
		accounts:  NewAccountService(store, lifecycle, passwords, rules, notifier, nil),
		users:     NewUserService(store, authz, NewProfileUpdatePolicy(authz, rules), lifecycle, passwords, rules, nil),
		notifier:  notifier,
	}
}

// seed stores a verified account with testPassword and returns it with its actor.
func (e *testEnv) seed(t *testing.T, email string, role domain.Role) (*domain.User, domain.Actor) {
	t.Helper()

	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.store.Create(context.Background(), user))
	return user, domain.Actor{ID: user.ID, Role: role}
}

func strPtr(s string) *string {
	return &s
}

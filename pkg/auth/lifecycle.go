package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// DefaultMaxLoginAttempts is the lockout threshold used when none is configured.
const DefaultMaxLoginAttempts = 5

// TokenIssuer signs access tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(userID uuid.UUID, role domain.Role) (*domain.AccessToken, error)
}

// LoginLifecycle authenticates credentials and tracks consecutive failures.
// An account is locked once its failure counter reaches maxAttempts and stays
// locked until Unlock.
type LoginLifecycle struct {
	store       AccountStore
	tokens      TokenIssuer
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewLoginLifecycle creates a login lifecycle. maxAttempts <= 0 selects DefaultMaxLoginAttempts.
func NewLoginLifecycle(store AccountStore, tokens TokenIssuer, maxAttempts int, logger *zap.Logger) *LoginLifecycle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLifecycle{
		store:       store,
		tokens:      tokens,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// MaxAttempts returns the configured lockout threshold.
func (l *LoginLifecycle) MaxAttempts() int {
	return l.maxAttempts
}

// Authenticate checks email and password and issues an access token.
func (l *LoginLifecycle) Authenticate(ctx context.Context, email, password string) (*domain.AccessToken, *domain.User, error) {
	user, err := l.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			VerifyPassword(password, dummyHash)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}

	if user.IsLocked() {
		return nil, nil, domain.ErrAccountLocked
	}
	if !user.EmailVerified {
		return nil, nil, domain.ErrEmailNotVerified
	}

	if !VerifyPassword(password, user.PasswordHash) {
		attempts, locked, err := l.store.RecordFailedLogin(ctx, user.ID, l.maxAttempts)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, nil, domain.ErrInvalidCredentials
			}
			return nil, nil, fmt.Errorf("record failed login: %w", err)
		}
		if locked {
			l.logger.Warn("account locked after failed logins",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", attempts),
			)
		}
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := l.store.ResetFailedLogins(ctx, user.ID, l.now()); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountLocked):
			return nil, nil, domain.ErrAccountLocked
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("reset failed logins: %w", err)
	}

	token, err := l.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	user.FailedLoginAttempts = 0
	return token, user, nil
}

// Unlock clears the lock flag and the failure counter of an account.
func (l *LoginLifecycle) Unlock(ctx context.Context, id uuid.UUID) error {
	if err := l.store.Unlock(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("unlock account: %w", err)
	}
	l.logger.Info("account unlocked", zap.String("user_id", id.String()))
	return nil
}

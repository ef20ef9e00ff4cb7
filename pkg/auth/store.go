package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// AccountStore persists accounts. Implementations return domain.ErrUserNotFound
// for missing rows and domain.ErrEmailAlreadyExists on an email collision.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]*domain.User, int, error)

	// RecordFailedLogin atomically increments the failure counter and locks the
	// account once the counter reaches maxAttempts.
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int) (attempts int, locked bool, err error)
	// ResetFailedLogins zeroes the counter of an unlocked account and stamps the
	// login time. A locked account yields domain.ErrAccountLocked and is untouched.
	ResetFailedLogins(ctx context.Context, id uuid.UUID, at time.Time) error
	Unlock(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

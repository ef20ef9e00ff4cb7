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

// Listing defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateUserRequest is an account created on someone's behalf by a manager or admin.
type CreateUserRequest struct {
	Email    string
	Password string
	Name     *string
	Role     string
}

// UserService performs account administration on behalf of an actor. Every
// method authorizes the actor before it reads the target.
type UserService struct {
	store      AccountStore
	authz      *Policy
	profiles   *ProfileUpdatePolicy
	lifecycle  *LoginLifecycle
	passwords  *PasswordPolicy
	emailRules EmailRules
	logger     *zap.Logger
	now        func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(store AccountStore, authz *Policy, profiles *ProfileUpdatePolicy, lifecycle *LoginLifecycle, passwords *PasswordPolicy, emailRules EmailRules, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:      store,
		authz:      authz,
		profiles:   profiles,
		lifecycle:  lifecycle,
		passwords:  passwords,
		emailRules: emailRules,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the account id.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.User, error) {
	if err := s.authz.Authorize(actor, ActionViewUser, id); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// List returns one page of accounts ordered by creation time.
func (s *UserService) List(ctx context.Context, actor domain.Actor, page, size int) (*domain.Page[*domain.User], error) {
	if err := s.authz.Authorize(actor, ActionListUsers, uuid.Nil); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	users, total, err := s.store.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}

	return &domain.Page[*domain.User]{Items: users, Total: total, Page: page, Size: size}, nil
}

// Create adds a verified account with the requested role.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, req CreateUserRequest) (*domain.User, error) {
	if err := s.authz.Authorize(actor, ActionCreateUser, uuid.Nil); err != nil {
		return nil, err
	}

	role := domain.RoleAuthenticated
	if req.Role != "" {
		r, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	if !s.authz.CanGrant(actor, role) {
		return nil, domain.ErrRoleNotGrantable
	}

	user, err := newAccount(req.Email, req.Password, req.Name, role, s.passwords, s.emailRules, s.now())
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	if role == domain.RoleProfessional {
		user.IsProfessional = true
		user.ProfessionalStatusUpdatedAt = &user.CreatedAt
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.ID.String()),
	)
	return user, nil
}

// Update applies a partial update.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, upd ProfileUpdate) (*domain.User, error) {
	return s.update(ctx, actor, id, upd, false)
}

// UpdateProfile applies a profile replacement, which must carry a name.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, id uuid.UUID, upd ProfileUpdate) (*domain.User, error) {
	return s.update(ctx, actor, id, upd, true)
}

func (s *UserService) update(ctx context.Context, actor domain.Actor, id uuid.UUID, upd ProfileUpdate, requireName bool) (*domain.User, error) {
	if err := s.authz.Authorize(actor, ActionUpdateUser, id); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanActOn(actor, current) {
		return nil, domain.ErrForbidden
	}

	next, changed, err := s.profiles.Apply(actor, current, upd, requireName)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	if next.Role == domain.RoleProfessional && !next.IsProfessional {
		now := s.now()
		next.IsProfessional = true
		next.ProfessionalStatusUpdatedAt = &now
	}
	next.UpdatedAt = s.now()

	if err := s.store.Update(ctx, next); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	if next.Role != current.Role {
		s.logger.Info("account role changed",
			zap.String("user_id", id.String()),
			zap.String("from", string(current.Role)),
			zap.String("to", string(next.Role)),
			zap.String("actor_id", actor.ID.String()),
		)
	}
	return next, nil
}

// Delete removes the account permanently.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := s.authz.Authorize(actor, ActionDeleteUser, id); err != nil {
		return err
	}

	target, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.CanActOn(actor, target) {
		return domain.ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted", zap.String("user_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}

// Upgrade promotes an ANONYMOUS or AUTHENTICATED account to PROFESSIONAL.
// Any other target, including an existing professional, is domain.ErrUserNotFound.
func (s *UserService) Upgrade(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.User, error) {
	if err := s.authz.Authorize(actor, ActionUpgradeToProfessional, id); err != nil {
		return nil, err
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Promotable(user.Role) {
		return nil, domain.ErrUserNotFound
	}
	if !s.authz.CanActOn(actor, user) {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	user.Role = domain.RoleProfessional
	user.IsProfessional = true
	user.ProfessionalStatusUpdatedAt = &now
	user.UpdatedAt = now

	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("upgrade account: %w", err)
	}

	s.logger.Info("account upgraded to professional", zap.String("user_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return user, nil
}

// Unlock clears the lockout of an account.
func (s *UserService) Unlock(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.User, error) {
	if err := s.authz.Authorize(actor, ActionUnlockUser, id); err != nil {
		return nil, err
	}
	target, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanActOn(actor, target) {
		return nil, domain.ErrForbidden
	}
	if err := s.lifecycle.Unlock(ctx, id); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return user, nil
}
